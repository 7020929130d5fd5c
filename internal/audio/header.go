package audio

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Chunk identifiers of a RIFF/WAVE container, as big-endian words.
const (
	TagRIFF uint32 = 0x52494646 // "RIFF"
	TagWAVE uint32 = 0x57415645 // "WAVE"
	TagFmt  uint32 = 0x666D7420 // "fmt "
	TagData uint32 = 0x64617461 // "data"
)

// Tags holds the marker and chunk identifiers the locator and parser compare against.
type Tags struct {
	Sync   uint32
	Type   uint32
	Format uint32
	Data   uint32
}

func DefaultTags() Tags {
	return Tags{Sync: TagRIFF, Type: TagWAVE, Format: TagFmt, Data: TagData}
}

// ValidationMode decides what a tag mismatch does to parsing.
type ValidationMode int

const (
	// Lenient records mismatches in the header flags and keeps going.
	Lenient ValidationMode = iota
	// Strict fails with ErrTagMismatch once the header has been read.
	Strict
)

func (m ValidationMode) String() string {
	switch m {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("ValidationMode(%d)", int(m))
	}
}

// Header is the fixed field sequence that follows the sync marker.
type Header struct {
	DeclaredSize       uint32
	IsRecognizedType   bool
	IsFormatChunkValid bool
	FormatChunkLen     uint32
	AudioFormat        uint16
	ChannelCount       uint16
	SampleRate         uint32
	ByteRate           uint32
	BlockAlign         uint16
	BitsPerSample      uint16
	IsDataChunkValid   bool
	DataSize           uint32
}

// Valid reports whether every tag matched.
func (h *Header) Valid() bool {
	return h.IsRecognizedType && h.IsFormatChunkValid && h.IsDataChunkValid
}

// Mismatches names the tags that did not match, in read order.
func (h *Header) Mismatches() []string {
	var out []string
	if !h.IsRecognizedType {
		out = append(out, "type")
	}
	if !h.IsFormatChunkValid {
		out = append(out, "format")
	}
	if !h.IsDataChunkValid {
		out = append(out, "data")
	}
	return out
}

// ParseHeader reads the header fields from c, which must sit just past the sync
// marker. In Strict mode a complete header is still returned alongside
// ErrTagMismatch so callers can report what was found.
func ParseHeader(c *Cursor, tags Tags, mode ValidationMode) (*Header, error) {
	var h Header
	var tag uint32
	var err error

	le, be := binary.LittleEndian, binary.BigEndian

	if h.DeclaredSize, err = c.ReadU32(le); err != nil {
		return nil, fmt.Errorf("reading declared size: %w", err)
	}
	if tag, err = c.ReadU32(be); err != nil {
		return nil, fmt.Errorf("reading type tag: %w", err)
	}
	h.IsRecognizedType = tag == tags.Type
	if tag, err = c.ReadU32(be); err != nil {
		return nil, fmt.Errorf("reading format tag: %w", err)
	}
	h.IsFormatChunkValid = tag == tags.Format
	if h.FormatChunkLen, err = c.ReadU32(le); err != nil {
		return nil, fmt.Errorf("reading format length: %w", err)
	}
	if h.AudioFormat, err = c.ReadU16(le); err != nil {
		return nil, fmt.Errorf("reading audio format: %w", err)
	}
	if h.ChannelCount, err = c.ReadU16(le); err != nil {
		return nil, fmt.Errorf("reading channel count: %w", err)
	}
	if h.SampleRate, err = c.ReadU32(le); err != nil {
		return nil, fmt.Errorf("reading sample rate: %w", err)
	}
	if h.ByteRate, err = c.ReadU32(le); err != nil {
		return nil, fmt.Errorf("reading byte rate: %w", err)
	}
	if h.BlockAlign, err = c.ReadU16(le); err != nil {
		return nil, fmt.Errorf("reading block align: %w", err)
	}
	if h.BitsPerSample, err = c.ReadU16(le); err != nil {
		return nil, fmt.Errorf("reading bits per sample: %w", err)
	}
	if tag, err = c.ReadU32(be); err != nil {
		return nil, fmt.Errorf("reading data tag: %w", err)
	}
	h.IsDataChunkValid = tag == tags.Data
	if h.DataSize, err = c.ReadU32(le); err != nil {
		return nil, fmt.Errorf("reading data size: %w", err)
	}

	if mode == Strict && !h.Valid() {
		return &h, fmt.Errorf("%w: %s", ErrTagMismatch, strings.Join(h.Mismatches(), ", "))
	}
	return &h, nil
}
