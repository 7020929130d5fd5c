// Package audiotest builds RIFF/WAVE containers in memory for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Frame is one stereo frame of 24-bit samples.
type Frame struct {
	Left, Right int32
}

// Options describe a container. Zero values fall back to a canonical
// 2-channel 24-bit 44.1 kHz PCM layout.
type Options struct {
	Prefix        []byte // bytes written before the RIFF marker
	TypeTag       string
	FormatTag     string
	DataTag       string
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	Frames        []Frame
	Trailer       []byte // bytes written after the frames
}

func (o *Options) defaults() {
	if o.TypeTag == "" {
		o.TypeTag = "WAVE"
	}
	if o.FormatTag == "" {
		o.FormatTag = "fmt "
	}
	if o.DataTag == "" {
		o.DataTag = "data"
	}
	if o.AudioFormat == 0 {
		o.AudioFormat = 1
	}
	if o.Channels == 0 {
		o.Channels = 2
	}
	if o.SampleRate == 0 {
		o.SampleRate = 44100
	}
	if o.BitsPerSample == 0 {
		o.BitsPerSample = 24
	}
}

// Build writes the container described by opts.
func Build(opts Options) []byte {
	opts.defaults()
	buf := new(bytes.Buffer)
	buf.Write(opts.Prefix)

	blockAlign := opts.Channels * opts.BitsPerSample / 8
	byteRate := opts.SampleRate * uint32(blockAlign)
	dataSize := uint32(len(opts.Frames) * 6)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString(opts.TypeTag)

	buf.WriteString(opts.FormatTag)
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, opts.AudioFormat)
	binary.Write(buf, binary.LittleEndian, opts.Channels)
	binary.Write(buf, binary.LittleEndian, opts.SampleRate)
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, opts.BitsPerSample)

	buf.WriteString(opts.DataTag)
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, f := range opts.Frames {
		PutI24LE(buf, f.Left)
		PutI24LE(buf, f.Right)
	}
	buf.Write(opts.Trailer)
	return buf.Bytes()
}

// Container is Build with only frames set.
func Container(frames []Frame) []byte {
	return Build(Options{Frames: frames})
}

// PutI24LE appends the low 24 bits of v in little-endian order.
func PutI24LE(buf *bytes.Buffer, v int32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
}

// SilentFrames returns n zero frames.
func SilentFrames(n int) []Frame {
	return make([]Frame, n)
}

// SineFrames returns n frames of a sine completing cycles periods across the
// window, at the given 24-bit peak, identical on both channels.
func SineFrames(n int, cycles float64, peak int32) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		v := int32(math.Round(float64(peak) * math.Sin(2*math.Pi*cycles*float64(i)/float64(n))))
		frames[i] = Frame{Left: v, Right: v}
	}
	return frames
}

// WriteWithEncoder writes frames to path with the go-audio/wav encoder as
// 2-channel 24-bit PCM.
func WriteWithEncoder(path string, sampleRate int, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating fixture: %w", err)
	}
	defer f.Close()

	data := make([]int, 0, len(frames)*2)
	for _, fr := range frames {
		data = append(data, int(fr.Left), int(fr.Right))
	}

	enc := wav.NewEncoder(f, sampleRate, 24, 2, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 24,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding fixture: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}
	return nil
}
