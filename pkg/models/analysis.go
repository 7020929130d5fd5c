package models

import "time"

// HeaderSnapshot is the parsed container header as it is persisted and served.
type HeaderSnapshot struct {
	DeclaredSize       uint32 `json:"declared_size"`
	IsRecognizedType   bool   `json:"is_recognized_type"`
	IsFormatChunkValid bool   `json:"is_format_chunk_valid"`
	FormatChunkLen     uint32 `json:"format_chunk_len"`
	AudioFormat        uint16 `json:"audio_format"`
	ChannelCount       uint16 `json:"channel_count"`
	SampleRate         uint32 `json:"sample_rate"`
	ByteRate           uint32 `json:"byte_rate"`
	BlockAlign         uint16 `json:"block_align"`
	BitsPerSample      uint16 `json:"bits_per_sample"`
	IsDataChunkValid   bool   `json:"is_data_chunk_valid"`
	DataSize           uint32 `json:"data_size"`
}

// Analysis is one completed run of the pipeline over a single input.
type Analysis struct {
	ID           string         `json:"id"`            // UUID, empty until stored
	Source       string         `json:"source"`        // input path or upload name
	Digest       string         `json:"digest"`        // hex SHA-256 of the input bytes
	Profile      string         `json:"profile"`       // settings that shaped the amplitudes
	HeaderOffset int            `json:"header_offset"` // first byte after the sync marker
	DataOffset   int            `json:"data_offset"`   // first byte after the header
	Header       HeaderSnapshot `json:"header"`
	Mismatches   []string       `json:"mismatches,omitempty"`
	WindowLength int            `json:"window_length"`
	Method       string         `json:"method"`
	Bins         int            `json:"bins"`
	Amplitudes   []float64      `json:"amplitudes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
