package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ProbeInfo is what an independent WAV decoder reports about the same bytes.
type ProbeInfo struct {
	Format      *goaudio.Format
	BitDepth    int
	AudioFormat int
	Duration    time.Duration
}

// Probe decodes the container metadata with go-audio/wav. It only works for
// containers that start at offset zero; callers use it as a cross-check.
func Probe(buf []byte) (*ProbeInfo, error) {
	dec := wav.NewDecoder(bytes.NewReader(buf))
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("probing container: %w", err)
	}
	if !dec.IsValidFile() {
		return nil, errors.New("probing container: not a valid WAV file")
	}

	info := &ProbeInfo{
		Format:      dec.Format(),
		BitDepth:    int(dec.BitDepth),
		AudioFormat: int(dec.WavAudioFormat),
	}
	if d, err := dec.Duration(); err == nil {
		info.Duration = d
	}
	return info, nil
}

// CrossCheck lists the header fields that disagree with a probe.
func CrossCheck(h *Header, p *ProbeInfo) []string {
	var diffs []string
	if p.Format != nil {
		if int(h.ChannelCount) != p.Format.NumChannels {
			diffs = append(diffs, fmt.Sprintf("channels: header %d, probe %d", h.ChannelCount, p.Format.NumChannels))
		}
		if int(h.SampleRate) != p.Format.SampleRate {
			diffs = append(diffs, fmt.Sprintf("sample rate: header %d, probe %d", h.SampleRate, p.Format.SampleRate))
		}
	}
	if int(h.BitsPerSample) != p.BitDepth {
		diffs = append(diffs, fmt.Sprintf("bit depth: header %d, probe %d", h.BitsPerSample, p.BitDepth))
	}
	if int(h.AudioFormat) != p.AudioFormat {
		diffs = append(diffs, fmt.Sprintf("audio format: header %d, probe %d", h.AudioFormat, p.AudioFormat))
	}
	return diffs
}
