package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/AmpSpectrum/internal/audiotest"
)

func TestProbeAgreesWithParser(t *testing.T) {
	frames := audiotest.SineFrames(64, 4, 1<<20)
	path := filepath.Join(t.TempDir(), "encoded.wav")
	if err := audiotest.WriteWithEncoder(path, 44100, frames); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	probe, err := Probe(buf)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	got, err := Decode(buf, DecodeOptions{Tags: DefaultTags(), Validation: Strict, Frames: len(frames)})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if diffs := CrossCheck(got.Header, probe); len(diffs) != 0 {
		t.Errorf("Parser and probe disagree: %v", diffs)
	}
	for i, f := range frames {
		if want := Mix(f.Left, f.Right, MixTruncate); got.Mixed[i] != want {
			t.Fatalf("Sample %d: expected %d, got %d", i, want, got.Mixed[i])
		}
	}
}

func TestProbeRejectsGarbage(t *testing.T) {
	if _, err := Probe([]byte("definitely not a wav file")); err == nil {
		t.Error("Expected probe to fail on garbage")
	}
}

func TestCrossCheckReportsDifferences(t *testing.T) {
	buf := audiotest.Build(audiotest.Options{SampleRate: 48000, Frames: audiotest.SilentFrames(4)})
	probe, err := Probe(buf)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	h := &Header{ChannelCount: 2, SampleRate: 44100, BitsPerSample: 24, AudioFormat: 1}
	diffs := CrossCheck(h, probe)
	if len(diffs) != 1 {
		t.Errorf("Expected one difference (sample rate), got %v", diffs)
	}
}
