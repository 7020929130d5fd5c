package audio

import (
	"fmt"
	"os"
)

// LoadFile reads the whole container at path into memory.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading container %s: %w", path, err)
	}
	return data, nil
}

// Container is what the locate, parse and extract stages produce together.
type Container struct {
	HeaderOffset int // first byte after the sync marker
	DataOffset   int // first byte after the header
	Header       *Header
	Mixed        []int32
}

// DecodeOptions carries the container-level tunables.
type DecodeOptions struct {
	Tags        Tags
	Validation  ValidationMode
	Frames      int
	LeadInBytes int
	Mix         MixMode
}

// Step names the decode step a failure came from.
type Step string

const (
	StepLocate  Step = "locate"
	StepParse   Step = "parse"
	StepExtract Step = "extract"
)

// DecodeError attributes a Decode failure to one step.
type DecodeError struct {
	Step Step
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode runs locate, parse and extract over buf. Failures are *DecodeError.
func Decode(buf []byte, opts DecodeOptions) (*Container, error) {
	off := LocateHeader(buf, opts.Tags.Sync)
	if off == len(buf) {
		return nil, &DecodeError{StepLocate, fmt.Errorf("%w: no %08x marker in %d bytes", ErrHeaderNotFound, opts.Tags.Sync, len(buf))}
	}

	c := NewCursor(buf)
	if err := c.SetPosition(off); err != nil {
		return nil, &DecodeError{StepParse, err}
	}

	h, err := ParseHeader(c, opts.Tags, opts.Validation)
	if err != nil {
		return nil, &DecodeError{StepParse, err}
	}
	dataOff := c.Position()

	mixed, err := ExtractMixed(c, opts.Frames, opts.LeadInBytes, opts.Mix)
	if err != nil {
		return nil, &DecodeError{StepExtract, err}
	}

	return &Container{
		HeaderOffset: off,
		DataOffset:   dataOff,
		Header:       h,
		Mixed:        mixed,
	}, nil
}
