package audio

import (
	"encoding/binary"
	"fmt"
)

// MixMode selects how a stereo frame collapses to one value.
type MixMode int

const (
	// MixTruncate halves each channel with truncating division and sums them.
	// For odd samples this differs from a rounded average.
	MixTruncate MixMode = iota
	// MixRound averages the channels, rounding half away from zero.
	MixRound
)

func (m MixMode) String() string {
	switch m {
	case MixTruncate:
		return "truncate"
	case MixRound:
		return "round"
	default:
		return fmt.Sprintf("MixMode(%d)", int(m))
	}
}

// Mix combines one left and one right sample.
func Mix(left, right int32, mode MixMode) int32 {
	if mode == MixRound {
		sum := int64(left) + int64(right)
		if sum >= 0 {
			return int32((sum + 1) / 2)
		}
		return int32((sum - 1) / 2)
	}
	return left/2 + right/2
}

// ExtractMixed skips leadIn bytes from the cursor position, then reads exactly
// frames stereo frames of 24-bit little-endian samples and mixes each into one value.
func ExtractMixed(c *Cursor, frames, leadIn int, mode MixMode) ([]int32, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrames, frames)
	}
	if leadIn > 0 {
		if err := c.SetPosition(c.Position() + leadIn); err != nil {
			return nil, fmt.Errorf("skipping %d lead-in bytes: %w", leadIn, err)
		}
	}

	if avail := c.Remaining() / 6; avail < frames {
		return nil, fmt.Errorf("%w: need %d frames, %d available", ErrTruncated, frames, avail)
	}

	mixed := make([]int32, 0, frames)
	for i := 0; i < frames; i++ {
		left, err := c.ReadI24(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("reading frame %d of %d (left): %w", i, frames, err)
		}
		right, err := c.ReadI24(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("reading frame %d of %d (right): %w", i, frames, err)
		}
		mixed = append(mixed, Mix(left, right, mode))
	}
	return mixed, nil
}
