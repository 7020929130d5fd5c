package spectrum

import "fmt"

// RangeSeed picks the starting values of the min/max scan.
type RangeSeed int

const (
	// SeedZero starts min and max at 0, so the range always contains zero.
	SeedZero RangeSeed = iota
	// SeedFirst starts both at the first sample, giving the true data range.
	SeedFirst
)

func (s RangeSeed) String() string {
	switch s {
	case SeedZero:
		return "zero"
	case SeedFirst:
		return "first"
	default:
		return fmt.Sprintf("RangeSeed(%d)", int(s))
	}
}

// DegeneratePolicy decides what Normalize does when min == max.
type DegeneratePolicy int

const (
	// DegenerateZero maps every sample to 0.
	DegenerateZero DegeneratePolicy = iota
	// DegenerateFail returns ErrDegenerateRange.
	DegenerateFail
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateZero:
		return "zero"
	case DegenerateFail:
		return "fail"
	default:
		return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
	}
}

type NormalizeOptions struct {
	Seed       RangeSeed
	Degenerate DegeneratePolicy
}

// Bounds returns the minimum and maximum of samples under the given seed.
func Bounds(samples []int32, seed RangeSeed) (lo, hi int32) {
	if seed == SeedFirst && len(samples) > 0 {
		lo, hi = samples[0], samples[0]
	}
	for _, s := range samples {
		if s > hi {
			hi = s
		}
		if s < lo {
			lo = s
		}
	}
	return lo, hi
}

// MapRange maps s linearly from [fromLo, fromHi] onto [toLo, toHi].
func MapRange(fromLo, fromHi, toLo, toHi, s float64) float64 {
	return toLo + (s-fromLo)*(toHi-toLo)/(fromHi-fromLo)
}

// Normalize rescales samples into [-1, 1] using their own bounds.
func Normalize(samples []int32, opts NormalizeOptions) ([]float64, error) {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out, nil
	}

	lo, hi := Bounds(samples, opts.Seed)
	if lo == hi {
		if opts.Degenerate == DegenerateFail {
			return nil, fmt.Errorf("%w: all %d samples bounded by %d", ErrDegenerateRange, len(samples), lo)
		}
		return out, nil
	}

	flo, fhi := float64(lo), float64(hi)
	for i, s := range samples {
		out[i] = MapRange(flo, fhi, -1, 1, float64(s))
	}
	return out, nil
}
