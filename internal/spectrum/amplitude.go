// Package spectrum turns a normalized sample window into per-frequency-index
// amplitudes.
//
// Two correlation-based estimators are provided and kept separate on purpose:
// DirectAmplitude is a single-bin DFT correlation, and ParityAggregateAmplitude
// splits the window by index parity, recurses, and sums the halves without
// twiddle factors. The latter is not a Fourier transform; it bottoms out at
// one-sample windows and therefore equals the sum of absolute sample values at
// every frequency index. FFTAmplitudes and FourierAmplitudes give real spectra.
package spectrum

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Method names an amplitude estimator.
type Method string

const (
	MethodDirect  Method = "direct"
	MethodParity  Method = "parity"
	MethodFFT     Method = "fft"
	MethodFourier Method = "fourier"
)

// ParseMethod accepts a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodDirect, MethodParity, MethodFFT, MethodFourier:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// DirectAmplitude correlates x against a complex sinusoid at frequency index f
// (cycles per window) and returns the magnitude.
func DirectAmplitude(f float64, x []float64) float64 {
	n := float64(len(x))
	var re, im float64
	for i, v := range x {
		theta := 2 * math.Pi * f * float64(i) / n
		re += v * math.Cos(theta)
		im -= v * math.Sin(theta)
	}
	return math.Sqrt(re*re + im*im)
}

// ParityAggregateAmplitude splits x into even- and odd-indexed halves, recurses
// on each, and sums the results. Windows of length one or less use DirectAmplitude.
func ParityAggregateAmplitude(f float64, x []float64) float64 {
	if len(x) <= 1 {
		return DirectAmplitude(f, x)
	}

	even := make([]float64, 0, (len(x)+1)/2)
	odd := make([]float64, 0, len(x)/2)
	for i, v := range x {
		if i%2 == 0 {
			even = append(even, v)
		} else {
			odd = append(odd, v)
		}
	}
	return ParityAggregateAmplitude(f, even) + ParityAggregateAmplitude(f, odd)
}

// Compute returns amplitudes for frequency indices 0..bins-1 of x. bins == 0
// means len(x). ctx is checked before every bin of the per-bin methods.
func Compute(ctx context.Context, x []float64, bins int, method Method) ([]float64, error) {
	if bins < 0 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyBins, bins)
	}
	if bins == 0 {
		bins = len(x)
	}

	switch method {
	case MethodDirect:
		return perBin(ctx, x, bins, DirectAmplitude)
	case MethodParity:
		return perBin(ctx, x, bins, ParityAggregateAmplitude)
	case MethodFFT, MethodFourier:
		if bins > len(x) {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBins, bins, len(x))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var amps []float64
		if method == MethodFFT {
			amps = FFTAmplitudes(x)
		} else {
			amps = FourierAmplitudes(x)
		}
		return amps[:bins], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func perBin(ctx context.Context, x []float64, bins int, estimate func(float64, []float64) float64) ([]float64, error) {
	out := make([]float64, bins)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped at bin %d of %d: %w", i, bins, err)
		}
		out[i] = estimate(float64(i), x)
	}
	return out, nil
}

// DualTone samples 0.5·sin(2πf1·t) + 0.5·sin(2πf2·t) at n evenly spaced points
// of t in [0, 1).
func DualTone(f1, f2 float64, n int) []float64 {
	out := make([]float64, n)
	dt := 1 / float64(n)
	t := 0.0
	for i := range out {
		out[i] = 0.5*math.Sin(2*math.Pi*f1*t) + 0.5*math.Sin(2*math.Pi*f2*t)
		t += dt
	}
	return out
}
