package spectrum

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTAmplitudes returns |X[k]| for every k of the discrete Fourier transform of x,
// computed with go-dsp (radix-2 or Bluestein depending on length).
func FFTAmplitudes(x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	return magnitudes(fft.FFTReal(x))
}

// FourierAmplitudes computes the same magnitudes with gonum's real FFT, which
// only yields k <= n/2; the rest follow from conjugate symmetry.
func FourierAmplitudes(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, x)
	for k, c := range coeffs {
		out[k] = cmplx.Abs(c)
	}
	for k := len(coeffs); k < n; k++ {
		out[k] = out[n-k]
	}
	return out
}

func magnitudes(spec []complex128) []float64 {
	out := make([]float64, len(spec))
	for i, c := range spec {
		out[i] = cmplx.Abs(c)
	}
	return out
}
