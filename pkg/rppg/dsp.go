package rppg

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	minDetrendSamples = 10
	normalizeEpsilon  = 1e-10
)

// detrend removes the least-squares quadratic trend against sample index.
// Signals shorter than minDetrendSamples are returned unchanged.
func detrend(x []float64) ([]float64, error) {
	n := len(x)
	out := append([]float64(nil), x...)
	if n < minDetrendSamples {
		return out, nil
	}

	// index is scaled to [0, 1] to keep the normal equations well conditioned
	design := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		design.Set(i, 0, t*t)
		design.Set(i, 1, t)
		design.Set(i, 2, 1)
	}

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(design, mat.NewVecDense(n, out)); err != nil {
		return nil, fmt.Errorf("fit trend: %w", err)
	}

	c2, c1, c0 := coeffs.AtVec(0), coeffs.AtVec(1), coeffs.AtVec(2)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = x[i] - (c2*t*t + c1*t + c0)
	}
	return out, nil
}

// zscore scales to zero mean and unit population standard deviation.
func zscore(x []float64) []float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / (std + normalizeEpsilon)
	}
	return out
}

// minMaxScale maps the signal onto [0, 1].
func minMaxScale(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	lo, hi := x[0], x[0]
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - lo) / (hi - lo + normalizeEpsilon)
	}
	return out
}

// median averages the two middle values for even lengths.
func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// dominantFrequency returns the frequency in Hz of the strongest spectral bin within [lowHz, highHz]
// after a Hann window. ok is false when no bin falls inside the band.
func dominantFrequency(x []float64, fs, lowHz, highHz float64) (freq float64, ok bool) {
	n := len(x)
	if n < 2 || fs <= 0 {
		return 0, false
	}

	windowed := window.Hann(append([]float64(nil), x...))
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	best := -1.0
	for i := range coeffs {
		// the Nyquist bin of an even length transform is a negative frequency
		if n%2 == 0 && i == n/2 {
			continue
		}
		f := fft.Freq(i) * fs
		if f < lowHz || f > highHz {
			continue
		}
		if mag := cmplxAbs(coeffs[i]); mag > best {
			best = mag
			freq = f
			ok = true
		}
	}
	return freq, ok
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
