package rppg

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var ErrFilterDesign = errors.New("invalid filter design")

// butterBandpass designs a digital Butterworth bandpass filter of the given order.
// low and high are the band edges normalized to Nyquist, 0 < low < high < 1.
// The design follows the usual analog prototype -> lowpass-to-bandpass -> bilinear route
// and returns transfer function coefficients with a[0] == 1.
func butterBandpass(order int, low, high float64) (b, a []float64, err error) {
	if order < 1 {
		return nil, nil, fmt.Errorf("%w: order %d", ErrFilterDesign, order)
	}
	if !(low > 0 && low < high && high < 1) {
		return nil, nil, fmt.Errorf("%w: band [%g, %g]", ErrFilterDesign, low, high)
	}

	// analog prototype poles on the left half of the unit circle
	proto := make([]complex128, order)
	for i := range proto {
		m := float64(-order + 1 + 2*i)
		proto[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}

	// pre-warp with fs = 2
	const fs2 = 4.0
	wLow := fs2 * math.Tan(math.Pi*low/2)
	wHigh := fs2 * math.Tan(math.Pi*high/2)
	bw := wHigh - wLow
	wo := math.Sqrt(wLow * wHigh)

	poles := make([]complex128, 0, 2*order)
	for _, p := range proto {
		lp := p * complex(bw/2, 0)
		root := cmplx.Sqrt(lp*lp - complex(wo*wo, 0))
		poles = append(poles, lp+root)
	}
	for _, p := range proto {
		lp := p * complex(bw/2, 0)
		root := cmplx.Sqrt(lp*lp - complex(wo*wo, 0))
		poles = append(poles, lp-root)
	}
	gain := math.Pow(bw, float64(order))

	// bilinear transform; the order zeros at s=0 map to z=1, the rest go to z=-1
	zeros := make([]complex128, 0, 2*order)
	num := complex(math.Pow(fs2, float64(order)), 0)
	den := complex(1, 0)
	for i := range poles {
		den *= complex(fs2, 0) - poles[i]
		poles[i] = (complex(fs2, 0) + poles[i]) / (complex(fs2, 0) - poles[i])
	}
	for i := 0; i < order; i++ {
		zeros = append(zeros, 1)
	}
	for i := 0; i < order; i++ {
		zeros = append(zeros, -1)
	}
	gain *= real(num / den)

	bc := polyFromRoots(zeros)
	ac := polyFromRoots(poles)
	b = make([]float64, len(bc))
	a = make([]float64, len(ac))
	for i := range bc {
		b[i] = gain * real(bc[i])
	}
	for i := range ac {
		a[i] = real(ac[i])
	}
	return b, a, nil
}

// polyFromRoots expands prod(z - r) into coefficients, highest power first.
func polyFromRoots(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	return c
}

// lfilter applies the filter in direct form II transposed. zi is the initial state and may be nil.
func lfilter(b, a, x, zi []float64) []float64 {
	n := max(len(a), len(b))
	bb := padCoeffs(b, n)
	aa := padCoeffs(a, n)
	if aa[0] != 1 {
		for i := range bb {
			bb[i] /= aa[0]
		}
		for i := len(aa) - 1; i >= 0; i-- {
			aa[i] /= aa[0]
		}
	}

	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for k, xk := range x {
		yk := bb[0]*xk + z0(z)
		for i := 0; i < n-2; i++ {
			z[i] = bb[i+1]*xk + z[i+1] - aa[i+1]*yk
		}
		if n > 1 {
			z[n-2] = bb[n-1]*xk - aa[n-1]*yk
		}
		y[k] = yk
	}
	return y
}

func z0(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	return z[0]
}

func padCoeffs(c []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, c)
	return out
}

// lfilterZI computes the steady-state initial conditions for a unit step input.
func lfilterZI(b, a []float64) ([]float64, error) {
	n := max(len(a), len(b))
	if n < 2 {
		return nil, nil
	}
	bb := padCoeffs(b, n)
	aa := padCoeffs(a, n)
	if aa[0] == 0 {
		return nil, fmt.Errorf("%w: leading denominator coefficient is zero", ErrFilterDesign)
	}
	for i := range bb {
		bb[i] /= aa[0]
	}
	for i := len(aa) - 1; i >= 0; i-- {
		aa[i] /= aa[0]
	}

	// (I - companion(a)^T) zi = b[1:] - a[1:]*b[0]
	m := n - 1
	lhs := mat.NewDense(m, m, nil)
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		lhs.Set(i, i, 1)
		lhs.Set(i, 0, lhs.At(i, 0)+aa[i+1])
		if i+1 < m {
			lhs.Set(i, i+1, lhs.At(i, i+1)-1)
		}
		rhs.SetVec(i, bb[i+1]-aa[i+1]*bb[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(lhs, rhs); err != nil {
		return nil, fmt.Errorf("solve initial conditions: %w", err)
	}
	return zi.RawVector().Data, nil
}

// filtfilt runs the filter forward and backward for zero phase distortion.
// The signal is extended at both ends by padlen samples of odd reflection.
func filtfilt(b, a, x []float64, padlen int) ([]float64, error) {
	if padlen < 0 {
		padlen = 0
	}
	if len(x) <= padlen {
		return nil, fmt.Errorf("%w: signal length %d must exceed padlen %d", ErrFilterDesign, len(x), padlen)
	}

	zi, err := lfilterZI(b, a)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, padlen)

	state := scaled(zi, ext[0])
	y := lfilter(b, a, ext, state)

	reverse(y)
	state = scaled(zi, y[0])
	y = lfilter(b, a, y, state)
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[padlen:padlen+len(x)])
	return out, nil
}

func oddExtend(x []float64, n int) []float64 {
	if n == 0 {
		return append([]float64(nil), x...)
	}
	last := len(x) - 1
	ext := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= n; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}
	return ext
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
