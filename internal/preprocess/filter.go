package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultGravityCutoff is the high-pass corner (Hz) used to strip the
	// static gravity component from accelerometer axes.
	DefaultGravityCutoff = 0.5
	gravityOrder         = 4
)

// Lowpass applies a zero-phase Butterworth low-pass filter with the given
// cutoff in Hz.
func Lowpass(sig Signal, cutoff float64, order int) (Signal, error) {
	wn, err := normalizedCutoffs(sig.rate, cutoff)
	if err != nil {
		return Signal{}, err
	}
	return designAndFilter(sig, order, KindLowpass, wn...)
}

// Highpass applies a zero-phase Butterworth high-pass filter with the given
// cutoff in Hz.
func Highpass(sig Signal, cutoff float64, order int) (Signal, error) {
	wn, err := normalizedCutoffs(sig.rate, cutoff)
	if err != nil {
		return Signal{}, err
	}
	return designAndFilter(sig, order, KindHighpass, wn...)
}

// Bandpass applies a zero-phase Butterworth band-pass filter passing
// [low, high] Hz.
func Bandpass(sig Signal, low, high float64, order int) (Signal, error) {
	if !(low < high) {
		return Signal{}, configError("bandpass", ErrInvalidCutoff, "low cutoff %v Hz must be below high cutoff %v Hz", low, high)
	}
	wn, err := normalizedCutoffs(sig.rate, low, high)
	if err != nil {
		return Signal{}, err
	}
	return designAndFilter(sig, order, KindBandpass, wn...)
}

// RemoveGravity high-passes each accelerometer axis at cutoff Hz with an
// order-4 Butterworth filter. A non-positive cutoff selects
// DefaultGravityCutoff.
func RemoveGravity(axes []Signal, cutoff float64) ([]Signal, error) {
	if cutoff <= 0 {
		cutoff = DefaultGravityCutoff
	}
	out := make([]Signal, len(axes))
	for i, axis := range axes {
		f, err := Highpass(axis, cutoff, gravityOrder)
		if err != nil {
			return nil, fmt.Errorf("remove gravity axis %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func normalizedCutoffs(rate float64, cutoffs ...float64) ([]float64, error) {
	if !(rate > 0) {
		return nil, configError("filter", ErrInvalidRate, "rate %v", rate)
	}
	nyq := rate / 2
	wn := make([]float64, len(cutoffs))
	for i, c := range cutoffs {
		if !(c > 0 && c < nyq) {
			return nil, configError("filter", ErrInvalidCutoff, "cutoff %v Hz outside (0, %v) for %v Hz", c, nyq, rate)
		}
		wn[i] = c / nyq
	}
	return wn, nil
}

func designAndFilter(sig Signal, order int, kind FilterKind, wn ...float64) (Signal, error) {
	coef, err := Butterworth(order, kind, wn...)
	if err != nil {
		return Signal{}, err
	}
	y, err := FiltFilt(coef, sig.samples)
	if err != nil {
		return Signal{}, err
	}
	return owned(y, sig.rate, sig.offset), nil
}

// FiltFilt runs coef forward and backward over x for zero phase distortion.
// The input is extended at both ends by an odd reflection of
// 3*max(len(A), len(B)) samples and each pass starts from the filter's
// steady-state conditions scaled by the first sample.
func FiltFilt(coef Coefficients, x []float64) ([]float64, error) {
	b, a, err := normalizeCoefficients(coef)
	if err != nil {
		return nil, err
	}
	padlen := 3 * len(a)
	if len(x) <= padlen {
		return nil, configError("filtfilt", ErrSignalTooShort, "%d samples, need more than %d", len(x), padlen)
	}

	zi, err := steadyState(b, a)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, padlen)
	y := lfilter(b, a, ext, scaled(zi, ext[0]))
	reverse(y)
	y = lfilter(b, a, y, scaled(zi, y[0]))
	reverse(y)
	return y[padlen : len(y)-padlen], nil
}

// normalizeCoefficients divides by a[0] and zero-pads b and a to a common
// length.
func normalizeCoefficients(coef Coefficients) ([]float64, []float64, error) {
	if len(coef.A) == 0 || len(coef.B) == 0 || coef.A[0] == 0 {
		return nil, nil, configError("filtfilt", ErrInvalidOrder, "degenerate coefficients b=%v a=%v", coef.B, coef.A)
	}
	n := len(coef.A)
	if len(coef.B) > n {
		n = len(coef.B)
	}
	b := make([]float64, n)
	a := make([]float64, n)
	a0 := coef.A[0]
	for i, v := range coef.B {
		b[i] = v / a0
	}
	for i, v := range coef.A {
		a[i] = v / a0
	}
	return b, a, nil
}

// steadyState solves (I - C^T) zi = b[1:] - a[1:]*b[0] where C is the
// companion matrix of a, giving the delay-line state for a unit step input.
func steadyState(b, a []float64) ([]float64, error) {
	m := len(a) - 1
	if m == 0 {
		return nil, nil
	}
	lhs := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		lhs.Set(i, i, 1)
		lhs.Set(i, 0, lhs.At(i, 0)+a[i+1])
		if i+1 < m {
			lhs.Set(i, i+1, -1)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}
	var zi mat.VecDense
	if err := zi.SolveVec(lhs, rhs); err != nil {
		return nil, fmt.Errorf("solve filter initial conditions: %w", err)
	}
	return mat.Col(nil, 0, &zi), nil
}

// lfilter is a direct form II transposed IIR filter with initial state zi.
func lfilter(b, a, x, zi []float64) []float64 {
	n := len(a)
	z := make([]float64, n)
	copy(z, zi)
	y := make([]float64, len(x))
	for k, xk := range x {
		yk := b[0]*xk + z[0]
		for i := 1; i < n; i++ {
			z[i-1] = b[i]*xk + z[i] - a[i]*yk
		}
		y[k] = yk
	}
	return y
}

func oddExtend(x []float64, padlen int) []float64 {
	n := len(x)
	out := make([]float64, 0, n+2*padlen)
	for i := padlen; i >= 1; i-- {
		out = append(out, 2*x[0]-x[i])
	}
	out = append(out, x...)
	for i := n - 2; i >= n-1-padlen; i-- {
		out = append(out, 2*x[n-1]-x[i])
	}
	return out
}

func scaled(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
