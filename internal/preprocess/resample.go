package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// InterpMethod selects the interpolation kernel used by Resample.
type InterpMethod string

const (
	InterpLinear  InterpMethod = "linear"
	InterpCubic   InterpMethod = "cubic"
	InterpNearest InterpMethod = "nearest"
)

// ParseInterpMethod validates an interpolation method name.
func ParseInterpMethod(name string) (InterpMethod, error) {
	switch m := InterpMethod(name); m {
	case InterpLinear, InterpCubic, InterpNearest:
		return m, nil
	}
	return "", configError("resample", ErrInvalidMethod, "unknown interpolation %q", name)
}

// Resample maps sig onto a uniform grid at targetRate. The output holds
// floor(Len/Rate*targetRate) samples at t = k/targetRate; grid points past the
// last source sample are extrapolated from the boundary slope. Equal rates
// return a value-identical copy.
func Resample(sig Signal, targetRate float64, method InterpMethod) (Signal, error) {
	if _, err := ParseInterpMethod(string(method)); err != nil {
		return Signal{}, err
	}
	if !(targetRate > 0) || math.IsInf(targetRate, 0) {
		return Signal{}, configError("resample", ErrInvalidRate, "target rate %v", targetRate)
	}
	if targetRate == sig.rate {
		return owned(sig.Values(), sig.rate, sig.offset), nil
	}

	n := sig.Len()
	outLen := int(math.Floor(float64(n) / sig.rate * targetRate))
	out := make([]float64, outLen)
	if outLen == 0 {
		return owned(out, targetRate, sig.offset), nil
	}
	if n == 1 {
		for i := range out {
			out[i] = sig.samples[0]
		}
		return owned(out, targetRate, sig.offset), nil
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / sig.rate
	}

	var predict func(float64) float64
	switch method {
	case InterpNearest:
		// Exact half-sample ties resolve to the earlier sample.
		predict = func(t float64) float64 {
			i := int(math.Ceil(t*sig.rate - 0.5))
			if i < 0 {
				i = 0
			}
			if i >= n {
				i = n - 1
			}
			return sig.samples[i]
		}
	default:
		ext, err := fitExtrapolator(method, xs, sig.samples)
		if err != nil {
			return Signal{}, err
		}
		predict = ext.at
	}

	for k := range out {
		out[k] = predict(float64(k) / targetRate)
	}
	return owned(out, targetRate, sig.offset), nil
}

// extrapolator continues a fitted interpolant past its knots along the
// boundary tangent, since gonum predictors clamp to the end values.
type extrapolator struct {
	p        interp.Predictor
	x0, xn   float64
	y0, yn   float64
	dy0, dyn float64
}

func fitExtrapolator(method InterpMethod, xs, ys []float64) (*extrapolator, error) {
	n := len(xs)
	e := &extrapolator{
		x0: xs[0], xn: xs[n-1],
		y0: ys[0], yn: ys[n-1],
	}
	if method == InterpCubic && n >= 3 {
		var nak interp.NotAKnotCubic
		if err := nak.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("fit cubic spline: %w", err)
		}
		e.p = &nak
		e.dy0 = nak.PredictDerivative(e.x0)
		e.dyn = nak.PredictDerivative(e.xn)
		return e, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit linear interpolant: %w", err)
	}
	e.p = &pl
	e.dy0 = (ys[1] - ys[0]) / (xs[1] - xs[0])
	e.dyn = (ys[n-1] - ys[n-2]) / (xs[n-1] - xs[n-2])
	return e, nil
}

func (e *extrapolator) at(x float64) float64 {
	switch {
	case x < e.x0:
		return e.y0 + e.dy0*(x-e.x0)
	case x > e.xn:
		return e.yn + e.dyn*(x-e.xn)
	}
	return e.p.Predict(x)
}
