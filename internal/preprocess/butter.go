package preprocess

import (
	"math"
	"math/cmplx"
)

// FilterKind is the response type of a Butterworth design.
type FilterKind int

const (
	KindLowpass FilterKind = iota
	KindHighpass
	KindBandpass
)

func (k FilterKind) String() string {
	switch k {
	case KindLowpass:
		return "lowpass"
	case KindHighpass:
		return "highpass"
	case KindBandpass:
		return "bandpass"
	}
	return "unknown"
}

// Coefficients holds a transfer function b(z)/a(z) with a[0] == 1.
type Coefficients struct {
	B []float64
	A []float64
}

// Butterworth designs a digital Butterworth filter. Critical frequencies wn
// are normalised to Nyquist and must lie in (0, 1); KindBandpass takes two
// edges.
//
// The design follows the classic route: analog prototype poles on the unit
// circle, frequency transform at pre-warped edges, bilinear transform, then
// expansion of zeros and poles into polynomials.
func Butterworth(order int, kind FilterKind, wn ...float64) (Coefficients, error) {
	const op = "butterworth"
	if order < 1 {
		return Coefficients{}, configError(op, ErrInvalidOrder, "order %d", order)
	}
	want := 1
	switch kind {
	case KindLowpass, KindHighpass:
	case KindBandpass:
		want = 2
	default:
		return Coefficients{}, configError(op, ErrInvalidMethod, "filter kind %d", int(kind))
	}
	if len(wn) != want {
		return Coefficients{}, configError(op, ErrInvalidCutoff, "%s needs %d critical frequencies, got %d", kind, want, len(wn))
	}
	for _, w := range wn {
		if !(w > 0 && w < 1) {
			return Coefficients{}, configError(op, ErrInvalidCutoff, "normalised cutoff %v outside (0, 1)", w)
		}
	}
	if kind == KindBandpass && !(wn[0] < wn[1]) {
		return Coefficients{}, configError(op, ErrInvalidCutoff, "band edges %v >= %v", wn[0], wn[1])
	}

	// Pre-warp for the bilinear transform at fs = 2.
	const fs = 2.0
	warped := make([]float64, len(wn))
	for i, w := range wn {
		warped[i] = 2 * fs * math.Tan(math.Pi*w/fs)
	}

	p := butterPrototype(order)
	var z []complex128
	k := 1.0

	switch kind {
	case KindLowpass:
		wo := complex(warped[0], 0)
		for i := range p {
			p[i] *= wo
		}
		k = math.Pow(warped[0], float64(order))
	case KindHighpass:
		wo := complex(warped[0], 0)
		prodNeg := complex(1, 0)
		for i := range p {
			prodNeg *= -p[i]
			p[i] = wo / p[i]
		}
		k = real(1 / prodNeg)
		z = make([]complex128, order)
	case KindBandpass:
		wo := math.Sqrt(warped[0] * warped[1])
		bw := warped[1] - warped[0]
		bp := make([]complex128, 0, 2*order)
		for _, pole := range p {
			lp := pole * complex(bw/2, 0)
			root := cmplx.Sqrt(lp*lp - complex(wo*wo, 0))
			bp = append(bp, lp+root)
		}
		for _, pole := range p {
			lp := pole * complex(bw/2, 0)
			root := cmplx.Sqrt(lp*lp - complex(wo*wo, 0))
			bp = append(bp, lp-root)
		}
		p = bp
		z = make([]complex128, order)
		k = math.Pow(bw, float64(order))
	}

	zd, pd, kd := bilinear(z, p, k, fs)
	b := poly(zd)
	a := poly(pd)
	for i := range b {
		b[i] *= kd
	}
	return Coefficients{B: b, A: a}, nil
}

// butterPrototype returns the poles of an order-n analog Butterworth lowpass
// with unit cutoff.
func butterPrototype(n int) []complex128 {
	p := make([]complex128, n)
	for i := range p {
		m := float64(-n + 1 + 2*i)
		p[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*n)))
	}
	return p
}

func bilinear(z, p []complex128, k, fs float64) ([]complex128, []complex128, float64) {
	fs2 := complex(2*fs, 0)
	degree := len(p) - len(z)

	zd := make([]complex128, 0, len(p))
	num := complex(1, 0)
	for _, zero := range z {
		zd = append(zd, (fs2+zero)/(fs2-zero))
		num *= fs2 - zero
	}
	for i := 0; i < degree; i++ {
		zd = append(zd, -1)
	}

	pd := make([]complex128, len(p))
	den := complex(1, 0)
	for i, pole := range p {
		pd[i] = (fs2 + pole) / (fs2 - pole)
		den *= fs2 - pole
	}
	return zd, pd, k * real(num/den)
}

// poly expands prod(x - r) into real coefficients, highest power first.
func poly(roots []complex128) []float64 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}
