package preprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Signal is one physical channel sampled uniformly at Rate Hz, starting
// Offset seconds into the recording. A Signal is immutable: constructors copy
// their input and Values returns a copy.
type Signal struct {
	samples []float64
	rate    float64
	offset  float64
}

// NewSignal copies samples into a new Signal sampled at rate Hz.
func NewSignal(samples []float64, rate float64) (Signal, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return Signal{}, configError("new signal", ErrInvalidRate, "rate %v", rate)
	}
	return owned(append([]float64(nil), samples...), rate, 0), nil
}

// owned wraps a slice the caller will not touch again.
func owned(samples []float64, rate, offset float64) Signal {
	return Signal{samples: samples, rate: rate, offset: offset}
}

// WithOffset returns a copy of s starting at offset seconds.
func (s Signal) WithOffset(offset float64) Signal {
	return owned(s.Values(), s.rate, offset)
}

// Len returns the number of samples.
func (s Signal) Len() int { return len(s.samples) }

// Rate returns the sampling rate in Hz.
func (s Signal) Rate() float64 { return s.rate }

// Offset returns the start offset in seconds.
func (s Signal) Offset() float64 { return s.offset }

// Duration returns the covered time span in seconds (Len / Rate).
func (s Signal) Duration() float64 {
	if s.rate == 0 {
		return 0
	}
	return float64(len(s.samples)) / s.rate
}

// At returns sample i.
func (s Signal) At(i int) float64 { return s.samples[i] }

// Values returns a copy of the samples.
func (s Signal) Values() []float64 {
	return append([]float64(nil), s.samples...)
}

// Equal reports whether two signals carry identical rate, offset and samples.
// NaN samples compare equal to NaN.
func (s Signal) Equal(o Signal) bool {
	if s.rate != o.rate || s.offset != o.offset {
		return false
	}
	return floats.Same(s.samples, o.samples)
}

// Magnitude returns the per-row Euclidean norm of three aligned axes.
func Magnitude(x, y, z Signal) (Signal, error) {
	if x.Len() != y.Len() || x.Len() != z.Len() {
		return Signal{}, configError("magnitude", ErrLengthMismatch, "%d/%d/%d samples", x.Len(), y.Len(), z.Len())
	}
	out := make([]float64, x.Len())
	for i := range out {
		a, b, c := x.samples[i], y.samples[i], z.samples[i]
		out[i] = math.Sqrt(a*a + b*b + c*c)
	}
	return owned(out, x.rate, x.offset), nil
}
