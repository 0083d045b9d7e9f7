package preprocess

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormMethod selects a scaling rule for Normalize.
type NormMethod string

const (
	// NormZScore scales to (x - mean) / std.
	NormZScore NormMethod = "zscore"
	// NormMinMax scales to (x - min) / (max - min).
	NormMinMax NormMethod = "minmax"
	// NormRobust scales to (x - median) / IQR.
	NormRobust NormMethod = "robust"
)

// ParseNormMethod validates a normalisation method name.
func ParseNormMethod(name string) (NormMethod, error) {
	switch m := NormMethod(name); m {
	case NormZScore, NormMinMax, NormRobust:
		return m, nil
	}
	return "", configError("normalize", ErrInvalidMethod, "unknown normalization %q", name)
}

// Normalize rescales sig. A zero denominator (constant signal, zero range or
// zero IQR) is replaced by 1 so the signal is only shifted.
func Normalize(sig Signal, method NormMethod) (Signal, error) {
	if _, err := ParseNormMethod(string(method)); err != nil {
		return Signal{}, err
	}
	out := sig.Values()
	if len(out) == 0 {
		return owned(out, sig.rate, sig.offset), nil
	}

	var center, scale float64
	switch method {
	case NormZScore:
		center, scale = stat.PopMeanStdDev(out, nil)
	case NormMinMax:
		center = floats.Min(out)
		scale = floats.Max(out) - center
	case NormRobust:
		sorted := Sorted(out)
		center = Percentile(sorted, 50)
		scale = Percentile(sorted, 75) - Percentile(sorted, 25)
	}
	if scale == 0 {
		scale = 1
	}

	floats.AddConst(-center, out)
	floats.Scale(1/scale, out)
	return owned(out, sig.rate, sig.offset), nil
}

// NormalizeAxes normalises each axis of a multi-axis recording independently.
func NormalizeAxes(axes []Signal, method NormMethod) ([]Signal, error) {
	out := make([]Signal, len(axes))
	for i, axis := range axes {
		n, err := Normalize(axis, method)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
