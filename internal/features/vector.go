package features

import "math"

// FeatureVector maps feature names to values in insertion order, with an
// optional epoch label.
type FeatureVector struct {
	names  []string
	values map[string]float64

	Label    string
	HasLabel bool
}

// NewFeatureVector returns an empty vector.
func NewFeatureVector() *FeatureVector {
	return &FeatureVector{values: make(map[string]float64)}
}

// Set stores v under name. New names are appended to the order.
func (v *FeatureVector) Set(name string, value float64) {
	if _, ok := v.values[name]; !ok {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns the value for name.
func (v *FeatureVector) Get(name string) (float64, bool) {
	x, ok := v.values[name]
	return x, ok
}

// Has reports whether name is present.
func (v *FeatureVector) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

// Len returns the number of features.
func (v *FeatureVector) Len() int { return len(v.names) }

// Names returns the feature names in insertion order.
func (v *FeatureVector) Names() []string {
	return append([]string(nil), v.names...)
}

// Dense returns the values for names in that order, NaN where absent.
func (v *FeatureVector) Dense(names []string) []float64 {
	out := make([]float64, len(names))
	for i, n := range names {
		if x, ok := v.values[n]; ok {
			out[i] = x
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func (v *FeatureVector) merge(g GroupResult) {
	if !g.Present {
		return
	}
	for _, f := range g.Features {
		v.Set(f.Name, f.Value)
	}
}
