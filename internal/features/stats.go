package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// Stats is the per-channel statistical set.
type Stats struct {
	Mean          float64
	Std           float64
	Min           float64
	Max           float64
	Range         float64
	Median        float64
	IQR           float64
	Skew          float64
	Kurtosis      float64
	Energy        float64
	RMS           float64
	ZeroCrossings float64
}

// ComputeStats summarises values after dropping NaN. ok is false when no
// sample remains. Std is the population deviation; skew and excess kurtosis
// are the biased estimators and are 0 for a constant channel.
func ComputeStats(values []float64) (s Stats, ok bool) {
	x := preprocess.DropNaN(values)
	if len(x) == 0 {
		return Stats{}, false
	}
	s.Mean, s.Std = stat.PopMeanStdDev(x, nil)
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Range = s.Max - s.Min

	sorted := preprocess.Sorted(x)
	s.Median = preprocess.Percentile(sorted, 50)
	s.IQR = preprocess.Percentile(sorted, 75) - preprocess.Percentile(sorted, 25)

	if s.Std > 0 {
		m2 := stat.MomentAbout(2, x, s.Mean, nil)
		m3 := stat.MomentAbout(3, x, s.Mean, nil)
		m4 := stat.MomentAbout(4, x, s.Mean, nil)
		s.Skew = m3 / math.Pow(m2, 1.5)
		s.Kurtosis = m4/(m2*m2) - 3
	}

	s.Energy = floats.Dot(x, x)
	s.RMS = math.Sqrt(s.Energy / float64(len(x)))
	s.ZeroCrossings = float64(zeroCrossings(x, s.Mean))
	return s, true
}

// zeroCrossings counts sign changes of x - mean. A sample equal to the mean
// counts as positive.
func zeroCrossings(x []float64, mean float64) int {
	var n int
	for i := 1; i < len(x); i++ {
		if (x[i-1]-mean >= 0) != (x[i]-mean >= 0) {
			n++
		}
	}
	return n
}

// Features renders s in canonical suffix order under prefix.
func (s Stats) Features(prefix string) []Feature {
	vals := []float64{
		s.Mean, s.Std, s.Min, s.Max, s.Range, s.Median, s.IQR,
		s.Skew, s.Kurtosis, s.Energy, s.RMS, s.ZeroCrossings,
	}
	out := make([]Feature, len(vals))
	for i, v := range vals {
		out[i] = Feature{Name: prefix + "_" + statSuffixes[i], Value: v}
	}
	return out
}

func statsGroup(prefix string, values []float64) GroupResult {
	s, ok := ComputeStats(values)
	if !ok {
		return absent(prefix, ReasonNoValidSamples)
	}
	return present(prefix, s.Features(prefix))
}
