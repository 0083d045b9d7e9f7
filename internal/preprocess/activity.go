package preprocess

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ActivityCounts splits magnitude into consecutive windows of epochDuration
// seconds and returns the sum of absolute deviations from each window's mean.
// A trailing partial window is dropped.
func ActivityCounts(magnitude Signal, epochDuration float64) ([]float64, error) {
	window := int(epochDuration * magnitude.rate)
	if !(epochDuration > 0) || math.IsInf(epochDuration, 0) || window < 1 {
		return nil, configError("activity counts", ErrInvalidRate, "window of %v s at %v Hz", epochDuration, magnitude.rate)
	}
	n := magnitude.Len() / window
	counts := make([]float64, n)
	for w := range counts {
		seg := magnitude.samples[w*window : (w+1)*window]
		mean := stat.Mean(seg, nil)
		var sum float64
		for _, v := range seg {
			sum += math.Abs(v - mean)
		}
		counts[w] = sum
	}
	return counts, nil
}
