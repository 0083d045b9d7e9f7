package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// magnitude is the per-row Euclidean norm of three axis windows. Rows with a
// NaN axis produce NaN.
func magnitude(x, y, z []float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.Sqrt(x[i]*x[i] + y[i]*y[i] + z[i]*z[i])
	}
	return out
}

// movementGroup derives activity count (sum of absolute first differences)
// and movement intensity (population std) from the valid magnitude samples.
func movementGroup(mag []float64) GroupResult {
	m := preprocess.DropNaN(mag)
	if len(m) == 0 {
		return absent(GroupMovement, ReasonNoValidSamples)
	}
	var activity float64
	for i := 1; i < len(m); i++ {
		activity += math.Abs(m[i] - m[i-1])
	}
	_, intensity := stat.PopMeanStdDev(m, nil)
	return present(GroupMovement, []Feature{
		{Name: movementNames[0], Value: activity},
		{Name: movementNames[1], Value: intensity},
	})
}
