package preprocess

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultPeakMinDistance is the minimum spacing between pulse peaks in
	// seconds, a 150 bpm ceiling.
	DefaultPeakMinDistance = 0.4
	// DefaultProminenceFactor scales the waveform standard deviation into the
	// minimum peak prominence.
	DefaultProminenceFactor = 0.3
)

// PeakSet holds detected peak sample indices (ascending) and the waveform
// value at each.
type PeakSet struct {
	Indices    []int
	Amplitudes []float64
}

// Len returns the number of peaks.
func (p PeakSet) Len() int { return len(p.Indices) }

// PeakOptions parameterises DetectPeaks.
type PeakOptions struct {
	// MinDistance is the minimum spacing in samples; values below 1 disable
	// pruning.
	MinDistance int
	// MinProminence is the absolute prominence threshold; NaN keeps no peaks.
	MinProminence float64
}

// DetectPulsePeaks finds pulse peaks at least minDistanceSeconds apart whose
// prominence reaches DefaultProminenceFactor times the waveform's population
// standard deviation.
func DetectPulsePeaks(waveform Signal, minDistanceSeconds float64) (PeakSet, error) {
	return DetectPulsePeaksFactor(waveform, minDistanceSeconds, DefaultProminenceFactor)
}

// DetectPulsePeaksFactor is DetectPulsePeaks with an explicit prominence
// factor.
func DetectPulsePeaksFactor(waveform Signal, minDistanceSeconds, prominenceFactor float64) (PeakSet, error) {
	distance := int(minDistanceSeconds * waveform.rate)
	if distance < 1 {
		return PeakSet{}, configError("detect peaks", ErrInvalidRate, "min distance %v s at %v Hz is under one sample", minDistanceSeconds, waveform.rate)
	}
	var threshold float64
	if waveform.Len() > 0 {
		_, std := stat.PopMeanStdDev(waveform.samples, nil)
		threshold = prominenceFactor * std
	}
	return DetectPeaks(waveform.samples, PeakOptions{MinDistance: distance, MinProminence: threshold}), nil
}

// DetectPeaks locates local maxima in x. Flat tops resolve to their (lower)
// middle sample. Peaks closer than MinDistance are pruned tallest first, then
// the survivors are filtered by prominence.
func DetectPeaks(x []float64, opts PeakOptions) PeakSet {
	peaks := localMaxima(x)
	if opts.MinDistance > 1 && len(peaks) > 1 {
		peaks = pruneByDistance(x, peaks, opts.MinDistance)
	}
	kept := peaks[:0]
	for _, p := range peaks {
		if prominence(x, p) >= opts.MinProminence {
			kept = append(kept, p)
		}
	}
	out := PeakSet{Indices: kept, Amplitudes: make([]float64, len(kept))}
	for i, p := range kept {
		out.Amplitudes[i] = x[p]
	}
	return out
}

func localMaxima(x []float64) []int {
	var peaks []int
	n := len(x)
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}
	return peaks
}

func pruneByDistance(x []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return x[peaks[order[a]]] < x[peaks[order[b]]] })

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}
	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// prominence measures how far peak p rises above the higher of the lowest
// points between it and the nearest taller sample on either side.
func prominence(x []float64, p int) float64 {
	h := x[p]
	leftMin := h
	for i := p; i >= 0 && x[i] <= h; i-- {
		leftMin = math.Min(leftMin, x[i])
	}
	rightMin := h
	for i := p; i < len(x) && x[i] <= h; i++ {
		rightMin = math.Min(rightMin, x[i])
	}
	return h - math.Max(leftMin, rightMin)
}

// HasNaN reports whether the signal carries any NaN sample.
func (s Signal) HasNaN() bool { return floats.HasNaN(s.samples) }
