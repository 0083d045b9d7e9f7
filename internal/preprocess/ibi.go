package preprocess

// InterbeatIntervals converts consecutive peak indices into intervals in
// milliseconds. Fewer than two peaks yield no intervals.
func InterbeatIntervals(peaks []int, rate float64) ([]float64, error) {
	if !(rate > 0) {
		return nil, configError("interbeat intervals", ErrInvalidRate, "rate %v", rate)
	}
	if len(peaks) < 2 {
		return nil, nil
	}
	out := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		out[i-1] = float64(peaks[i]-peaks[i-1]) / rate * 1000
	}
	return out, nil
}
