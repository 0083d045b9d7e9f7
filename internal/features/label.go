package features

// MajorityLabel returns the most frequent non-empty label, breaking ties by
// first occurrence. ok is false when no row carries a label.
func MajorityLabel(labels []string) (label string, ok bool) {
	counts := make(map[string]int, 8)
	var order []string
	for _, l := range labels {
		if l == "" {
			continue
		}
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}
	best := 0
	for _, l := range order {
		if counts[l] > best {
			label, best = l, counts[l]
		}
	}
	return label, best > 0
}
