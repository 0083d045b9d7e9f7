package features

// Result is the extraction output for one table: one vector per epoch and
// the group outcomes behind it.
type Result struct {
	Names   []string
	Epochs  []Epoch
	Vectors []*FeatureVector
	Groups  [][]GroupResult
}

// Len returns the number of epochs.
func (r *Result) Len() int { return len(r.Vectors) }

// Rows returns a dense matrix in Names order, NaN for absent features.
func (r *Result) Rows() [][]float64 {
	rows := make([][]float64, len(r.Vectors))
	for i, v := range r.Vectors {
		rows[i] = v.Dense(r.Names)
	}
	return rows
}

// Labels returns the epoch labels, "" where an epoch has none.
func (r *Result) Labels() []string {
	out := make([]string, len(r.Vectors))
	for i, v := range r.Vectors {
		out[i] = v.Label
	}
	return out
}

// Availability counts, per target feature, the epochs that carry it.
func (r *Result) Availability() map[string]int {
	counts := make(map[string]int, len(r.Names))
	for _, n := range r.Names {
		counts[n] = 0
	}
	for _, v := range r.Vectors {
		for _, n := range r.Names {
			if v.Has(n) {
				counts[n]++
			}
		}
	}
	return counts
}

// AvailableNames returns the target names present in at least one epoch, in
// canonical order.
func (r *Result) AvailableNames() []string {
	return filterNames(r.Names, r.Availability(), true)
}

// MissingNames returns the target names no epoch carries.
func (r *Result) MissingNames() []string {
	return filterNames(r.Names, r.Availability(), false)
}

// Absences counts absent groups by group and reason.
func (r *Result) Absences() map[string]map[Reason]int {
	out := make(map[string]map[Reason]int)
	for _, groups := range r.Groups {
		for _, g := range groups {
			if g.Present {
				continue
			}
			if out[g.Group] == nil {
				out[g.Group] = make(map[Reason]int)
			}
			out[g.Group][g.Reason]++
		}
	}
	return out
}

func filterNames(names []string, counts map[string]int, available bool) []string {
	var out []string
	for _, n := range names {
		if (counts[n] > 0) == available {
			out = append(out, n)
		}
	}
	return out
}
