package features

// Epoch is the row range [Start, End) of one extraction window.
type Epoch struct {
	Index int
	Start int
	End   int
}

// Len returns End - Start.
func (e Epoch) Len() int { return e.End - e.Start }

// EpochCount returns floor((rows-size)/step)+1 when rows >= size, else 0.
func EpochCount(rows, size, step int) int {
	if size < 1 || step < 1 || rows < size {
		return 0
	}
	return (rows-size)/step + 1
}

// Windows lays out full epochs of size rows every step rows from row 0. A
// trailing partial window is dropped.
func Windows(rows, size, step int) []Epoch {
	out := make([]Epoch, 0, EpochCount(rows, size, step))
	for start := 0; size >= 1 && step >= 1 && start+size <= rows; start += step {
		out = append(out, Epoch{Index: len(out), Start: start, End: start + size})
	}
	return out
}
