package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// ErrInvalidTable is returned when channels disagree on row count or the
// table rate is unusable.
var ErrInvalidTable = errors.New("invalid table")

// Table is one participant's recording: numeric channels and an optional
// label column sharing a row index at a single sampling rate.
type Table struct {
	rate     float64
	rows     int
	sized    bool
	channels map[string][]float64
	labels   []string
}

// NewTable returns an empty table sampled at rate Hz.
func NewTable(rate float64) (*Table, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, &preprocess.ConfigError{Op: "new table", Err: fmt.Errorf("%w: rate %v", ErrInvalidTable, rate)}
	}
	return &Table{rate: rate, channels: make(map[string][]float64)}, nil
}

func (t *Table) fitRows(name string, n int) error {
	if t.sized && n != t.rows {
		return &preprocess.ConfigError{Op: "table", Err: fmt.Errorf("%w: %s has %d rows, table has %d", ErrInvalidTable, name, n, t.rows)}
	}
	t.rows, t.sized = n, true
	return nil
}

// AddChannel stores a copy of values under name, replacing any existing
// channel of that name.
func (t *Table) AddChannel(name string, values []float64) error {
	if err := t.fitRows(name, len(values)); err != nil {
		return err
	}
	t.channels[name] = append([]float64(nil), values...)
	return nil
}

// SetLabels stores a copy of the per-row label column. Empty strings mark
// unlabelled rows.
func (t *Table) SetLabels(labels []string) error {
	if err := t.fitRows(LabelColumn, len(labels)); err != nil {
		return err
	}
	t.labels = append([]string(nil), labels...)
	return nil
}

// Rate returns the sampling rate in Hz.
func (t *Table) Rate() float64 { return t.rate }

// Rows returns the shared row count.
func (t *Table) Rows() int { return t.rows }

// HasLabels reports whether a label column was set.
func (t *Table) HasLabels() bool { return t.labels != nil }

// HasChannel reports whether name was added.
func (t *Table) HasChannel(name string) bool {
	_, ok := t.channels[name]
	return ok
}

// Channels returns the channel names in sorted order.
func (t *Table) Channels() []string {
	names := make([]string, 0, len(t.channels))
	for n := range t.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Supports reports whether every channel the modality requires is declared.
func (t *Table) Supports(m Modality) bool {
	req := m.RequiredChannels()
	if len(req) == 0 {
		return false
	}
	for _, c := range req {
		if !t.HasChannel(c) {
			return false
		}
	}
	return true
}

// Signal returns rows [start, end) of channel name, offset to its position in
// the recording.
func (t *Table) Signal(name string, start, end int) (preprocess.Signal, bool) {
	col, ok := t.channels[name]
	if !ok || start < 0 || end > len(col) || start > end {
		return preprocess.Signal{}, false
	}
	sig, err := preprocess.NewSignal(col[start:end], t.rate)
	if err != nil {
		return preprocess.Signal{}, false
	}
	return sig.WithOffset(float64(start) / t.rate), true
}

// window returns the raw rows [start, end) of a channel without copying.
func (t *Table) window(name string, start, end int) ([]float64, bool) {
	col, ok := t.channels[name]
	if !ok {
		return nil, false
	}
	return col[start:end], true
}

// Labels returns a copy of rows [start, end) of the label column.
func (t *Table) Labels(start, end int) []string {
	if t.labels == nil {
		return nil
	}
	return append([]string(nil), t.labels[start:end]...)
}
