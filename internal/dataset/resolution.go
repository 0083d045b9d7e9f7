// Package dataset discovers and loads per-participant recordings laid out as
// <root>/data_<resolution>/<participant>_whole_df.csv.
package dataset

import (
	"errors"
	"fmt"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// ErrUnknownResolution is returned for resolution strings other than 64Hz
// and 100Hz.
var ErrUnknownResolution = errors.New("unknown resolution")

// Resolution names one of the published sampling grids.
type Resolution string

const (
	Resolution64Hz  Resolution = "64Hz"
	Resolution100Hz Resolution = "100Hz"
)

// ParseResolution validates a resolution string.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case Resolution64Hz, Resolution100Hz:
		return r, nil
	}
	return "", &preprocess.ConfigError{
		Op:  "parse resolution",
		Err: fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownResolution, s, Resolution64Hz, Resolution100Hz),
	}
}

// Rate returns the sampling rate in Hz.
func (r Resolution) Rate() float64 {
	switch r {
	case Resolution64Hz:
		return 64
	case Resolution100Hz:
		return 100
	}
	return 0
}

// Dir returns the data directory name, e.g. "data_64Hz".
func (r Resolution) Dir() string { return "data_" + string(r) }
