package preprocess

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMethod is returned for unrecognised interpolation or
	// normalisation method names.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrInvalidCutoff is returned when a cutoff frequency is not inside (0, Nyquist)
	// or a band's low edge is not below its high edge.
	ErrInvalidCutoff = errors.New("invalid cutoff frequency")
	// ErrInvalidOrder is returned for filter orders below 1.
	ErrInvalidOrder = errors.New("invalid filter order")
	// ErrInvalidRate is returned for non-positive sampling rates or window lengths.
	ErrInvalidRate = errors.New("invalid sampling rate")
	// ErrLengthMismatch is returned when channels that must be aligned differ in length.
	ErrLengthMismatch = errors.New("signal length mismatch")
	// ErrSignalTooShort is returned when a signal is not longer than the
	// padding required by forward-backward filtering.
	ErrSignalTooShort = errors.New("signal too short")
)

// ConfigError reports a caller configuration mistake for a named operation.
// These are never recovered inside the package.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(op string, sentinel error, format string, args ...interface{}) error {
	return &ConfigError{
		Op:  op,
		Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}
