package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// ErrInvalidConfig is returned for extractor configurations that cannot
// produce epochs.
var ErrInvalidConfig = errors.New("invalid feature configuration")

// Band is a half-open frequency interval [Low, High) in Hz.
type Band struct {
	Low  float64
	High float64
}

// Contains reports whether f lies in [Low, High).
func (b Band) Contains(f float64) bool { return f >= b.Low && f < b.High }

// Bands are the spectral bands used for band-power features.
type Bands struct {
	VLF Band
	LF  Band
	HF  Band
}

// DefaultBands returns the canonical VLF/LF/HF boundaries.
func DefaultBands() Bands {
	return Bands{
		VLF: Band{Low: 0.003, High: 0.04},
		LF:  Band{Low: 0.04, High: 0.15},
		HF:  Band{Low: 0.15, High: 0.4},
	}
}

// HRVConfig bounds pulse-peak detection and interval filtering.
type HRVConfig struct {
	// MinIBIMs and MaxIBIMs bound valid intervals, both exclusive.
	MinIBIMs float64
	MaxIBIMs float64
	// MinPeaks is the fewest detected peaks needed to attempt HRV.
	MinPeaks int
	// MinIntervals is the fewest in-band intervals needed to emit HRV.
	MinIntervals int
	// PeakMinDistance is the minimum peak spacing in seconds.
	PeakMinDistance float64
	// ProminenceFactor scales the waveform std into a prominence threshold.
	ProminenceFactor float64
}

// DefaultHRVConfig returns the 300..2000 ms interval band and the 0.4 s /
// 0.3 sigma peak detector.
func DefaultHRVConfig() HRVConfig {
	return HRVConfig{
		MinIBIMs:         300,
		MaxIBIMs:         2000,
		MinPeaks:         3,
		MinIntervals:     2,
		PeakMinDistance:  0.4,
		ProminenceFactor: 0.3,
	}
}

// Range is an inclusive value band. The zero Range accepts everything.
type Range struct {
	Min float64
	Max float64
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

// Contains reports whether v lies in the band, or true for an unset range.
func (r Range) Contains(v float64) bool {
	return r.IsZero() || (v >= r.Min && v <= r.Max)
}

// Modalities switches feature groups on.
type Modalities struct {
	IMU bool
	PPG bool
}

// Enabled reports whether m is switched on.
func (m Modalities) Enabled(mod Modality) bool {
	switch mod {
	case ModalityIMU:
		return m.IMU
	case ModalityPPG:
		return m.PPG
	}
	return false
}

// Config is the immutable extractor configuration. It holds no reference
// types, so copies never share state.
type Config struct {
	EpochDuration float64 // seconds
	SamplingRate  float64 // Hz
	Overlap       float64 // fraction in [0, 1)
	Modalities    Modalities
	Spectral      bool
	Bands         Bands
	HRV           HRVConfig
	// HRValidRange optionally restricts HR samples (bpm) before statistics.
	HRValidRange Range
}

// DefaultConfig returns 30 s epochs at 64 Hz without overlap, IMU and PPG
// enabled and spectral features off.
func DefaultConfig() Config {
	return Config{
		EpochDuration: 30,
		SamplingRate:  64,
		Modalities:    Modalities{IMU: true, PPG: true},
		Bands:         DefaultBands(),
		HRV:           DefaultHRVConfig(),
	}
}

// SamplesPerEpoch is int(EpochDuration * SamplingRate).
func (c Config) SamplesPerEpoch() int {
	return int(c.EpochDuration * c.SamplingRate)
}

// StepSize is int(SamplesPerEpoch * (1 - Overlap)).
func (c Config) StepSize() int {
	return int(float64(c.SamplesPerEpoch()) * (1 - c.Overlap))
}

// Validate checks that the configuration yields a positive epoch length and
// stride and a usable HRV detector.
func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	switch {
	case !(c.SamplingRate > 0) || !finite(c.SamplingRate):
		return invalid("sampling rate %v must be positive", c.SamplingRate)
	case !(c.EpochDuration > 0) || !finite(c.EpochDuration):
		return invalid("epoch duration %v must be positive", c.EpochDuration)
	case !(c.Overlap >= 0 && c.Overlap < 1):
		return invalid("overlap %v outside [0, 1)", c.Overlap)
	case c.SamplesPerEpoch() < 1:
		return invalid("epoch of %v s at %v Hz is under one sample", c.EpochDuration, c.SamplingRate)
	case c.StepSize() < 1:
		return invalid("overlap %v leaves a step under one sample", c.Overlap)
	}
	if !c.HRValidRange.IsZero() && !(c.HRValidRange.Min < c.HRValidRange.Max) {
		return invalid("heart rate range %v..%v", c.HRValidRange.Min, c.HRValidRange.Max)
	}
	if c.Modalities.PPG {
		h := c.HRV
		switch {
		case !(h.MinIBIMs >= 0 && h.MinIBIMs < h.MaxIBIMs):
			return invalid("interval band (%v, %v) ms", h.MinIBIMs, h.MaxIBIMs)
		case h.MinPeaks < 2:
			return invalid("min peaks %d must be at least 2", h.MinPeaks)
		case h.MinIntervals < 2:
			return invalid("min intervals %d must be at least 2", h.MinIntervals)
		case int(h.PeakMinDistance*c.SamplingRate) < 1:
			return invalid("peak distance %v s is under one sample", h.PeakMinDistance)
		case !(h.ProminenceFactor >= 0):
			return invalid("prominence factor %v", h.ProminenceFactor)
		}
	}
	if c.Spectral {
		for name, b := range map[string]Band{"vlf": c.Bands.VLF, "lf": c.Bands.LF, "hf": c.Bands.HF} {
			if !(b.Low >= 0 && b.Low < b.High) {
				return invalid("%s band [%v, %v)", name, b.Low, b.High)
			}
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return &preprocess.ConfigError{
		Op:  "feature config",
		Err: fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)),
	}
}
