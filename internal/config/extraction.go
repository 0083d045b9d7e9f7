package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/banshee-data/sleep.report/internal/dataset"
	"github.com/banshee-data/sleep.report/internal/features"
)

// DefaultConfigPath is the path to the canonical extraction defaults file.
const DefaultConfigPath = "config/extraction.defaults.json"

// ExtractionConfig is the on-disk extraction configuration. Every field is
// optional; the Get* methods supply the defaults for omitted fields, so
// partial files are safe.
type ExtractionConfig struct {
	// Windowing
	Resolution    *string  `json:"resolution,omitempty"`     // "64Hz" or "100Hz"
	EpochDuration *string  `json:"epoch_duration,omitempty"` // duration string like "30s"
	Overlap       *float64 `json:"overlap,omitempty"`

	// Feature groups
	IncludeIMU *bool `json:"include_imu,omitempty"`
	IncludePPG *bool `json:"include_ppg,omitempty"`
	Spectral   *bool `json:"spectral,omitempty"`

	// Pulse peaks and HRV
	PeakMinDistance  *string  `json:"peak_min_distance,omitempty"` // duration string like "400ms"
	ProminenceFactor *float64 `json:"prominence_factor,omitempty"`
	MinIBIMs         *float64 `json:"min_ibi_ms,omitempty"`
	MaxIBIMs         *float64 `json:"max_ibi_ms,omitempty"`
	MinPeaks         *int     `json:"min_peaks,omitempty"`
	MinIntervals     *int     `json:"min_intervals,omitempty"`
	HRMinBPM         *float64 `json:"hr_min_bpm,omitempty"`
	HRMaxBPM         *float64 `json:"hr_max_bpm,omitempty"`

	// Run
	Workers         *int  `json:"workers,omitempty"`
	ValidStagesOnly *bool `json:"valid_stages_only,omitempty"`
	DropIncomplete  *bool `json:"drop_incomplete,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyExtractionConfig returns an ExtractionConfig with all fields nil.
func EmptyExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{}
}

// LoadExtractionConfig loads an ExtractionConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadExtractionConfig(path string) (*ExtractionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExtractionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// working directory. Panics if the file cannot be loaded, intended for test
// setup.
func MustLoadDefaultConfig() *ExtractionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/extract/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadExtractionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Cross-field checks that depend
// on defaults are left to FeatureConfig.
func (c *ExtractionConfig) Validate() error {
	if c.Resolution != nil {
		if _, err := dataset.ParseResolution(*c.Resolution); err != nil {
			return err
		}
	}
	if c.EpochDuration != nil {
		d, err := time.ParseDuration(*c.EpochDuration)
		if err != nil {
			return fmt.Errorf("invalid epoch_duration '%s': %w", *c.EpochDuration, err)
		}
		if d <= 0 {
			return fmt.Errorf("epoch_duration must be positive, got %s", d)
		}
	}
	if c.Overlap != nil && (*c.Overlap < 0 || *c.Overlap >= 1) {
		return fmt.Errorf("overlap must be in [0, 1), got %f", *c.Overlap)
	}
	if c.PeakMinDistance != nil {
		if _, err := time.ParseDuration(*c.PeakMinDistance); err != nil {
			return fmt.Errorf("invalid peak_min_distance '%s': %w", *c.PeakMinDistance, err)
		}
	}
	if c.ProminenceFactor != nil && *c.ProminenceFactor < 0 {
		return fmt.Errorf("prominence_factor must be non-negative, got %f", *c.ProminenceFactor)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if (c.HRMinBPM == nil) != (c.HRMaxBPM == nil) {
		return fmt.Errorf("hr_min_bpm and hr_max_bpm must be set together")
	}
	return nil
}

// GetResolution returns the resolution or "64Hz".
func (c *ExtractionConfig) GetResolution() string {
	if c.Resolution == nil {
		return string(dataset.Resolution64Hz)
	}
	return *c.Resolution
}

// GetEpochDuration returns the epoch length or 30s.
func (c *ExtractionConfig) GetEpochDuration() time.Duration {
	if c.EpochDuration == nil || *c.EpochDuration == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(*c.EpochDuration)
	if err != nil {
		return 30 * time.Second // default on parse error
	}
	return d
}

// GetOverlap returns the overlap fraction or 0.
func (c *ExtractionConfig) GetOverlap() float64 {
	if c.Overlap == nil {
		return 0
	}
	return *c.Overlap
}

// GetIncludeIMU returns include_imu or true.
func (c *ExtractionConfig) GetIncludeIMU() bool {
	if c.IncludeIMU == nil {
		return true
	}
	return *c.IncludeIMU
}

// GetIncludePPG returns include_ppg or true.
func (c *ExtractionConfig) GetIncludePPG() bool {
	if c.IncludePPG == nil {
		return true
	}
	return *c.IncludePPG
}

// GetSpectral returns spectral or false.
func (c *ExtractionConfig) GetSpectral() bool {
	if c.Spectral == nil {
		return false
	}
	return *c.Spectral
}

// GetPeakMinDistance returns the minimum pulse-peak spacing or 400ms.
func (c *ExtractionConfig) GetPeakMinDistance() time.Duration {
	if c.PeakMinDistance == nil || *c.PeakMinDistance == "" {
		return 400 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.PeakMinDistance)
	if err != nil {
		return 400 * time.Millisecond
	}
	return d
}

// GetProminenceFactor returns prominence_factor or 0.3.
func (c *ExtractionConfig) GetProminenceFactor() float64 {
	if c.ProminenceFactor == nil {
		return 0.3
	}
	return *c.ProminenceFactor
}

// GetMinIBIMs returns min_ibi_ms or 300.
func (c *ExtractionConfig) GetMinIBIMs() float64 {
	if c.MinIBIMs == nil {
		return 300
	}
	return *c.MinIBIMs
}

// GetMaxIBIMs returns max_ibi_ms or 2000.
func (c *ExtractionConfig) GetMaxIBIMs() float64 {
	if c.MaxIBIMs == nil {
		return 2000
	}
	return *c.MaxIBIMs
}

// GetMinPeaks returns min_peaks or 3.
func (c *ExtractionConfig) GetMinPeaks() int {
	if c.MinPeaks == nil {
		return 3
	}
	return *c.MinPeaks
}

// GetMinIntervals returns min_intervals or 2.
func (c *ExtractionConfig) GetMinIntervals() int {
	if c.MinIntervals == nil {
		return 2
	}
	return *c.MinIntervals
}

// GetHRValidRange returns the optional heart-rate band; the zero range
// disables band filtering.
func (c *ExtractionConfig) GetHRValidRange() features.Range {
	if c.HRMinBPM == nil || c.HRMaxBPM == nil {
		return features.Range{}
	}
	return features.Range{Min: *c.HRMinBPM, Max: *c.HRMaxBPM}
}

// GetWorkers returns workers, or GOMAXPROCS when unset or zero.
func (c *ExtractionConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}

// GetValidStagesOnly returns valid_stages_only or true.
func (c *ExtractionConfig) GetValidStagesOnly() bool {
	if c.ValidStagesOnly == nil {
		return true
	}
	return *c.ValidStagesOnly
}

// GetDropIncomplete returns drop_incomplete or false.
func (c *ExtractionConfig) GetDropIncomplete() bool {
	if c.DropIncomplete == nil {
		return false
	}
	return *c.DropIncomplete
}

// FeatureConfig builds the immutable extractor configuration.
func (c *ExtractionConfig) FeatureConfig() (features.Config, error) {
	res, err := dataset.ParseResolution(c.GetResolution())
	if err != nil {
		return features.Config{}, err
	}
	fc := features.Config{
		EpochDuration: c.GetEpochDuration().Seconds(),
		SamplingRate:  res.Rate(),
		Overlap:       c.GetOverlap(),
		Modalities: features.Modalities{
			IMU: c.GetIncludeIMU(),
			PPG: c.GetIncludePPG(),
		},
		Spectral: c.GetSpectral(),
		Bands:    features.DefaultBands(),
		HRV: features.HRVConfig{
			MinIBIMs:         c.GetMinIBIMs(),
			MaxIBIMs:         c.GetMaxIBIMs(),
			MinPeaks:         c.GetMinPeaks(),
			MinIntervals:     c.GetMinIntervals(),
			PeakMinDistance:  c.GetPeakMinDistance().Seconds(),
			ProminenceFactor: c.GetProminenceFactor(),
		},
		HRValidRange: c.GetHRValidRange(),
	}
	if err := fc.Validate(); err != nil {
		return features.Config{}, err
	}
	return fc, nil
}
