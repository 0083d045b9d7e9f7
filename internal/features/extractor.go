package features

import (
	"fmt"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// Extractor computes epoch feature vectors for one Config. It holds no
// mutable state and may be shared across goroutines.
type Extractor struct {
	cfg   Config
	names []string
	size  int
	step  int
}

// NewExtractor validates cfg and returns an extractor bound to it.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:   cfg,
		names: FeatureNames(cfg),
		size:  cfg.SamplesPerEpoch(),
		step:  cfg.StepSize(),
	}, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config { return e.cfg }

// FeatureNames returns the canonical ordered target feature names.
func (e *Extractor) FeatureNames() []string {
	return append([]string(nil), e.names...)
}

// Epochs lays out the epochs for a table with rows rows.
func (e *Extractor) Epochs(rows int) []Epoch {
	return Windows(rows, e.size, e.step)
}

func (e *Extractor) checkTable(t *Table) error {
	if t == nil {
		return &preprocess.ConfigError{Op: "extract", Err: fmt.Errorf("%w: nil table", ErrInvalidTable)}
	}
	if t.Rate() != e.cfg.SamplingRate {
		return &preprocess.ConfigError{Op: "extract", Err: fmt.Errorf("%w: table rate %v Hz, extractor rate %v Hz", ErrInvalidConfig, t.Rate(), e.cfg.SamplingRate)}
	}
	return nil
}

// ExtractAll extracts every full epoch of t.
func (e *Extractor) ExtractAll(t *Table) (*Result, error) {
	if err := e.checkTable(t); err != nil {
		return nil, err
	}
	epochs := e.Epochs(t.Rows())
	res := &Result{
		Names:   e.FeatureNames(),
		Epochs:  epochs,
		Vectors: make([]*FeatureVector, len(epochs)),
		Groups:  make([][]GroupResult, len(epochs)),
	}
	for i, ep := range epochs {
		v, groups, err := e.extract(t, ep)
		if err != nil {
			return nil, fmt.Errorf("epoch %d [%d, %d): %w", ep.Index, ep.Start, ep.End, err)
		}
		res.Vectors[i] = v
		res.Groups[i] = groups
	}
	return res, nil
}

// ExtractEpoch computes one epoch's vector and the per-group outcomes.
func (e *Extractor) ExtractEpoch(t *Table, ep Epoch) (*FeatureVector, []GroupResult, error) {
	if err := e.checkTable(t); err != nil {
		return nil, nil, err
	}
	if ep.Start < 0 || ep.End > t.Rows() || ep.Len() != e.size {
		return nil, nil, fmt.Errorf("%w: epoch [%d, %d) does not fit %d rows of %d-sample epochs", ErrInvalidTable, ep.Start, ep.End, t.Rows(), e.size)
	}
	return e.extract(t, ep)
}

func (e *Extractor) extract(t *Table, ep Epoch) (*FeatureVector, []GroupResult, error) {
	v := NewFeatureVector()
	var groups []GroupResult
	add := func(g GroupResult) {
		groups = append(groups, g)
		v.merge(g)
	}

	var mag []float64
	imu := e.cfg.Modalities.IMU && t.Supports(ModalityIMU)
	if e.cfg.Modalities.IMU && !imu {
		add(absent(ModalityIMU.String(), ReasonMissingChannel))
	}
	if imu {
		x, _ := t.window(ChannelAccX, ep.Start, ep.End)
		y, _ := t.window(ChannelAccY, ep.Start, ep.End)
		z, _ := t.window(ChannelAccZ, ep.Start, ep.End)
		add(statsGroup(PrefixIMUX, x))
		add(statsGroup(PrefixIMUY, y))
		add(statsGroup(PrefixIMUZ, z))
		mag = magnitude(x, y, z)
		add(statsGroup(PrefixIMUMag, mag))
		add(movementGroup(mag))
	}

	var bvp []float64
	ppg := e.cfg.Modalities.PPG && t.Supports(ModalityPPG)
	if e.cfg.Modalities.PPG && !ppg {
		add(absent(ModalityPPG.String(), ReasonMissingChannel))
	}
	if ppg {
		bvp, _ = t.window(ChannelBVP, ep.Start, ep.End)
		add(statsGroup(PrefixPPG, bvp))
		if hr, ok := t.window(ChannelHR, ep.Start, ep.End); ok {
			add(hrGroup(hr, e.cfg.HRValidRange))
		} else {
			add(absent(PrefixHR, ReasonMissingChannel))
		}
		wave, _ := t.Signal(ChannelBVP, ep.Start, ep.End)
		g, err := hrvGroup(wave, e.cfg.HRV)
		if err != nil {
			return nil, nil, err
		}
		add(g)
	}

	if e.cfg.Spectral {
		if imu {
			add(spectralGroup(PrefixIMUMag, mag, t.Rate(), e.cfg.Bands))
		}
		if ppg {
			add(spectralGroup(PrefixPPG, bvp, t.Rate(), e.cfg.Bands))
		}
	}

	if t.HasLabels() {
		v.Label, v.HasLabel = MajorityLabel(t.Labels(ep.Start, ep.End))
	}
	return v, groups, nil
}
