package features

import "fmt"

// Reason explains why a feature group is absent from an epoch.
type Reason string

const (
	ReasonMissingChannel        Reason = "missing channel"
	ReasonNoValidSamples        Reason = "no valid samples"
	ReasonInsufficientPeaks     Reason = "insufficient peaks"
	ReasonInsufficientIntervals Reason = "insufficient intervals"
	ReasonNonFiniteWaveform     Reason = "non-finite waveform"
)

// Feature is one named scalar.
type Feature struct {
	Name  string
	Value float64
}

// GroupResult is the outcome of one feature group for one epoch: either the
// group's features, or the reason they are absent.
type GroupResult struct {
	Group    string
	Present  bool
	Reason   Reason
	Features []Feature
}

func present(group string, feats []Feature) GroupResult {
	return GroupResult{Group: group, Present: true, Features: feats}
}

func absent(group string, reason Reason) GroupResult {
	return GroupResult{Group: group, Reason: reason}
}

func (g GroupResult) String() string {
	if g.Present {
		return fmt.Sprintf("%s: %d features", g.Group, len(g.Features))
	}
	return fmt.Sprintf("%s: absent (%s)", g.Group, g.Reason)
}
