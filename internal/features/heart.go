package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

func hrGroup(hr []float64, valid Range) GroupResult {
	x := make([]float64, 0, len(hr))
	for _, v := range hr {
		if !math.IsNaN(v) && valid.Contains(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return absent(PrefixHR, ReasonNoValidSamples)
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	lo, hi := floats.Min(x), floats.Max(x)
	vals := []float64{mean, std, lo, hi, hi - lo}
	out := make([]Feature, len(vals))
	for i, v := range vals {
		out[i] = Feature{Name: PrefixHR + "_" + hrSuffixes[i], Value: v}
	}
	return present(PrefixHR, out)
}

// HRV summarises the in-band inter-beat intervals of one epoch.
type HRV struct {
	MeanIBI float64
	SDNN    float64
	RMSSD   float64
	PNN50   float64
	PNN20   float64
}

// ComputeHRV filters ibis to the open interval (cfg.MinIBIMs, cfg.MaxIBIMs)
// and summarises what remains. ok is false with fewer than cfg.MinIntervals
// valid intervals.
func ComputeHRV(ibis []float64, cfg HRVConfig) (h HRV, ok bool) {
	valid := make([]float64, 0, len(ibis))
	for _, v := range ibis {
		if v > cfg.MinIBIMs && v < cfg.MaxIBIMs {
			valid = append(valid, v)
		}
	}
	if len(valid) < cfg.MinIntervals || len(valid) < 2 {
		return HRV{}, false
	}
	h.MeanIBI, h.SDNN = stat.PopMeanStdDev(valid, nil)

	diffs := make([]float64, len(valid)-1)
	for i := range diffs {
		diffs[i] = valid[i+1] - valid[i]
	}
	var over50, over20 int
	for _, d := range diffs {
		if math.Abs(d) > 50 {
			over50++
		}
		if math.Abs(d) > 20 {
			over20++
		}
	}
	n := float64(len(diffs))
	h.RMSSD = math.Sqrt(floats.Dot(diffs, diffs) / n)
	h.PNN50 = float64(over50) / n * 100
	h.PNN20 = float64(over20) / n * 100
	return h, true
}

func (h HRV) features() []Feature {
	vals := []float64{h.MeanIBI, h.SDNN, h.RMSSD, h.PNN50, h.PNN20}
	out := make([]Feature, len(vals))
	for i, v := range vals {
		out[i] = Feature{Name: PrefixHRV + "_" + hrvSuffixes[i], Value: v}
	}
	return out
}

// hrvGroup runs peak detection on the epoch waveform. Detection errors are
// configuration errors and are returned; data shortfalls are absences.
func hrvGroup(waveform preprocess.Signal, cfg HRVConfig) (GroupResult, error) {
	if waveform.HasNaN() {
		return absent(PrefixHRV, ReasonNonFiniteWaveform), nil
	}
	peaks, err := preprocess.DetectPulsePeaksFactor(waveform, cfg.PeakMinDistance, cfg.ProminenceFactor)
	if err != nil {
		return GroupResult{}, err
	}
	if peaks.Len() < cfg.MinPeaks {
		return absent(PrefixHRV, ReasonInsufficientPeaks), nil
	}
	ibis, err := preprocess.InterbeatIntervals(peaks.Indices, waveform.Rate())
	if err != nil {
		return GroupResult{}, err
	}
	h, ok := ComputeHRV(ibis, cfg)
	if !ok {
		return absent(PrefixHRV, ReasonInsufficientIntervals), nil
	}
	return present(PrefixHRV, h.features()), nil
}
