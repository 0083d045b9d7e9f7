package features

// Feature name prefixes. Group names in GroupResult use the same strings.
const (
	PrefixIMUX     = "imu_x"
	PrefixIMUY     = "imu_y"
	PrefixIMUZ     = "imu_z"
	PrefixIMUMag   = "imu_mag"
	PrefixPPG      = "ppg"
	PrefixHR       = "hr"
	PrefixHRV      = "hrv"
	GroupMovement  = "imu_movement"
	suffixSpectral = "_spectral"
)

// EmbeddedFeatureCount is the length of the IMU+PPG time-domain vector the
// on-device model consumes.
const EmbeddedFeatureCount = 72

var (
	statSuffixes = []string{
		"mean", "std", "min", "max", "range", "median", "iqr",
		"skew", "kurtosis", "energy", "rms", "zero_crossings",
	}
	movementNames  = []string{"imu_activity_count", "imu_movement_intensity"}
	hrSuffixes     = []string{"mean", "std", "min", "max", "range"}
	hrvSuffixes    = []string{"mean_ibi", "sdnn", "rmssd", "pnn50", "pnn20"}
	spectralSuffix = []string{"total_power", "dominant_freq", "vlf_power", "lf_power", "hf_power", "lf_hf_ratio"}
)

func prefixed(prefix string, suffixes []string) []string {
	out := make([]string, len(suffixes))
	for i, s := range suffixes {
		out[i] = prefix + "_" + s
	}
	return out
}

// FeatureNames returns the canonical ordered feature names for cfg. Only the
// modality switches and the spectral flag affect the result. Spectral
// features follow the whole time-domain block so the embedded prefix keeps
// its positions.
func FeatureNames(cfg Config) []string {
	var names []string
	if cfg.Modalities.IMU {
		for _, p := range []string{PrefixIMUX, PrefixIMUY, PrefixIMUZ, PrefixIMUMag} {
			names = append(names, prefixed(p, statSuffixes)...)
		}
		names = append(names, movementNames...)
	}
	if cfg.Modalities.PPG {
		names = append(names, prefixed(PrefixPPG, statSuffixes)...)
		names = append(names, prefixed(PrefixHR, hrSuffixes)...)
		names = append(names, prefixed(PrefixHRV, hrvSuffixes)...)
	}
	if cfg.Spectral {
		if cfg.Modalities.IMU {
			names = append(names, prefixed(PrefixIMUMag, spectralSuffix)...)
		}
		if cfg.Modalities.PPG {
			names = append(names, prefixed(PrefixPPG, spectralSuffix)...)
		}
	}
	return names
}

// EmbeddedFeatureNames returns the time-domain IMU+PPG list shared with the
// on-device replica.
func EmbeddedFeatureNames() []string {
	return FeatureNames(Config{Modalities: Modalities{IMU: true, PPG: true}})
}
