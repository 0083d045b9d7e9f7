// Package preprocess holds the stateless signal-conditioning transforms that
// sit underneath epoch feature extraction.
//
// Responsibilities: resampling, normalisation, zero-phase Butterworth
// filtering, gravity removal, activity counts, pulse-peak detection and
// inter-beat interval derivation.
//
// Every transform takes a Signal and returns a new Signal (or plain values);
// inputs are never modified. Configuration mistakes (unknown method names,
// cutoffs outside (0, Nyquist), non-positive rates) are returned as
// *ConfigError and can be matched with errors.Is against the Err* sentinels.
package preprocess
