// Package features slices a multi-channel recording into fixed-length epochs
// and computes one named feature vector per epoch.
//
// The set and order of feature names is a function of Config alone
// (enabled modalities and the spectral switch), never of the data, so
// vectors from different participants line up column for column and match
// the on-device replica that consumes the same ordered list.
//
// Data problems inside an epoch (missing channels, all-NaN samples, too few
// pulse peaks) do not raise errors: the affected group is reported absent via
// GroupResult and its features are omitted from the vector.
package features
