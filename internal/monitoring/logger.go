package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the pipeline, the
// loader and the store. It defaults to log.Printf; SetLogger redirects or
// mutes it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Prefixed returns a logger that tags every line with prefix, e.g. a
// participant ID. The returned func resolves Logf on each call so a later
// SetLogger still takes effect.
func Prefixed(prefix string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf("[%s] "+format, append([]interface{}{prefix}, v...)...)
	}
}
