package logger

import "go.uber.org/zap/zapcore"

// Verbosity levels for the -v count flag. Each additional -v opens up one
// more tier of output: plain progress by default, structured info at -v,
// per-step debug at -vv, and proposal-level trace at -vvv.
const (
	// VerbosityUser is the default: warnings, errors, and progress output only.
	VerbosityUser = 0
	// VerbosityInfo adds lifecycle events: files loaded, models composed,
	// chains opened and resumed.
	VerbosityInfo = 1
	// VerbosityDebug adds per-block detail: basis shapes, covariance updates,
	// jump acceptance by proposal kind.
	VerbosityDebug = 2
	// VerbosityTrace adds per-iteration internals. Expect large output.
	VerbosityTrace = 3
)

// VerbosityToLevel maps a -v count to the zap level gate.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace reports whether per-iteration trace output is enabled.
// Trace detail shares the zap debug level but is gated separately so -vv
// stays readable during long runs.
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}
