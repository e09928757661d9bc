package trellis

import "fmt"

// ConfigError reports invalid caller-supplied configuration: a non-positive
// animation frame count, a missing mark, an unknown texture fit mode. These
// indicate a programming mistake and are raised synchronously at the call that
// supplied the bad input, never silently defaulted.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// LookupError reports a failed child or cell lookup. Callers needing an
// optional lookup should pre-check existence via Children or CellExists.
type LookupError struct {
	msg string
}

func (e *LookupError) Error() string { return e.msg }

func lookupErrorf(format string, args ...any) *LookupError {
	return &LookupError{msg: fmt.Sprintf(format, args...)}
}
