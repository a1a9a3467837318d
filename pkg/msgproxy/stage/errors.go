package stage

import "fmt"

// InvalidOptionError reports a configuration-time failure: an unknown stage
// name or a malformed option string. It always prevents startup — the
// pipeline is never built. Preset-file failures (missing file, unknown
// preset name) are reported by package config as plain wrapped errors,
// not as this type.
type InvalidOptionError struct {
	Stage  string // the token's stage name, e.g. "tcp"
	Option string // the raw option string that failed to parse, may be empty
	Reason string
}

func (e *InvalidOptionError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid option: stage %q: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("invalid option: stage %q option %q: %s", e.Stage, e.Option, e.Reason)
}

// InvalidDataError reports that a codec could not frame or parse its input
// and the stream is too corrupt to continue safely. The engine treats this
// as fatal: it is not end-of-transport, so it aborts the whole pipeline
// rather than skipping the offending bytes (spec.md §7).
type InvalidDataError struct {
	Stage  string
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid data in stage %q: %s", e.Stage, e.Reason)
}
