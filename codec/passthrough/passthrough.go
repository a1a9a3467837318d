// Package passthrough groups the stateless single-message stages that
// don't reframe data: null (identity), strip (trim whitespace), skip
// (drop/keep a byte count), and log (forward unchanged, emit a
// diagnostic line per message) — spec.md §4.C "Passthrough family".
package passthrough

import (
	"bytes"
	"io"
	"log/slog"
	"strconv"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("null", newNull)
	factory.MustRegister("strip", newStrip)
	factory.MustRegister("skip", newSkip)
	factory.MustRegister("log", newLog)
}

type null struct{ logger *slog.Logger }

func newNull(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &null{logger: logger}, nil
}

func (n *null) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return input, nil, nil
}

type strip struct{ logger *slog.Logger }

func newStrip(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &strip{logger: logger}, nil
}

func (s *strip) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return bytes.TrimSpace(input), nil, nil
}

type skip struct {
	n      int
	logger *slog.Logger
}

func newSkip(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	n, err := strconv.Atoi(options)
	if err != nil {
		return nil, &stage.InvalidOptionError{Stage: "skip", Option: options, Reason: "not an integer"}
	}
	return &skip{n: n, logger: logger}, nil
}

// Push drops the first n bytes when n >= 0, or keeps only the first |n|
// bytes when n < 0 (spec.md §4.C).
func (s *skip) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if s.n >= 0 {
		if s.n >= len(input) {
			return []byte{}, nil, nil
		}
		return input[s.n:], nil, nil
	}
	keep := -s.n
	if keep >= len(input) {
		return input, nil, nil
	}
	return input[:keep], nil, nil
}

type logStage struct {
	label   string
	count   int
	logger  *slog.Logger
}

func newLog(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &logStage{label: options, logger: logger}, nil
}

// Push forwards input unchanged and records a diagnostic line per
// message: the stage's label option, the engine state, a monotonic
// per-stage counter, and the message length.
func (l *logStage) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	l.count++
	l.logger.Info("log",
		"label", l.label,
		"state", state.String(),
		"seq", l.count,
		"bytes", len(input),
	)
	return input, nil, nil
}
