// Package delim implements delimiter-framed codecs (spec.md §4.C
// "Delimiter"): +delim/-delim take the delimiter text as the stage
// option, +lines/-lines are the "\n"-fixed convenience form used by most
// of the example pipelines.
package delim

import (
	"bytes"
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("+delim", newEncoder)
	factory.MustRegister("-delim", newDecoder)
	factory.MustRegister("+lines", func(pos int, _ string, l *slog.Logger) (stage.Stage, error) {
		return newEncoder(pos, "\n", l)
	})
	factory.MustRegister("-lines", func(pos int, _ string, l *slog.Logger) (stage.Stage, error) {
		return newDecoder(pos, "\n", l)
	})
}

type encoder struct {
	delim      []byte
	emittedAny bool
	logger     *slog.Logger
}

func newEncoder(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	if options == "" {
		return nil, &stage.InvalidOptionError{Stage: "+delim", Reason: "delimiter option must not be empty"}
	}
	return &encoder{delim: []byte(options), logger: logger}, nil
}

// Push treats the entire input as one message. The delimiter is emitted
// only before messages after the first, per spec.md §4.C.
func (e *encoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if !e.emittedAny {
		e.emittedAny = true
		return input, nil, nil
	}
	out := make([]byte, 0, len(e.delim)+len(input))
	out = append(out, e.delim...)
	out = append(out, input...)
	return out, nil, nil
}

type decoder struct {
	delim  []byte
	logger *slog.Logger
}

func newDecoder(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	if options == "" {
		return nil, &stage.InvalidOptionError{Stage: "-delim", Reason: "delimiter option must not be empty"}
	}
	return &decoder{delim: []byte(options), logger: logger}, nil
}

// Push looks for the next delimiter in input. Found: the bytes before it
// are the message, remainder is everything after. Not found, mid-stream:
// hold everything as remainder (not enough input yet). Not found at
// end-of-transport: the buffered bytes are the final message.
func (d *decoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if idx := bytes.Index(input, d.delim); idx >= 0 {
		message := input[:idx]
		remainder := input[idx+len(d.delim):]
		return message, remainder, nil
	}
	if state == stage.End {
		return input, nil, nil
	}
	return nil, input, nil
}
