// Package escape implements the +n/-n newline-escape codec (spec.md
// §4.C "Newline escape"): backslash, LF and CR are escaped to their
// two-byte backslash forms on encode, and reversed on decode.
package escape

import (
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("+n", newEncoder)
	factory.MustRegister("-n", newDecoder)
}

type encoder struct{ logger *slog.Logger }

func newEncoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &encoder{logger: logger}, nil
}

// Push escapes backslash, LF and CR in a single pass over the input, so
// the backslashes introduced by escaping a newline are never themselves
// re-escaped.
func (e *encoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out := make([]byte, 0, len(input))
	for _, c := range input {
		switch c {
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, c)
		}
	}
	return out, nil, nil
}

type decoder struct{ logger *slog.Logger }

func newDecoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &decoder{logger: logger}, nil
}

func (d *decoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] != '\\' {
			out = append(out, input[i])
			continue
		}
		if i+1 >= len(input) {
			return nil, nil, &stage.InvalidDataError{Stage: "-n", Reason: "dangling escape character at end of input"}
		}
		switch input[i+1] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case '\\':
			out = append(out, '\\')
		default:
			return nil, nil, &stage.InvalidDataError{Stage: "-n", Reason: "unrecognized escape sequence"}
		}
		i++
	}
	return out, nil, nil
}
