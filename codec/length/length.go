// Package length implements the 4-byte length-prefix framing codec
// (spec.md §4.C "Length prefix"): encode prepends a fixed-width header,
// decode strips it and returns exactly that many payload bytes.
package length

import (
	"encoding/binary"
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

const headerSize = 4

func init() {
	factory.MustRegister("+length", newEncoder)
	factory.MustRegister("-length", newDecoder)
}

// Header byte order is little-endian throughout this module; nothing in
// the examples pack ships a length-prefix codec to ground this choice
// against, so it is recorded as an open decision in DESIGN.md rather than
// left implicit.

type encoder struct {
	logger *slog.Logger
}

func newEncoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &encoder{logger: logger}, nil
}

// Push treats the entire input as one message: it always consumes all of
// it and prepends a 4-byte little-endian length header.
func (e *encoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out := make([]byte, headerSize+len(input))
	binary.LittleEndian.PutUint32(out, uint32(len(input)))
	copy(out[headerSize:], input)
	return out, nil, nil
}

type decoder struct {
	logger *slog.Logger
}

func newDecoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &decoder{logger: logger}, nil
}

// Push reads the 4-byte header and returns exactly that many payload
// bytes as emitted, with everything after as remainder. A short header or
// a short payload — including at end of transport, where it can never be
// completed — is "not enough input yet": emit nothing and return input
// unchanged as remainder, so a truncated trailing frame is silently
// discarded and the pipeline still terminates cleanly.
func (d *decoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if len(input) < headerSize {
		return nil, input, nil
	}
	n := binary.LittleEndian.Uint32(input[:headerSize])
	need := headerSize + int(n)
	if len(input) < need {
		return nil, input, nil
	}
	payload := input[headerSize:need]
	remainder := input[need:]
	return payload, remainder, nil
}
