// Package urlenc implements the +url/-url percent-encoding codec
// (spec.md §4.C "URL encode/decode"). It escapes every byte outside the
// RFC 3986 unreserved set, matching the common encodeURIComponent
// behaviour rather than net/url's form-encoding (which escapes space as
// "+" instead of "%20" and leaves several sub-delimiters untouched) —
// see DESIGN.md for why this package hand-rolls the table instead of
// reusing net/url.
package urlenc

import (
	"log/slog"
	"strings"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("+url", newEncoder)
	factory.MustRegister("-url", newDecoder)
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

func percentEncode(input []byte) []byte {
	var b strings.Builder
	b.Grow(len(input))
	for _, c := range input {
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return []byte(b.String())
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func percentDecode(stageName string, input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] != '%' {
			out = append(out, input[i])
			continue
		}
		if i+2 >= len(input) {
			return nil, &stage.InvalidDataError{Stage: stageName, Reason: "truncated percent-escape"}
		}
		hi, ok1 := hexVal(input[i+1])
		lo, ok2 := hexVal(input[i+2])
		if !ok1 || !ok2 {
			return nil, &stage.InvalidDataError{Stage: stageName, Reason: "malformed percent-escape"}
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return out, nil
}

type encoder struct{ logger *slog.Logger }

func newEncoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &encoder{logger: logger}, nil
}

func (e *encoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return percentEncode(input), nil, nil
}

type decoder struct{ logger *slog.Logger }

func newDecoder(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &decoder{logger: logger}, nil
}

func (d *decoder) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out, err := percentDecode("-url", input)
	if err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}
