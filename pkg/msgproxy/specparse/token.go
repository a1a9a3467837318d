// Package specparse tokenizes the command-line stage list into ordered
// Token values, before the factory package turns each Token into a live
// stage.Stage.
//
// Pipeline position:
//
//	argv / preset list [driver] → specparse.Tokenize → factory.Build
package specparse

import (
	"fmt"
	"strings"

	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

// Token is one parsed `name` or `name:options` entry from the stage list.
type Token struct {
	// Name is the stage name, e.g. "tcp", "+length", "-delim".
	Name string

	// Options is everything after the first colon, verbatim (may contain
	// further colons, e.g. "tcp:10.0.0.1:9000" → Options == "10.0.0.1:9000").
	// Empty when the token had no colon.
	Options string

	// Raw is the original token text, kept for error messages.
	Raw string
}

// Tokenize splits each raw argument into a Token. Each argument is expected
// to be a single `name[:options]` entry; at least two are required to form
// a pipeline (spec.md §6), but Tokenize itself only parses — it does not
// enforce the minimum-length invariant (that belongs to the caller building
// the pipeline, since preset expansion may supply the tokens instead).
func Tokenize(args []string) ([]Token, error) {
	tokens := make([]Token, 0, len(args))
	for _, arg := range args {
		tok, err := parseOne(arg)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func parseOne(arg string) (Token, error) {
	if arg == "" {
		return Token{}, &stage.InvalidOptionError{Reason: "empty stage token"}
	}

	name, options, found := strings.Cut(arg, ":")
	if !found {
		return Token{Name: name, Raw: arg}, nil
	}
	if name == "" {
		return Token{}, &stage.InvalidOptionError{Option: arg, Reason: "missing stage name before ':'"}
	}
	return Token{Name: name, Options: options, Raw: arg}, nil
}

// String renders the token back to its original `name[:options]` form, used
// in error messages and diagnostic logging.
func (t Token) String() string {
	if t.Options == "" {
		return t.Name
	}
	return fmt.Sprintf("%s:%s", t.Name, t.Options)
}
