// Package factory turns parsed specparse.Token values into live stage.Stage
// instances, using a compile-time registry of stage names (spec.md §4.D,
// §9 "Dynamic stage registry → tagged variant or interface table").
//
// Pipeline position:
//
//	specparse.Tokenize → factory.Build → engine.New
package factory

import (
	"fmt"
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

// New constructs a stage for one token. position is the stage's index in
// the pipeline (0 == source); options is the raw text after the token's
// colon, verbatim. logger is passed through from Build unchanged and may be
// nil; constructors that log fall back to a no-op logger in that case.
type New func(position int, options string, logger *slog.Logger) (stage.Stage, error)

// registry maps a stage name to its constructor. Populated through
// MustRegister from the init() functions of the transport/* and codec/*
// packages; kept unexported so registration only happens at init time,
// matching the teacher's compile-time dispatch style (no runtime plugin
// loading).
var registry = map[string]New{}

// MustRegister is called from transport/* and codec/* package init()
// functions to add a stage name to the registry. It panics on a duplicate
// name, which can only happen from a programming error since all
// registrations happen at init time, before main runs.
func MustRegister(name string, fn New) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("factory: duplicate registration for %q", name))
	}
	registry[name] = fn
}

// Build constructs one stage from a token. position follows spec.md §4.D:
// factories whose meaning depends on position (tcp, udp, folder, file)
// receive it and build a source when position == 0, a sink otherwise.
func Build(position int, tok specparse.Token, logger *slog.Logger) (stage.Stage, error) {
	fn, ok := registry[tok.Name]
	if !ok {
		return nil, &stage.InvalidOptionError{
			Stage:  tok.Name,
			Reason: fmt.Sprintf("unknown stage name (token %q)", tok.Raw),
		}
	}
	s, err := fn(position, tok.Options, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Names returns every registered stage name, sorted by the caller if
// ordering matters. Used by the driver's -list-stages output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
