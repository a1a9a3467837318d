// Package engine implements the pipeline execution engine: the
// framing/buffering protocol between stages, the push-with-remainder
// contract, the per-stage residual cache, and end-of-stream flush
// semantics. This is the core of the whole system (spec.md §4.E);
// everything else in this module is an external collaborator that the
// engine drives through the stage.Puller / stage.Pusher contract.
//
// Pipeline position:
//
//	factory.Build [stages] → engine.New → engine.Run
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

// Pipeline owns an ordered, fixed slice of stages. Stage 0 is the source;
// every other stage is a transformer or sink. A Pipeline is built once and
// run once — it has no restart semantics (spec.md §3 "Lifetime").
type Pipeline struct {
	stages []stage.Stage
	cache  map[int][]byte
	state  stage.State
	logger *slog.Logger
}

// New validates and constructs a Pipeline from already-built stages.
// It enforces spec.md §3's pipeline invariants: length >= 2, exactly one
// source (stage 0 must implement Puller), and every non-source stage must
// implement Pusher.
func New(stages []stage.Stage, logger *slog.Logger) (*Pipeline, error) {
	if len(stages) < 2 {
		return nil, fmt.Errorf("engine: pipeline needs at least 2 stages, got %d", len(stages))
	}
	if _, ok := stages[0].(stage.Puller); !ok {
		return nil, fmt.Errorf("engine: stage 0 (source) does not implement Pull")
	}
	for i := 1; i < len(stages); i++ {
		if _, ok := stages[i].(stage.Pusher); !ok {
			return nil, fmt.Errorf("engine: stage %d does not implement Push", i)
		}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Pipeline{
		stages: stages,
		cache:  make(map[int][]byte),
		state:  stage.Active,
		logger: logger,
	}, nil
}

// Run drives the pipeline to completion: it pulls from the source, feeds
// each chunk through dispatch starting at stage 1, and on end-of-transport
// performs the flush pass before closing every stage and returning.
//
// Run returns nil on normal end-of-transport termination. Any other error —
// a fatal error escaping a stage, per spec.md §7 — is logged once here and
// returned so the driver can choose a non-zero exit code; Run itself never
// panics or calls os.Exit.
func (p *Pipeline) Run(ctx context.Context) error {
	source := p.stages[0].(stage.Puller)

	runErr := p.runLoop(ctx, source)

	closeErr := p.closeAll()
	if runErr != nil {
		p.logger.Error("engine: fatal error — run loop terminated", "error", runErr.Error())
		return runErr
	}
	return closeErr
}

func (p *Pipeline) runLoop(ctx context.Context, source stage.Puller) error {
	for {
		chunk, err := source.Pull(ctx)
		if err == stage.ErrEndOfTransport {
			p.logger.Info("engine: source exhausted — flushing")
			p.state = stage.End
			return p.flush()
		}
		if err != nil {
			return fmt.Errorf("engine: pull: %w", err)
		}
		if len(chunk) == 0 {
			// Empty chunk: nothing to dispatch this round, keep pulling.
			continue
		}
		if err := p.dispatch(chunk, 1); err != nil {
			return err
		}
	}
}

// flush performs one dispatch call per non-source stage index, in
// ascending order, with no new input — spec.md §4.E's flush pass. Each
// stage observes state == End and is expected to emit any buffered data.
func (p *Pipeline) flush() error {
	for i := 1; i < len(p.stages); i++ {
		if err := p.dispatch(nil, i); err != nil {
			return err
		}
	}
	return nil
}

// dispatch implements spec.md §4.E's Dispatch routine. It is rendered as an
// explicit loop rather than genuine Go recursion for the inner "drain what
// this stage can produce" step, but still recurses across stage indices —
// spec.md §9 notes a long-pipeline implementation may prefer an
// index-driven outer loop; this module keeps the natural recursion across
// stages (pipelines built from CLI tokens are short) and only flattens the
// inner per-stage drain loop, which is the part that can iterate many times
// on a single chunk.
func (p *Pipeline) dispatch(input []byte, i int) error {
	if i >= len(p.stages) {
		// Past the sink: discard whatever the terminal stage emitted.
		return nil
	}

	cached := p.cache[i]
	if len(cached) > 0 {
		if len(input) > 0 {
			merged := make([]byte, 0, len(cached)+len(input))
			merged = append(merged, cached...)
			merged = append(merged, input...)
			input = merged
		} else {
			input = cached
		}
	}
	delete(p.cache, i)

	pusher := p.stages[i].(stage.Pusher)

	for p.state == stage.End || len(input) > 0 {
		emitted, remainder, err := pusher.Push(p.state, input)
		if err != nil {
			return fmt.Errorf("engine: stage %d: %w", i, err)
		}

		if len(emitted) > 0 {
			if err := p.dispatch(emitted, i+1); err != nil {
				return err
			}
		}

		// Fixed-point rule: byte-identical remainder (including both nil
		// / both empty) means the stage needs more input than it has.
		if bytes.Equal(remainder, input) {
			input = remainder
			break
		}
		input = remainder
	}

	p.cache[i] = input
	return nil
}

// closeAll releases every stage's resources, in pipeline order. A stage
// that does not implement stage.Closer is skipped. The first error
// encountered is returned after every stage has had a chance to close.
func (p *Pipeline) closeAll() error {
	var firstErr error
	for i, s := range p.stages {
		closer, ok := s.(stage.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			p.logger.Warn("engine: stage close error", "stage_index", i, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
