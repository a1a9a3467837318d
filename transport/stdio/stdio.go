// Package stdio implements the "-"/"std" transport (spec.md §4.B):
// stdin as a streaming source at position 0, stdout as a sink everywhere
// else.
package stdio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

const readBufSize = 64 * 1024

func init() {
	factory.MustRegister("-", newStdio)
	factory.MustRegister("std", newStdio)
}

func newStdio(position int, _ string, logger *slog.Logger) (stage.Stage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if position == 0 {
		return &source{r: os.Stdin, logger: logger}, nil
	}
	return &sink{w: os.Stdout, logger: logger}, nil
}

type source struct {
	r      io.Reader
	logger *slog.Logger
}

func (s *source) Pull(ctx context.Context) ([]byte, error) {
	buf := make([]byte, readBufSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, stage.ErrEndOfTransport
	}
	if err != nil {
		return nil, fmt.Errorf("transport/stdio: read: %w", err)
	}
	return nil, nil
}

func (s *source) Close() error { return nil }

type sink struct {
	w      io.Writer
	logger *slog.Logger
}

func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if _, err := s.w.Write(input); err != nil {
		return nil, nil, fmt.Errorf("transport/stdio: write: %w", err)
	}
	return nil, nil, nil
}

func (s *sink) Close() error { return nil }

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
