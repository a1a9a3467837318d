// Package file implements the file transport (spec.md §4.B "File"): a
// source that reads one whole file as a single chunk, and a sink that
// appends every push to the file, through the same RotatingFile writer
// this package already used for size-based rotation.
//
// Pipeline position:
//
//	specparse.Token "file:<path>[:<maxbytes>[:<maxbackups>]]" → factory.Build → engine.Pipeline stage 0 or N-1
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("file", newFile)
}

func newFile(position int, options string, logger *slog.Logger) (stage.Stage, error) {
	if options == "" {
		return nil, &stage.InvalidOptionError{Stage: "file", Reason: "path option is required"}
	}
	if position == 0 {
		path, _, _, err := parseOptions(options)
		if err != nil {
			return nil, err
		}
		return newSource(path, logger)
	}
	path, maxBytes, maxBackups, err := parseOptions(options)
	if err != nil {
		return nil, err
	}
	return newSink(path, maxBytes, maxBackups, logger)
}

// parseOptions splits "path[:maxbytes[:maxbackups]]" into its fields.
// maxbytes enables size-based rotation (see rotate.go); maxbackups bounds
// how many rotated files are kept. Both default to 0 (unbounded growth,
// no rotation) when omitted, matching the plain "file:<path>" form.
func parseOptions(options string) (path string, maxBytes int64, maxBackups int, err error) {
	fields := strings.Split(options, ":")
	path = fields[0]
	rest := fields[1:]
	if len(rest) > 2 {
		return "", 0, 0, &stage.InvalidOptionError{Stage: "file", Option: options, Reason: "expected path[:maxbytes[:maxbackups]]"}
	}
	if len(rest) >= 1 {
		maxBytes, err = strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return "", 0, 0, &stage.InvalidOptionError{Stage: "file", Option: options, Reason: "maxbytes must be an integer"}
		}
	}
	if len(rest) == 2 {
		maxBackups, err = strconv.Atoi(rest[1])
		if err != nil {
			return "", 0, 0, &stage.InvalidOptionError{Stage: "file", Option: options, Reason: "maxbackups must be an integer"}
		}
	}
	return path, maxBytes, maxBackups, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// source
// ─────────────────────────────────────────────────────────────────────────────

// source reads the whole file in one Pull call, then signals end of
// transport on every call after.
type source struct {
	path   string
	done   bool
	logger *slog.Logger
}

func newSource(path string, logger *slog.Logger) (stage.Stage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &source{path: path, logger: logger}, nil
}

func (s *source) Pull(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, stage.ErrEndOfTransport
	}
	s.done = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("transport/file: read %s: %w", s.path, err)
	}
	s.logger.Debug("transport/file: read file", "path", s.path, "bytes", len(data))
	return data, nil
}

func (s *source) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// sink
// ─────────────────────────────────────────────────────────────────────────────

// sink appends every pushed message to the file, through a RotatingFile so
// the same size-based rotation logic this package has always shipped is
// reachable from the CLI: "file:<path>" alone disables rotation
// (RotateConfig.MaxBytes == 0, unbounded growth), while "file:<path>:<n>"
// rotates before any push that would take the file past n bytes.
type sink struct {
	w      *RotatingFile
	logger *slog.Logger
}

func newSink(path string, maxBytes int64, maxBackups int, logger *slog.Logger) (stage.Stage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	w, err := NewRotatingFile(RotateConfig{FilePath: path, MaxBytes: maxBytes, MaxBackups: maxBackups}, logger)
	if err != nil {
		return nil, err
	}
	return &sink{w: w, logger: logger}, nil
}

func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if _, err := s.w.Write(input); err != nil {
		return nil, nil, fmt.Errorf("transport/file: write: %w", err)
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	return s.w.Close()
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
