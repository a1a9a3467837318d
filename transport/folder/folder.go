// Package folder implements the folder transport (spec.md §4.B "Folder"):
// a source that iterates the files in a directory, one whole file per
// Pull call in stable sorted order, and a sink that writes each pushed
// message to a new file named by a zero-padded, monotonically increasing
// sequence number (0000000001, 0000000002, …), so that the names sort in
// write order. The sequential numbering idea comes from transport/file's
// RotatingFile backups, but the names carry no base-name prefix.
package folder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("folder", newFolder)
}

func newFolder(position int, options string, logger *slog.Logger) (stage.Stage, error) {
	if options == "" {
		return nil, &stage.InvalidOptionError{Stage: "folder", Reason: "directory path option is required"}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if position == 0 {
		return newSource(options, logger)
	}
	return newSink(options, logger)
}

// ─────────────────────────────────────────────────────────────────────────────
// source
// ─────────────────────────────────────────────────────────────────────────────

type source struct {
	dir     string
	entries []string
	next    int
	logger  *slog.Logger
}

func newSource(dir string, logger *slog.Logger) (stage.Stage, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("transport/folder: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return &source{dir: dir, entries: names, logger: logger}, nil
}

func (s *source) Pull(ctx context.Context) ([]byte, error) {
	if s.next >= len(s.entries) {
		return nil, stage.ErrEndOfTransport
	}
	name := s.entries[s.next]
	s.next++
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("transport/folder: read %s: %w", name, err)
	}
	s.logger.Debug("transport/folder: read file", "name", name, "bytes", len(data))
	return data, nil
}

func (s *source) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// sink
// ─────────────────────────────────────────────────────────────────────────────

type sink struct {
	mu     sync.Mutex
	dir    string
	seq    int
	logger *slog.Logger
}

func newSink(dir string, logger *slog.Logger) (stage.Stage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transport/folder: mkdir %s: %w", dir, err)
	}
	return &sink{dir: dir, logger: logger}, nil
}

// Push writes input to a freshly created file named with a zero-padded,
// monotonically increasing sequence number, one file per message.
func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	name := fmt.Sprintf("%010d", s.seq)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, input, 0o644); err != nil {
		return nil, nil, fmt.Errorf("transport/folder: write %s: %w", path, err)
	}
	s.logger.Debug("transport/folder: wrote file", "name", name, "bytes", len(input))
	return nil, nil, nil
}

func (s *sink) Close() error { return nil }

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
