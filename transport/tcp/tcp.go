// Package tcp implements the tcp transport (spec.md §4.B "TCP"): a source
// that listens and accepts a single client connection and streams
// whatever it reads as chunks, and a sink that dials out and writes each
// push to the connection.
package tcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

const readBufSize = 64 * 1024

func init() {
	factory.MustRegister("tcp", newTCP)
}

func newTCP(position int, options string, logger *slog.Logger) (stage.Stage, error) {
	addr, err := specparse.ParseAddress(options)
	if err != nil {
		return nil, &stage.InvalidOptionError{Stage: "tcp", Option: options, Reason: err.Error()}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if position == 0 {
		return newSource(addr, logger)
	}
	return newSink(addr, logger)
}

// source listens for and accepts exactly one client connection, then
// streams Read chunks from it until the peer closes, at which point Pull
// returns ErrEndOfTransport.
type source struct {
	ln     net.Listener
	conn   net.Conn
	logger *slog.Logger
}

func newSource(addr specparse.Address, logger *slog.Logger) (stage.Stage, error) {
	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("transport/tcp: listen %s: %w", addr, err)
	}
	logger.Info("transport/tcp: listening", "addr", addr.String())
	return &source{ln: ln, logger: logger}, nil
}

func (s *source) Pull(ctx context.Context) ([]byte, error) {
	if s.conn == nil {
		conn, err := s.ln.Accept()
		if err != nil {
			return nil, fmt.Errorf("transport/tcp: accept: %w", err)
		}
		s.logger.Info("transport/tcp: client connected", "remote", conn.RemoteAddr())
		s.conn = conn
	}

	buf := make([]byte, readBufSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		if err == io.EOF {
			return nil, stage.ErrEndOfTransport
		}
		return nil, fmt.Errorf("transport/tcp: read: %w", err)
	}
	return buf[:n], nil
}

func (s *source) Close() error {
	var firstErr error
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.ln.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type sink struct {
	conn   net.Conn
	logger *slog.Logger
}

func newSink(addr specparse.Address, logger *slog.Logger) (stage.Stage, error) {
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("transport/tcp: dial %s: %w", addr, err)
	}
	return &sink{conn: conn, logger: logger}, nil
}

func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if _, err := s.conn.Write(input); err != nil {
		return nil, nil, fmt.Errorf("transport/tcp: write: %w", err)
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	return s.conn.Close()
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
