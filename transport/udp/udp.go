// Package udp implements the udp transport (spec.md §4.B "UDP"): a source
// that binds and receives one datagram per Pull, and a sink that dials
// and writes one datagram per Push. Grounded on
// pkg/snmpcollector/trapreceiver's gosnmp.TrapListener UDP socket handling
// — the same bind/read-loop shape, generalized from SNMP trap packets to
// arbitrary datagrams.
package udp

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

// maxDatagram is the largest UDP payload this transport will read in one
// call; larger datagrams are truncated by the kernel before they reach us.
const maxDatagram = 65507

func init() {
	factory.MustRegister("udp", newUDP)
}

func newUDP(position int, options string, logger *slog.Logger) (stage.Stage, error) {
	addr, err := specparse.ParseAddress(options)
	if err != nil {
		return nil, &stage.InvalidOptionError{Stage: "udp", Option: options, Reason: err.Error()}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if position == 0 {
		return newSource(addr, logger)
	}
	return newSink(addr, logger)
}

type source struct {
	conn   *net.UDPConn
	logger *slog.Logger
}

func newSource(addr specparse.Address, logger *slog.Logger) (stage.Stage, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(addr.Host), Port: addr.Port})
	if err != nil {
		return nil, fmt.Errorf("transport/udp: listen %s: %w", addr, err)
	}
	logger.Info("transport/udp: listening", "addr", addr.String())
	return &source{conn: conn, logger: logger}, nil
}

// Pull blocks for a single datagram. UDP carries no end-of-stream signal,
// so this source never returns ErrEndOfTransport on its own — it runs
// until the process is shut down, per spec.md §4.B.
func (s *source) Pull(ctx context.Context) ([]byte, error) {
	buf := make([]byte, maxDatagram)
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("transport/udp: read: %w", err)
	}
	return buf[:n], nil
}

func (s *source) Close() error {
	return s.conn.Close()
}

type sink struct {
	conn   *net.UDPConn
	logger *slog.Logger
}

func newSink(addr specparse.Address, logger *slog.Logger) (stage.Stage, error) {
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP(addr.Host), Port: addr.Port})
	if err != nil {
		return nil, fmt.Errorf("transport/udp: dial %s: %w", addr, err)
	}
	return &sink{conn: conn, logger: logger}, nil
}

func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if _, err := s.conn.Write(input); err != nil {
		return nil, nil, fmt.Errorf("transport/udp: write: %w", err)
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	return s.conn.Close()
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
