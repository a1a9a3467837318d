// Package zmq implements the zmq transport (spec.md §4.B "ZeroMQ"):
// options are "MODE:address", where MODE selects one of ZeroMQ's
// messaging patterns (REQ, REP, PUB, SUB, PUSH, PULL) — the role derives
// from MODE rather than from pipeline position. Uses the pure-Go
// github.com/go-zeromq/zmq4 client; no example repo in the pack ships a
// ZeroMQ dependency, so this one is named, not grounded, per DESIGN.md.
package zmq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	zmq4 "github.com/go-zeromq/zmq4"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("zmq", newZMQ)
}

func newZMQ(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	mode, addr, found := strings.Cut(options, ":")
	if !found {
		return nil, &stage.InvalidOptionError{Stage: "zmq", Option: options, Reason: "expected MODE:address"}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	ctx := context.Background()
	switch strings.ToUpper(mode) {
	case "PUB":
		sock := zmq4.NewPub(ctx)
		if err := sock.Listen(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: pub listen %s: %w", addr, err)
		}
		return &sendSocket{sock: sock, logger: logger}, nil
	case "PUSH":
		sock := zmq4.NewPush(ctx)
		if err := sock.Dial(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: push dial %s: %w", addr, err)
		}
		return &sendSocket{sock: sock, logger: logger}, nil
	case "REQ":
		sock := zmq4.NewReq(ctx)
		if err := sock.Dial(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: req dial %s: %w", addr, err)
		}
		return &reqSocket{sock: sock, logger: logger}, nil
	case "SUB":
		sock := zmq4.NewSub(ctx)
		if err := sock.Dial(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: sub dial %s: %w", addr, err)
		}
		if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
			return nil, fmt.Errorf("transport/zmq: sub subscribe: %w", err)
		}
		return &recvSocket{sock: sock, logger: logger}, nil
	case "PULL":
		sock := zmq4.NewPull(ctx)
		if err := sock.Listen(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: pull listen %s: %w", addr, err)
		}
		return &recvSocket{sock: sock, logger: logger}, nil
	case "REP":
		sock := zmq4.NewRep(ctx)
		if err := sock.Listen(endpoint(addr)); err != nil {
			return nil, fmt.Errorf("transport/zmq: rep listen %s: %w", addr, err)
		}
		return &repSocket{sock: sock, logger: logger}, nil
	default:
		return nil, &stage.InvalidOptionError{Stage: "zmq", Option: mode, Reason: "unknown ZeroMQ mode"}
	}
}

func endpoint(addr string) string {
	return "tcp://" + addr
}

// socket is the subset of zmq4.Socket this package needs, satisfied by
// every concrete socket type zmq4 returns.
type socket interface {
	Send(zmq4.Msg) error
	Recv() (zmq4.Msg, error)
	Close() error
}

// sendSocket wraps PUB/PUSH: outbound only.
type sendSocket struct {
	sock   socket
	logger *slog.Logger
}

func (s *sendSocket) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.sock.Send(zmq4.NewMsg(input)); err != nil {
		return nil, nil, fmt.Errorf("transport/zmq: send: %w", err)
	}
	return nil, nil, nil
}

func (s *sendSocket) Close() error { return s.sock.Close() }

// recvSocket wraps SUB/PULL: inbound only.
type recvSocket struct {
	sock   socket
	logger *slog.Logger
}

func (s *recvSocket) Pull(ctx context.Context) ([]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("transport/zmq: recv: %w", err)
	}
	return msg.Bytes(), nil
}

func (s *recvSocket) Close() error { return s.sock.Close() }

// reqSocket wraps REQ: every send must be followed by a recv before the
// next send, so Push both sends the message and drains the reply.
type reqSocket struct {
	sock   socket
	logger *slog.Logger
}

func (s *reqSocket) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.sock.Send(zmq4.NewMsg(input)); err != nil {
		return nil, nil, fmt.Errorf("transport/zmq: req send: %w", err)
	}
	if _, err := s.sock.Recv(); err != nil {
		return nil, nil, fmt.Errorf("transport/zmq: req recv reply: %w", err)
	}
	return nil, nil, nil
}

func (s *reqSocket) Close() error { return s.sock.Close() }

// repSocket wraps REP as a source: every recv must be answered with a
// reply before the next recv, so Pull receives a request and immediately
// sends an empty acknowledgement.
type repSocket struct {
	sock   socket
	logger *slog.Logger
}

func (s *repSocket) Pull(ctx context.Context) ([]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("transport/zmq: rep recv: %w", err)
	}
	if err := s.sock.Send(zmq4.NewMsg(nil)); err != nil {
		return nil, fmt.Errorf("transport/zmq: rep ack: %w", err)
	}
	return msg.Bytes(), nil
}

func (s *repSocket) Close() error { return s.sock.Close() }

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
