// Package nats implements the nats transport, a domain-stack addition
// beyond the distilled spec (see SPEC_FULL.md §4.B): options are
// a subject name; a source subscribes and streams one message per Pull,
// a sink publishes one message per Push. Grounded on
// WessleyAI-wessley-mvp's use of github.com/nats-io/nats.go for its
// messaging layer.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("nats", newNATS)
}

// urlFromEnv reads the broker URL from NATS_URL, falling back to nats.go's
// own default when the variable is unset or empty.
func urlFromEnv() string {
	if v := os.Getenv("NATS_URL"); v != "" {
		return v
	}
	return nats.DefaultURL
}

func newNATS(position int, options string, logger *slog.Logger) (stage.Stage, error) {
	if options == "" {
		return nil, &stage.InvalidOptionError{Stage: "nats", Reason: "subject option is required"}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	conn, err := nats.Connect(urlFromEnv())
	if err != nil {
		return nil, fmt.Errorf("transport/nats: connect: %w", err)
	}
	if position == 0 {
		return newSource(conn, options, logger)
	}
	return newSink(conn, options, logger)
}

type source struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	msgs   chan *nats.Msg
	logger *slog.Logger
}

func newSource(conn *nats.Conn, subject string, logger *slog.Logger) (stage.Stage, error) {
	msgs := make(chan *nats.Msg, 256)
	sub, err := conn.ChanSubscribe(subject, msgs)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport/nats: subscribe %s: %w", subject, err)
	}
	logger.Info("transport/nats: subscribed", "subject", subject)
	return &source{conn: conn, sub: sub, msgs: msgs, logger: logger}, nil
}

func (s *source) Pull(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case msg, ok := <-s.msgs:
		if !ok {
			return nil, stage.ErrEndOfTransport
		}
		return msg.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *source) Close() error {
	if err := s.sub.Unsubscribe(); err != nil {
		s.logger.Warn("transport/nats: unsubscribe error", "error", err.Error())
	}
	s.conn.Close()
	return nil
}

type sink struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func newSink(conn *nats.Conn, subject string, logger *slog.Logger) (stage.Stage, error) {
	return &sink{conn: conn, subject: subject, logger: logger}, nil
}

func (s *sink) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.conn.Publish(s.subject, input); err != nil {
		return nil, nil, fmt.Errorf("transport/nats: publish %s: %w", s.subject, err)
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	s.conn.Close()
	return nil
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
