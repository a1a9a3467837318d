package zmq_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"

	_ "github.com/vpbank/msgproxy/transport/zmq"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestPushPull_RoundTrip(t *testing.T) {
	addr := freeAddr(t)

	pull, err := factory.Build(0, specparse.Token{Name: "zmq", Options: "PULL:" + addr}, nil)
	if err != nil {
		t.Fatalf("Build PULL: %v", err)
	}
	defer pull.(stage.Closer).Close()

	push, err := factory.Build(1, specparse.Token{Name: "zmq", Options: "PUSH:" + addr}, nil)
	if err != nil {
		t.Fatalf("Build PUSH: %v", err)
	}
	defer push.(stage.Closer).Close()

	// zmq4's Dial/Listen handshake completes asynchronously; give it a
	// moment before sending the first message.
	time.Sleep(100 * time.Millisecond)

	if _, _, err := push.(stage.Pusher).Push(stage.Active, []byte("hello")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := pull.(stage.Puller).Pull(ctx)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestMissingMode(t *testing.T) {
	if _, err := factory.Build(0, specparse.Token{Name: "zmq", Options: "no-colon-here"}, nil); err == nil {
		t.Error("expected error for missing MODE:address separator")
	}
}

func TestUnknownMode(t *testing.T) {
	if _, err := factory.Build(0, specparse.Token{Name: "zmq", Options: "BOGUS:127.0.0.1:9000"}, nil); err == nil {
		t.Error("expected error for unknown ZeroMQ mode")
	}
}
