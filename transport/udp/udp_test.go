package udp_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"

	_ "github.com/vpbank/msgproxy/transport/udp"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatal(err)
	}
	addr := conn.LocalAddr().String()
	conn.Close()
	return addr
}

func TestSource_ReceivesOneDatagramPerPull(t *testing.T) {
	addr := freeAddr(t)

	s, err := factory.Build(0, specparse.Token{Name: "udp", Options: addr}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	puller := s.(stage.Puller)

	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := puller.Pull(ctx)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestSink_WritesDatagram(t *testing.T) {
	addr := freeAddr(t)

	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	listener, err := net.ListenUDP("udp", raddr)
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	s, err := factory.Build(1, specparse.Token{Name: "udp", Options: addr}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pusher := s.(stage.Pusher)
	if _, _, err := pusher.Push(stage.Active, []byte("world")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Errorf("got %q, want %q", buf[:n], "world")
	}
}

func TestInvalidAddress(t *testing.T) {
	if _, err := factory.Build(0, specparse.Token{Name: "udp", Options: "not-an-address"}, nil); err == nil {
		t.Error("expected error for malformed address option")
	}
}
