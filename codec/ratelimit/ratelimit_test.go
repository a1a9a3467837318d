package ratelimit_test

import (
	"testing"
	"time"

	_ "github.com/vpbank/msgproxy/codec/ratelimit"
	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func TestRejectsNonPositiveRate(t *testing.T) {
	cases := []string{"", "0", "-5", "abc"}
	for _, opt := range cases {
		if _, err := factory.Build(1, specparse.Token{Name: "ratelimit", Options: opt}, nil); err == nil {
			t.Errorf("Build(ratelimit:%q): expected error", opt)
		}
	}
}

func TestForwardsMessagesUnchanged(t *testing.T) {
	s, err := factory.Build(1, specparse.Token{Name: "ratelimit", Options: "1000"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pusher := s.(stage.Pusher)

	out, _, err := pusher.Push(stage.Active, []byte("hello"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("got %q, want %q", out, "hello")
	}
}

func TestEmptyPushIsNoop(t *testing.T) {
	s, err := factory.Build(1, specparse.Token{Name: "ratelimit", Options: "1"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pusher := s.(stage.Pusher)

	start := time.Now()
	emitted, remainder, err := pusher.Push(stage.Active, nil)
	if err != nil || emitted != nil || remainder != nil {
		t.Fatalf("Push(nil) = %v, %v, %v", emitted, remainder, err)
	}
	if time.Since(start) > time.Second {
		t.Error("Push(nil) should not block on the limiter")
	}
}
