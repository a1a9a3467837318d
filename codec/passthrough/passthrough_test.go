package passthrough_test

import (
	"testing"

	_ "github.com/vpbank/msgproxy/codec/passthrough"
	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func build(t *testing.T, name, options string) stage.Pusher {
	t.Helper()
	s, err := factory.Build(1, specparse.Token{Name: name, Options: options}, nil)
	if err != nil {
		t.Fatalf("Build(%q): %v", name, err)
	}
	return s.(stage.Pusher)
}

func TestNull_PassesThroughUnchanged(t *testing.T) {
	s := build(t, "null", "")
	out, _, err := s.Push(stage.Active, []byte("hello"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("got %q, want %q", out, "hello")
	}
}

func TestStrip_TrimsWhitespace(t *testing.T) {
	s := build(t, "strip", "")
	out, _, err := s.Push(stage.Active, []byte("  hello \t\n"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("got %q, want %q", out, "hello")
	}
}

func TestSkip_DropsLeadingBytesWhenPositive(t *testing.T) {
	s := build(t, "skip", "3")
	out, _, err := s.Push(stage.Active, []byte("hello"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "lo" {
		t.Errorf("got %q, want %q", out, "lo")
	}
}

func TestSkip_KeepsLeadingBytesWhenNegative(t *testing.T) {
	s := build(t, "skip", "-3")
	out, _, err := s.Push(stage.Active, []byte("hello"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "hel" {
		t.Errorf("got %q, want %q", out, "hel")
	}
}

func TestSkip_RejectsNonInteger(t *testing.T) {
	if _, err := factory.Build(1, specparse.Token{Name: "skip", Options: "abc"}, nil); err == nil {
		t.Error("expected error for non-integer skip option")
	}
}

func TestLog_ForwardsUnchanged(t *testing.T) {
	s := build(t, "log", "TRACE")
	out, _, err := s.Push(stage.Active, []byte("hello"))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("got %q, want %q", out, "hello")
	}
}
