package delim_test

import (
	"testing"

	_ "github.com/vpbank/msgproxy/codec/delim"
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

func TestEncode_NoLeadingDelimiterOnFirstMessage(t *testing.T) {
	enc := build(t, "+lines", "")
	m1, _, _ := enc.Push(stage.Active, []byte("a"))
	m2, _, _ := enc.Push(stage.Active, []byte("b"))

	if string(m1) != "a" {
		t.Errorf("first emission = %q, want %q (no leading delimiter)", m1, "a")
	}
	if string(m2) != "\nb" {
		t.Errorf("second emission = %q, want %q", m2, "\nb")
	}
}

func TestDecode_SplitsOnDelimiter(t *testing.T) {
	dec := build(t, "-lines", "")
	msg, rest, err := dec.Push(stage.Active, []byte("m1\nm2\nm3"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(msg) != "m1" || string(rest) != "m2\nm3" {
		t.Errorf("got msg=%q rest=%q", msg, rest)
	}
}

func TestDecode_NoDelimiterMidStreamWaitsForMore(t *testing.T) {
	dec := build(t, "-lines", "")
	emitted, remainder, err := dec.Push(stage.Active, []byte("partial"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if emitted != nil {
		t.Errorf("emitted = %q, want nil", emitted)
	}
	if string(remainder) != "partial" {
		t.Errorf("remainder = %q, want %q", remainder, "partial")
	}
}

func TestDecode_NoDelimiterAtEndEmitsBufferedMessage(t *testing.T) {
	dec := build(t, "-lines", "")
	emitted, remainder, err := dec.Push(stage.End, []byte("tail"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(emitted) != "tail" {
		t.Errorf("emitted = %q, want %q", emitted, "tail")
	}
	if remainder != nil {
		t.Errorf("remainder = %q, want nil", remainder)
	}
}

func TestCustomDelimiter(t *testing.T) {
	dec := build(t, "-delim", "||")
	msg, rest, err := dec.Push(stage.Active, []byte("a||b"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(msg) != "a" || string(rest) != "b" {
		t.Errorf("got msg=%q rest=%q", msg, rest)
	}
}

func TestNewEncoder_RejectsEmptyDelimiter(t *testing.T) {
	if _, err := factory.Build(1, specparse.Token{Name: "+delim", Options: ""}, nil); err == nil {
		t.Error("expected error for empty delimiter option")
	}
}
