package stage_test

import (
	"strings"
	"testing"

	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func TestInvalidOptionError_Message(t *testing.T) {
	err := &stage.InvalidOptionError{Stage: "tcp", Option: "bad", Reason: "not an address"}
	msg := err.Error()
	for _, want := range []string{"tcp", "bad", "not an address"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestInvalidOptionError_OmitsOptionWhenEmpty(t *testing.T) {
	err := &stage.InvalidOptionError{Stage: "tcp", Reason: "missing option"}
	if strings.Contains(err.Error(), `option ""`) {
		t.Errorf("Error() = %q, should not mention an empty option", err.Error())
	}
}

func TestInvalidDataError_Message(t *testing.T) {
	err := &stage.InvalidDataError{Stage: "-length", Reason: "truncated"}
	msg := err.Error()
	for _, want := range []string{"-length", "truncated"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestState_String(t *testing.T) {
	if stage.Active.String() != "active" {
		t.Errorf("Active.String() = %q, want %q", stage.Active.String(), "active")
	}
	if stage.End.String() != "end" {
		t.Errorf("End.String() = %q, want %q", stage.End.String(), "end")
	}
}
