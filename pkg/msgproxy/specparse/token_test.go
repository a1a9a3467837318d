package specparse_test

import (
	"testing"

	"github.com/vpbank/msgproxy/pkg/msgproxy/specparse"
)

func TestTokenize_SplitsNameAndOptions(t *testing.T) {
	toks, err := specparse.Tokenize([]string{"tcp:10.0.0.1:9000", "+length", "-lines"})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []specparse.Token{
		{Name: "tcp", Options: "10.0.0.1:9000", Raw: "tcp:10.0.0.1:9000"},
		{Name: "+length", Raw: "+length"},
		{Name: "-lines", Raw: "-lines"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token[%d] = %+v, want %+v", i, toks[i], want[i])
		}
	}
}

func TestTokenize_RejectsEmptyToken(t *testing.T) {
	if _, err := specparse.Tokenize([]string{""}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestTokenize_RejectsMissingName(t *testing.T) {
	if _, err := specparse.Tokenize([]string{":options"}); err == nil {
		t.Error("expected error for token with no name before ':'")
	}
}

func TestToken_StringRoundTrips(t *testing.T) {
	tok := specparse.Token{Name: "tcp", Options: "10.0.0.1:9000"}
	if got := tok.String(); got != "tcp:10.0.0.1:9000" {
		t.Errorf("String() = %q, want %q", got, "tcp:10.0.0.1:9000")
	}
	plain := specparse.Token{Name: "+length"}
	if got := plain.String(); got != "+length" {
		t.Errorf("String() = %q, want %q", got, "+length")
	}
}
