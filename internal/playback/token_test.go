package playback

import "testing"

func TestAuthorityMintsDistinctTokens(t *testing.T) {
	var a Authority
	seen := make(map[Token]bool)

	for i := 0; i < 100; i++ {
		tok := a.Mint()
		if tok.IsZero() {
			t.Fatal("minted zero token")
		}
		if seen[tok] {
			t.Fatalf("token %s minted twice", tok)
		}
		seen[tok] = true
	}
}

func TestAuthoritySupersedes(t *testing.T) {
	var a Authority

	first := a.Mint()
	second := a.Mint()
	if a.Valid(first) {
		t.Fatal("superseded token still valid")
	}
	if !a.Valid(second) {
		t.Fatal("current token not valid")
	}

	a.Revoke()
	if a.Valid(second) {
		t.Fatal("revoked token still valid")
	}
	if a.Valid("") {
		t.Fatal("zero token valid")
	}
	if !a.Current().IsZero() {
		t.Fatal("current token not cleared")
	}
}
