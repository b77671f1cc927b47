package token

import "testing"

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{ILLEGAL, "ILLEGAL"},
		{EOF, "EOF"},
		{ATOM, "ATOM"},
		{VARIABLE, "VARIABLE"},
		{INTEGER, "INTEGER"},
		{FLOAT, "FLOAT"},
		{CHAR, "CHAR"},
		{STRING, "STRING"},
		{KEYWORD, "KEYWORD"},
		{SYMBOL, "SYMBOL"},
		{COMMENT, "COMMENT"},
		{Kind(999), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestTokenIs(t *testing.T) {
	tok := Token{Kind: SYMBOL, Text: "->"}
	if !tok.Is(SYMBOL, "->") {
		t.Error("expected Is to match on kind and text")
	}
	if tok.Is(SYMBOL, "=>") {
		t.Error("Is should not match on differing text")
	}
	if tok.Is(KEYWORD, "->") {
		t.Error("Is should not match on differing kind")
	}
}

func TestTokenIsEOF(t *testing.T) {
	if !(Token{Kind: EOF}).IsEOF() {
		t.Error("expected EOF token to report IsEOF")
	}
	if (Token{Kind: ATOM}).IsEOF() {
		t.Error("ATOM token should not report IsEOF")
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"fun", "case", "of", "end", "when", "andalso"} {
		if !IsKeyword(kw) {
			t.Errorf("IsKeyword(%q) = false, want true", kw)
		}
	}
	for _, notKw := range []string{"foo", "Module", "bar_baz"} {
		if IsKeyword(notKw) {
			t.Errorf("IsKeyword(%q) = true, want false", notKw)
		}
	}
}

func TestPositionOrdering(t *testing.T) {
	a := Position{Offset: 1, Line: 1, Column: 2}
	b := Position{Offset: 5, Line: 1, Column: 6}
	if !a.Before(b) {
		t.Error("expected a.Before(b)")
	}
	if b.Before(a) {
		t.Error("expected !b.Before(a)")
	}
}

func TestPositionString(t *testing.T) {
	if got := (Position{}).String(); got != "-" {
		t.Errorf("zero Position.String() = %q, want %q", got, "-")
	}
	p := Position{Line: 3, Column: 4}
	if got, want := p.String(), "3:4"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}
	p.File = "foo.erl"
	if got, want := p.String(), "foo.erl:3:4"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}
}
