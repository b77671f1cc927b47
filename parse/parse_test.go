package parse_test

import (
	"errors"
	"testing"

	"github.com/efmtgo/efmt/efmterr"
	"github.com/efmtgo/efmt/parse"
	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

func streamOf(t *testing.T, src string) *pstream.Stream {
	t.Helper()
	out, err := preprocess.New("test.erl", []byte(src)).Preprocess()
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	return pstream.New(out)
}

func TestExpectSymbolConsumesOnMatch(t *testing.T) {
	s := streamOf(t, "-> bar")
	tok, err := parse.ExpectSymbol(s, "->")
	if err != nil {
		t.Fatalf("ExpectSymbol: %v", err)
	}
	if tok.Text != "->" {
		t.Fatalf("got %q, want ->", tok.Text)
	}
	if s.Peek().Text != "bar" {
		t.Fatalf("cursor did not advance past matched symbol, peek = %q", s.Peek().Text)
	}
}

func TestExpectSymbolFailsWithoutAdvancing(t *testing.T) {
	s := streamOf(t, "foo bar")
	cursor := s.Cursor()
	_, err := parse.ExpectSymbol(s, "->")
	if err == nil {
		t.Fatal("expected error for mismatched symbol")
	}
	var unexpected *efmterr.UnexpectedToken
	if !errors.As(err, &unexpected) {
		t.Fatalf("error = %v, want *efmterr.UnexpectedToken", err)
	}
	if s.Cursor() != cursor {
		t.Fatalf("cursor advanced on failed Expect: %d != %d", s.Cursor(), cursor)
	}
}

func TestExpectKeywordMatchesKindAndText(t *testing.T) {
	s := streamOf(t, "case X of")
	if _, err := parse.ExpectKeyword(s, "case"); err != nil {
		t.Fatalf("ExpectKeyword: %v", err)
	}
	// "case" as a string literal, not a keyword, must not match ExpectKeyword.
	s2 := streamOf(t, "\"case\"")
	if _, err := parse.ExpectKeyword(s2, "case"); err == nil {
		t.Fatal("expected ExpectKeyword to reject a STRING token with matching text")
	}
}

func TestExpectKindIgnoresText(t *testing.T) {
	s := streamOf(t, "123")
	tok, err := parse.ExpectKind(s, token.INTEGER, "integer")
	if err != nil {
		t.Fatalf("ExpectKind: %v", err)
	}
	if tok.Text != "123" {
		t.Fatalf("got %q, want 123", tok.Text)
	}
}

func TestTryParseRollsBackOnFailure(t *testing.T) {
	s := streamOf(t, "foo bar")
	cursor := s.Cursor()
	_, err := parse.TryParse(s, func(s *pstream.Stream) (token.Token, error) {
		if _, err := parse.ExpectSymbol(s, "->"); err != nil {
			return token.Token{}, err
		}
		return token.Token{}, nil
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if s.Cursor() != cursor {
		t.Fatalf("TryParse left cursor at %d, want rollback to %d", s.Cursor(), cursor)
	}
}

func TestTryParseKeepsCursorOnSuccess(t *testing.T) {
	s := streamOf(t, "foo bar")
	v, err := parse.TryParse(s, func(s *pstream.Stream) (string, error) {
		return s.Next().Text, nil
	})
	if err != nil {
		t.Fatalf("TryParse: %v", err)
	}
	if v != "foo" {
		t.Fatalf("got %q, want foo", v)
	}
	if s.Peek().Text != "bar" {
		t.Fatalf("cursor not advanced on success, peek = %q", s.Peek().Text)
	}
}

func TestAlternativesTriesInOrderAndReturnsFirstMatch(t *testing.T) {
	s := streamOf(t, "bar")
	parseFoo := func(s *pstream.Stream) (string, error) {
		t, err := parse.ExpectKind(s, token.ATOM, "atom")
		if err != nil {
			return "", err
		}
		if t.Text != "foo" {
			return "", &efmterr.UnexpectedToken{Expected: "foo", Got: t.Text}
		}
		return "foo-branch", nil
	}
	parseBar := func(s *pstream.Stream) (string, error) {
		t, err := parse.ExpectKind(s, token.ATOM, "atom")
		if err != nil {
			return "", err
		}
		return "bar-branch:" + t.Text, nil
	}

	got, err := parse.Alternatives(s, parseFoo, parseBar)
	if err != nil {
		t.Fatalf("Alternatives: %v", err)
	}
	if got != "bar-branch:bar" {
		t.Fatalf("got %q, want bar-branch:bar", got)
	}
}

func TestAlternativesReturnsFurthestReachingErrorWhenAllFail(t *testing.T) {
	s := streamOf(t, "123")
	parseAsAtom := func(s *pstream.Stream) (string, error) {
		_, err := parse.ExpectKind(s, token.ATOM, "atom")
		return "", err
	}
	parseAsKeyword := func(s *pstream.Stream) (string, error) {
		_, err := parse.ExpectKeyword(s, "case")
		return "", err
	}

	_, err := parse.Alternatives(s, parseAsAtom, parseAsKeyword)
	if err == nil {
		t.Fatal("expected all-alternatives-failed error")
	}
	var unexpected *efmterr.UnexpectedToken
	if !errors.As(err, &unexpected) {
		t.Fatalf("error = %v, want *efmterr.UnexpectedToken (from the first alternative, since both fail at the same cursor)", err)
	}
}

func TestAlternativesWithNoFnsReportsNoAlternative(t *testing.T) {
	s := streamOf(t, "foo")
	_, err := parse.Alternatives[string](s)
	if err == nil {
		t.Fatal("expected an error when no alternatives are given")
	}
	var noAlt *efmterr.NoAlternative
	if !errors.As(err, &noAlt) {
		t.Fatalf("error = %v, want *efmterr.NoAlternative", err)
	}
}

func TestOptSwallowsErrorAndRollsBack(t *testing.T) {
	s := streamOf(t, "foo")
	cursor := s.Cursor()
	_, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
		return parse.ExpectSymbol(s, "->")
	})
	if ok {
		t.Fatal("expected Opt to report false on failure")
	}
	if s.Cursor() != cursor {
		t.Fatalf("Opt left cursor at %d after failure, want rollback to %d", s.Cursor(), cursor)
	}
}

func TestOptReportsTrueAndAdvancesOnSuccess(t *testing.T) {
	s := streamOf(t, "-> bar")
	v, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
		return parse.ExpectSymbol(s, "->")
	})
	if !ok {
		t.Fatal("expected Opt to report true on success")
	}
	if v.Text != "->" {
		t.Fatalf("got %q, want ->", v.Text)
	}
	if s.Peek().Text != "bar" {
		t.Fatalf("cursor not advanced after successful Opt, peek = %q", s.Peek().Text)
	}
}
