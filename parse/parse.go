// Package parse is the generic parser driver: the mechanical half of
// "declarative derivation" (see cst's doc comment) that Go's lack of a
// compile-time derive forces to be written out as ordinary generic
// functions instead of generated per-type. Every sum-shaped CST node reuses
// Alternatives; every product-shaped node is hand-written but calls through
// Expect for its terminal symbols.
package parse

import (
	"github.com/efmtgo/efmt/efmterr"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

// Func parses one T from s, consuming tokens on success and leaving the
// cursor at the furthest failure point on error.
type Func[T any] func(s *pstream.Stream) (T, error)

// TryParse checkpoints s, runs fn, and rolls back the cursor on failure
// while still recording the failure in s's last-error discipline. This is
// the "speculative parsing with best-error" design note made concrete.
func TryParse[T any](s *pstream.Stream, fn Func[T]) (T, error) {
	cp := s.Checkpoint()
	v, err := fn(s)
	if err != nil {
		s.Restore(cp)
		s.Fail(err)
		var zero T
		return zero, err
	}
	return v, nil
}

// Alternatives tries each fn in order via TryParse and returns the first
// success. If every alternative fails, it returns an efmterr.NoAlternative
// whose Inner is the stream's LastError — the furthest-reaching, most
// specific diagnostic recorded so far — or, when nothing was recorded (no
// alternatives given), a NoAlternative with no Inner. This single function
// realizes the derived Parse of every sum node in the CST: callers never
// hand-write the try/rollback/report loop.
func Alternatives[T any](s *pstream.Stream, fns ...Func[T]) (T, error) {
	var zero T
	for _, fn := range fns {
		if v, err := TryParse(s, fn); err == nil {
			return v, nil
		}
	}
	return zero, &efmterr.NoAlternative{Pos: s.Peek().Start, Inner: s.LastError()}
}

// ExpectSymbol consumes the next token if it is the SYMBOL text, else fails
// without advancing (the caller sees the cursor exactly where Peek left it).
func ExpectSymbol(s *pstream.Stream, text string) (token.Token, error) {
	return expect(s, token.SYMBOL, text)
}

// ExpectKeyword consumes the next token if it is the KEYWORD text.
func ExpectKeyword(s *pstream.Stream, text string) (token.Token, error) {
	return expect(s, token.KEYWORD, text)
}

func expect(s *pstream.Stream, kind token.Kind, text string) (token.Token, error) {
	t := s.Peek()
	if !t.Is(kind, text) {
		return token.Token{}, s.Fail(&efmterr.UnexpectedToken{Expected: text, Got: t.Text, Pos: t.Start})
	}
	return s.Next(), nil
}

// ExpectKind consumes the next token if its Kind matches, regardless of
// text (used for ATOM, VARIABLE, INTEGER, FLOAT, CHAR, STRING terminals).
func ExpectKind(s *pstream.Stream, kind token.Kind, what string) (token.Token, error) {
	t := s.Peek()
	if t.Kind != kind {
		return token.Token{}, s.Fail(&efmterr.UnexpectedToken{Expected: what, Got: t.Text, Pos: t.Start})
	}
	return s.Next(), nil
}

// Opt runs fn speculatively and reports whether it succeeded, swallowing
// the error (the caller only needs "is this here", not a diagnostic) — used
// for lookahead on optional trailing forms like a record field's `= Default`.
func Opt[T any](s *pstream.Stream, fn Func[T]) (T, bool) {
	cp := s.Checkpoint()
	v, err := fn(s)
	if err != nil {
		s.Restore(cp)
		var zero T
		return zero, false
	}
	return v, true
}
