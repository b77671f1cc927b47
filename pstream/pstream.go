// Package pstream implements the transactional token stream the parser
// drives: a random-access view over an already-expanded token vector, with
// cheap checkpoint/restore and a monotone "furthest error wins" accumulator.
package pstream

import (
	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/token"
)

// Checkpoint is a cursor snapshot. It is a plain integer, not a deep copy:
// restoring it rewinds the cursor but never touches LastError, so
// diagnostics only ever improve as speculation proceeds.
type Checkpoint int

// Stream is a checkpointable cursor over a Preprocessed token vector, plus
// the comment and macro-call maps the formatter needs once parsing is done.
type Stream struct {
	tokens     []token.Token
	comments   *preprocess.CommentMap
	macroCalls []preprocess.MacroCall

	cursor    int
	lastError error
	lastPos   int // cursor position lastError was recorded at
}

// New wraps a preprocessing pass's output for parsing.
func New(p *preprocess.Preprocessed) *Stream {
	return &Stream{
		tokens:     p.Tokens,
		comments:   p.Comments,
		macroCalls: p.MacroCalls,
		lastPos:    -1,
	}
}

// Comments returns the stream's comment map, for the formatter.
func (s *Stream) Comments() *preprocess.CommentMap { return s.comments }

// MacroCalls returns the recorded macro-call regions.
func (s *Stream) MacroCalls() []preprocess.MacroCall { return s.macroCalls }

// Peek returns the token at the cursor without advancing it.
func (s *Stream) Peek() token.Token {
	if s.cursor >= len(s.tokens) {
		return eofToken(s)
	}
	return s.tokens[s.cursor]
}

// Next returns the token at the cursor and advances past it.
func (s *Stream) Next() token.Token {
	t := s.Peek()
	if s.cursor < len(s.tokens) {
		s.cursor++
	}
	return t
}

func eofToken(s *Stream) token.Token {
	if len(s.tokens) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return token.Token{Kind: token.EOF, Start: s.tokens[len(s.tokens)-1].End, End: s.tokens[len(s.tokens)-1].End}
}

// Checkpoint saves the cursor.
func (s *Stream) Checkpoint() Checkpoint { return Checkpoint(s.cursor) }

// Restore rewinds the cursor to a previously saved Checkpoint. LastError is
// untouched: rollback never un-records a diagnostic.
func (s *Stream) Restore(c Checkpoint) { s.cursor = int(c) }

// Cursor reports the current cursor index, used by callers that need to
// compare "how far" two attempts got without exposing a Checkpoint's
// internals beyond equality.
func (s *Stream) Cursor() int { return s.cursor }

// Fail records err as having originated at the current cursor position, if
// that position is strictly further than any previously recorded failure.
// Returns err unchanged, so call sites can write `return s.Fail(err)`.
func (s *Stream) Fail(err error) error {
	if err == nil {
		return nil
	}
	if s.cursor > s.lastPos {
		s.lastPos = s.cursor
		s.lastError = err
	}
	return err
}

// LastError returns the furthest-reaching failure recorded so far, or nil
// if none has been recorded.
func (s *Stream) LastError() error { return s.lastError }
