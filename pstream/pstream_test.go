package pstream_test

import (
	"errors"
	"testing"

	"github.com/efmtgo/efmt/efmterr"
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

func TestPeekDoesNotAdvance(t *testing.T) {
	s := streamOf(t, "foo bar")
	first := s.Peek()
	second := s.Peek()
	if first != second {
		t.Fatalf("Peek() not idempotent: %+v != %+v", first, second)
	}
	if first.Text != "foo" {
		t.Fatalf("Peek().Text = %q, want foo", first.Text)
	}
}

func TestNextAdvancesCursor(t *testing.T) {
	s := streamOf(t, "foo bar")
	if got := s.Next().Text; got != "foo" {
		t.Fatalf("first Next() = %q, want foo", got)
	}
	if got := s.Next().Text; got != "bar" {
		t.Fatalf("second Next() = %q, want bar", got)
	}
	if got := s.Next().Kind; got != token.EOF {
		t.Fatalf("Next() past end = %v, want EOF", got)
	}
}

func TestNextAtEOFDoesNotPanic(t *testing.T) {
	s := streamOf(t, "")
	for i := 0; i < 3; i++ {
		if got := s.Next().Kind; got != token.EOF {
			t.Fatalf("Next() on empty stream = %v, want EOF", got)
		}
	}
}

func TestCheckpointRestoreRewindsCursor(t *testing.T) {
	s := streamOf(t, "foo bar baz")
	s.Next() // consume foo
	cp := s.Checkpoint()
	s.Next() // consume bar
	s.Next() // consume baz
	s.Restore(cp)
	if got := s.Peek().Text; got != "bar" {
		t.Fatalf("Peek() after restore = %q, want bar", got)
	}
}

func TestCursorReflectsPosition(t *testing.T) {
	s := streamOf(t, "foo bar")
	if s.Cursor() != 0 {
		t.Fatalf("initial Cursor() = %d, want 0", s.Cursor())
	}
	s.Next()
	if s.Cursor() != 1 {
		t.Fatalf("Cursor() after one Next = %d, want 1", s.Cursor())
	}
}

func TestFailIsNoOpForNilError(t *testing.T) {
	s := streamOf(t, "foo")
	if err := s.Fail(nil); err != nil {
		t.Fatalf("Fail(nil) = %v, want nil", err)
	}
	if s.LastError() != nil {
		t.Fatalf("LastError() after Fail(nil) = %v, want nil", s.LastError())
	}
}

func TestFailRecordsFurthestReachingError(t *testing.T) {
	s := streamOf(t, "foo bar baz")

	near := &efmterr.UnexpectedToken{Expected: "x", Got: "foo"}
	s.Fail(near)
	if s.LastError() != near {
		t.Fatalf("LastError() = %v, want %v", s.LastError(), near)
	}

	s.Next() // advance cursor further
	far := &efmterr.UnexpectedToken{Expected: "y", Got: "bar"}
	s.Fail(far)
	if s.LastError() != far {
		t.Fatalf("LastError() after further failure = %v, want %v", s.LastError(), far)
	}
}

func TestFailDoesNotRegressOnRollback(t *testing.T) {
	s := streamOf(t, "foo bar baz")

	s.Next()
	s.Next()
	far := &efmterr.UnexpectedToken{Expected: "x", Got: "baz"}
	s.Fail(far)

	// Rolling back the cursor must not let a shallower failure overwrite the
	// furthest-reaching one already recorded.
	s.Restore(pstream.Checkpoint(0))
	near := &efmterr.UnexpectedToken{Expected: "y", Got: "foo"}
	s.Fail(near)

	if s.LastError() != far {
		t.Fatalf("LastError() = %v, want furthest-reaching %v", s.LastError(), far)
	}
}

func TestFailReturnsErrUnchanged(t *testing.T) {
	s := streamOf(t, "foo")
	err := &efmterr.UnexpectedToken{Expected: "x", Got: "foo"}
	if got := s.Fail(err); got != err {
		t.Fatalf("Fail() returned %v, want the same error back", got)
	}
}

func TestCommentsAndMacroCallsPassThrough(t *testing.T) {
	s := streamOf(t, "-define(FOO, bar).\nfoo() -> ?FOO. % trailing")
	if len(s.MacroCalls()) != 1 {
		t.Fatalf("MacroCalls() = %d entries, want 1", len(s.MacroCalls()))
	}
	if got := len(s.Comments().All()); got != 1 {
		t.Fatalf("Comments().All() = %d entries, want 1", got)
	}
}

func TestUnexpectedEOFMatchesErrorsAs(t *testing.T) {
	// sanity check that efmterr types used alongside pstream.Fail satisfy
	// errors.As the way the parser package relies on.
	var target *efmterr.UnexpectedEOF
	err := error(&efmterr.UnexpectedEOF{})
	if !errors.As(err, &target) {
		t.Fatal("errors.As failed to match *efmterr.UnexpectedEOF")
	}
}
