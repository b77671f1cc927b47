package format_test

import (
	"testing"

	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/token"
)

func sym(text string) token.Token {
	return token.Token{Kind: token.SYMBOL, Text: text, Start: token.Position{Offset: 0, Line: 1, Column: 1}}
}

func TestWriteTokenAdvancesColumn(t *testing.T) {
	f := format.New(80, nil)
	f.WriteToken(sym("foo"))
	if f.Column() != 3 {
		t.Fatalf("Column() = %d, want 3", f.Column())
	}
	if f.String() != "foo" {
		t.Fatalf("String() = %q, want %q", f.String(), "foo")
	}
}

func TestAddSpaceIsNoopAtStartOfLine(t *testing.T) {
	f := format.New(80, nil)
	f.AddSpace()
	if f.Column() != 0 {
		t.Fatalf("Column() = %d, want 0 after AddSpace at column 0", f.Column())
	}
	f.WriteToken(sym("a"))
	f.AddSpace()
	f.WriteToken(sym("b"))
	if f.String() != "a b" {
		t.Fatalf("String() = %q, want %q", f.String(), "a b")
	}
}

func TestAddNewlineReindentsToTopAnchor(t *testing.T) {
	f := format.New(80, nil)
	f.WriteToken(sym("head"))
	// WithIndent anchors at current_column+offset (format.go's own doc
	// comment): column is 4 right after "head", so the anchor is 8, not 4.
	f.WithIndent(4, func() {
		f.AddNewline()
		f.WriteToken(sym("x"))
	})
	want := "head\n        x"
	if f.String() != want {
		t.Fatalf("String() = %q, want %q", f.String(), want)
	}
}

func TestWithAnchorPushesAbsoluteColumn(t *testing.T) {
	f := format.New(80, nil)
	f.WriteToken(sym("(("))
	f.WithAnchor(2, func() {
		f.AddNewline()
		f.WriteToken(sym("y"))
	})
	want := "((\n  y"
	if f.String() != want {
		t.Fatalf("String() = %q, want %q", f.String(), want)
	}
}

func TestWithIndentPopsOnPanic(t *testing.T) {
	f := format.New(80, nil)
	func() {
		defer func() { recover() }()
		f.WithIndent(4, func() {
			panic("boom")
		})
	}()
	f.WriteToken(sym("head"))
	f.AddNewline()
	f.WriteToken(sym("tail"))
	want := "head\ntail"
	if f.String() != want {
		t.Fatalf("indentation stack leaked past a panic: String() = %q, want %q", f.String(), want)
	}
}

func TestTrySingleLineCommitsWhenItFits(t *testing.T) {
	f := format.New(20, nil)
	rendered, fits := f.TrySingleLine(func() {
		f.WriteToken(sym("short"))
	})
	if !fits {
		t.Fatalf("fits = false, want true")
	}
	f.Commit(rendered)
	if f.String() != "short" {
		t.Fatalf("String() = %q, want %q", f.String(), "short")
	}
}

func TestTrySingleLineReportsDoesNotFitBeyondSoftWidth(t *testing.T) {
	f := format.New(5, nil)
	_, fits := f.TrySingleLine(func() {
		f.WriteToken(sym("waytoolongforthewidth"))
	})
	if fits {
		t.Fatalf("fits = true, want false")
	}
	if f.String() != "" {
		t.Fatalf("String() = %q, want empty: a discarded speculative render must not touch the real buffer", f.String())
	}
}

func TestAddNewlineInsideTrySingleLinePanics(t *testing.T) {
	f := format.New(80, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("AddNewline inside TrySingleLine did not panic")
		}
	}()
	f.TrySingleLine(func() {
		f.AddNewline()
	})
}

func TestWriteTokenFlushesPendingCommentsBeforeToken(t *testing.T) {
	comments := &preprocess.CommentMap{}
	comments.Add(token.Token{Kind: token.COMMENT, Text: "% hello", Start: token.Position{Offset: 0}})
	f := format.New(80, comments)
	f.WriteToken(token.Token{Kind: token.ATOM, Text: "foo", Start: token.Position{Offset: 10}})
	want := "% hello\nfoo"
	if f.String() != want {
		t.Fatalf("String() = %q, want %q", f.String(), want)
	}
}

func TestWriteTokenDoesNotFlushCommentsPositionedAfter(t *testing.T) {
	comments := &preprocess.CommentMap{}
	comments.Add(token.Token{Kind: token.COMMENT, Text: "% later", Start: token.Position{Offset: 20}})
	f := format.New(80, comments)
	f.WriteToken(token.Token{Kind: token.ATOM, Text: "foo", Start: token.Position{Offset: 10}})
	if f.String() != "foo" {
		t.Fatalf("String() = %q, want %q", f.String(), "foo")
	}
	f.FlushTrailingComments()
	want := "foo% later\n"
	if f.String() != want {
		t.Fatalf("String() = %q, want %q", f.String(), want)
	}
}

func TestDefaultSoftWidthAppliesWhenNonPositive(t *testing.T) {
	f := format.New(0, nil)
	if f.SoftWidth() != format.DefaultSoftWidth {
		t.Fatalf("SoftWidth() = %d, want %d", f.SoftWidth(), format.DefaultSoftWidth)
	}
}
