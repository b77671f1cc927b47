package cst_test

import (
	"strings"
	"testing"

	"github.com/efmtgo/efmt/cst"
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/pstream"
)

func preprocessedOf(t *testing.T, src string) (*pstream.Stream, *preprocess.Preprocessed) {
	t.Helper()
	pre, err := preprocess.New("test.erl", []byte(src)).Preprocess()
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	return pstream.New(pre), pre
}

func formatExpr(t *testing.T, src string, width int) string {
	t.Helper()
	s, pre := preprocessedOf(t, src)
	e, err := cst.ParseExpr(s)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	f := format.New(width, pre.Comments)
	e.Format(f)
	return f.String()
}

func formatType(t *testing.T, src string, width int) string {
	t.Helper()
	s, pre := preprocessedOf(t, src)
	ty, err := cst.ParseType(s)
	if err != nil {
		t.Fatalf("ParseType(%q): %v", src, err)
	}
	f := format.New(width, pre.Comments)
	ty.Format(f)
	return f.String()
}

func TestMfargsPacksWhenItFits(t *testing.T) {
	got := formatExpr(t, "foo:bar(A, 1)", 20)
	want := "foo:bar(A, 1)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMfargsBreaksWithContinuationPastOpenParen(t *testing.T) {
	got := formatExpr(t, "foo:bar(A, BB, baz())", 20)
	want := "foo:bar(A,\n        BB,\n        baz())"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListPacksWhenItFits(t *testing.T) {
	got := formatType(t, "[10, ...]", 20)
	want := "[10, ...]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListBreaksWithEllipsisAlignedToFirstChild(t *testing.T) {
	got := formatType(t, "[fooooooooooo(), ...]", 20)
	want := "[fooooooooooo(),\n ...]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMapPacksWhenItFits(t *testing.T) {
	got := formatExpr(t, "#{a => b, 1 := 2}", 20)
	want := "#{a => b, 1 := 2}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMapBreaksWithClosingBraceOutdentedOneFromEntries(t *testing.T) {
	got := formatExpr(t, "#{aaaaa => b, ccccc := d, eeeee => f}", 20)
	want := "#{aaaaa => b,\n  ccccc := d,\n  eeeee => f\n }"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionTypeBreaksWithReturnIndentedEightPastParams(t *testing.T) {
	got := formatType(t, "fun((A, b, $c) -> tuple())", 20)
	want := "fun((A, b, $c) ->\n            tuple())"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnionTypeBreaksWithBranchesAlignedAtFirstBranch(t *testing.T) {
	got := formatType(t, "Foo :: atom() | integer() | bar", 20)
	want := "Foo :: atom() |\n       integer() |\n       bar"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseProgramWalksMultipleDotTerminatedForms(t *testing.T) {
	src := `-module(foo).
-export([bar/1]).

bar(X) ->
    X + 1.
`
	s, _ := preprocessedOf(t, src)
	program, err := cst.ParseProgram(s)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if len(program.Forms) != 3 {
		t.Fatalf("got %d forms, want 3", len(program.Forms))
	}
}

func TestRecordDeclFieldsWithDefaultsAndTypeAnnotations(t *testing.T) {
	src := `-record(point, {x = 0 :: integer(), y = 0 :: integer()}).
`
	s, _ := preprocessedOf(t, src)
	program, err := cst.ParseProgram(s)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if len(program.Forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(program.Forms))
	}
}

func TestCaseExprClausesWithGuards(t *testing.T) {
	got := formatExpr(t, "case X of 1 -> a; N when N > 0 -> b end", 80)
	if !strings.HasPrefix(got, "case X of") {
		t.Fatalf("got %q, want prefix %q", got, "case X of")
	}
	if !strings.HasSuffix(got, "end") {
		t.Fatalf("got %q, want suffix %q", got, "end")
	}
	for _, want := range []string{"N when N > 0 ->", "1 ->", ";"} {
		if !strings.Contains(got, want) {
			t.Fatalf("got %q, want it to contain %q", got, want)
		}
	}
}

func TestBinaryOpTypeParsesArithmeticOperators(t *testing.T) {
	got := formatType(t, "1..10", 80)
	want := "1 .. 10"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResumeExprHandlesMatchExpr(t *testing.T) {
	got := formatExpr(t, "X = Y + 1", 80)
	want := "X = Y + 1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
