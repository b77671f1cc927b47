package preprocess_test

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/efmtgo/efmt/efmterr"
	"github.com/efmtgo/efmt/preprocess"
)

func tokenTexts(t *testing.T, src string) []string {
	t.Helper()
	out, err := preprocess.New("test.erl", []byte(src)).Preprocess()
	qt.Assert(t, qt.IsNil(err))
	texts := make([]string, len(out.Tokens))
	for i, tok := range out.Tokens {
		texts[i] = tok.Text
	}
	return texts
}

func TestNoMacrosPassesThrough(t *testing.T) {
	got := tokenTexts(t, "foo(X) -> X + 1.")
	want := []string{"foo", "(", "X", ")", "->", "X", "+", "1", "."}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestDefineAndExpandNoArgs(t *testing.T) {
	got := tokenTexts(t, "-define(FOO, bar).\nfoo() -> ?FOO.")
	want := []string{"foo", "(", ")", "->", "bar", "."}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestDefineAndExpandWithArgs(t *testing.T) {
	got := tokenTexts(t, "-define(ADD(X, Y), X + Y).\nfoo() -> ?ADD(1, 2).")
	want := []string{"foo", "(", ")", "->", "1", "+", "2", "."}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestNestedMacroExpandsInTextualOrder(t *testing.T) {
	got := tokenTexts(t, "-define(A, 1).\n-define(B, ?A + 1).\nfoo() -> ?B.")
	want := []string{"foo", "(", ")", "->", "1", "+", "1", "."}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestUndefinedMacroIsFatal(t *testing.T) {
	_, err := preprocess.New("test.erl", []byte("foo() -> ?NOPE.")).Preprocess()
	var undefined *efmterr.UndefinedMacro
	qt.Assert(t, qt.IsTrue(errors.As(err, &undefined)))
}

func TestPredefinedMacrosResolve(t *testing.T) {
	got := tokenTexts(t, "foo() -> ?MODULE.")
	want := []string{"foo", "(", ")", "->", "dummy", "."}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestMalformedMacroArgBareDotInsideArg(t *testing.T) {
	_, err := preprocess.New("test.erl", []byte("-define(F(X), X).\nfoo() -> ?F(a.b).")).Preprocess()
	var malformed *efmterr.MalformedMacroArg
	qt.Assert(t, qt.IsTrue(errors.As(err, &malformed)))
}

func TestMalformedMacroArgUnbalancedDelimiters(t *testing.T) {
	// A ")" arriving while inside an unclosed "[" is unbalanced for the
	// paren counter specifically, even though the scan is not yet at the
	// top level overall.
	_, err := preprocess.New("test.erl", []byte("-define(F(X), X).\nfoo() -> ?F([a)).")).Preprocess()
	var malformed *efmterr.MalformedMacroArg
	qt.Assert(t, qt.IsTrue(errors.As(err, &malformed)))
}

// scanMacroArg treats begin/try/fun/case/if as opening a nesting level (the
// disjunction spec.md's Open Question calls for), so the block's tokens up
// to its matching `end` stay inside the one macro argument.
func TestMacroArgBalancesKeywordBlocks(t *testing.T) {
	got := tokenTexts(t, "-define(F(X), X).\nfoo() -> ?F(case a of b -> c end).")
	want := []string{
		"foo", "(", ")", "->",
		"case", "a", "of", "b", "->", "c", "end",
		".",
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestIncludeIsRejected(t *testing.T) {
	_, err := preprocess.New("test.erl", []byte("-include(\"foo.hrl\").")).Preprocess()
	var unsupported *efmterr.UnsupportedDirective
	qt.Assert(t, qt.IsTrue(errors.As(err, &unsupported)))
	qt.Assert(t, qt.Equals(unsupported.Name, "include"))
}

func TestCommentsRoutedToCommentMap(t *testing.T) {
	out, err := preprocess.New("test.erl", []byte("foo() -> % a comment\n  bar.")).Preprocess()
	qt.Assert(t, qt.IsNil(err))
	all := out.Comments.All()
	qt.Assert(t, qt.HasLen(all, 1))
	qt.Assert(t, qt.Equals(all[0].Text, "% a comment"))
	for _, tok := range out.Tokens {
		qt.Check(t, qt.Not(qt.Equals(tok.Text, "% a comment")))
	}
}

func TestMacroCallSpanRecorded(t *testing.T) {
	out, err := preprocess.New("test.erl", []byte("-define(FOO, bar).\nfoo() -> ?FOO.")).Preprocess()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(out.MacroCalls, 1))
	call := out.MacroCalls[0]
	qt.Assert(t, qt.Equals(call.Name, "FOO"))
	qt.Assert(t, qt.Equals(call.TokenHi-call.TokenLo, 1))
}
