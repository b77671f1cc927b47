package cst

import (
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/parse"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

// StyleNewline is the break policy a collection-shaped node's style
// descriptor attaches to its continuation, per spec.md §4.3.
type StyleNewline int

const (
	NewlineNever StyleNewline = iota
	NewlineIfTooLong
	NewlineIfTooLongOrMultiline
	NewlineAlways
)

// Items is the one generic realization of every delimited, separator-joined
// collection in the grammar: list/tuple/map/record entries, export/import
// name lists, clause argument lists, guard sequences. It is the direct
// analogue of the teacher's NonEmptyItems<T, D>.
type Items[T Node] struct {
	Open  token.Token // zero value if the collection has no bracket
	Elems []T
	Seps  []token.Token // len(Seps) == len(Elems)-1 or len(Elems) (trailing allowed by caller)
	Close token.Token
}

// ParseItems parses an `open elem (sep elem)* close` list. If open is "",
// no opening delimiter is consumed (used for bracket-free lists like guard
// sequences); likewise for close. When both delimiters are given, `open`
// directly followed by `close` is an empty list (e.g. `foo()`). Otherwise
// elem is tried once before checking for more separators, so a bracket-free
// list always holds at least one element.
func ParseItems[T Node](s *pstream.Stream, open, sep, close string, elem parse.Func[T]) (Items[T], error) {
	var it Items[T]
	if open != "" {
		t, err := parse.ExpectSymbol(s, open)
		if err != nil {
			return it, err
		}
		it.Open = t
		if close != "" && s.Peek().Is(token.SYMBOL, close) {
			it.Close = s.Next()
			return it, nil
		}
	}
	for {
		v, err := elem(s)
		if err != nil {
			return it, err
		}
		it.Elems = append(it.Elems, v)
		if sepTok, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
			return parse.ExpectSymbol(s, sep)
		}); ok {
			it.Seps = append(it.Seps, sepTok)
			continue
		}
		break
	}
	if close != "" {
		t, err := parse.ExpectSymbol(s, close)
		if err != nil {
			return it, err
		}
		it.Close = t
	}
	return it, nil
}

// Span covers the opening delimiter through the closing one when present,
// else the first element's start through the last element's end.
func (it Items[T]) Span() Span {
	if it.Open.Text != "" {
		return spanFromTokens(it.Open, it.Close)
	}
	return Span{Start: it.Elems[0].Span().Start, End: it.Elems[len(it.Elems)-1].Span().End}
}

// Format implements Node by packing with no explicit anchor column, so an
// Items[T] value can sit directly in a Node-typed field (e.g. a function
// type's parameter list, which is either a parenthesized Items[Type] or a
// Parenthesized `(...)`). Callers that need an anchor column call
// FormatPacked directly instead.
func (it Items[T]) Format(f *format.Formatter) { it.FormatPacked(f, -1) }

// FormatPacked implements the "List/Tuple/Map/Record packing" policy of
// spec.md §4.4: if the whole collection fits on the current line, render
// inline with ", " separators (whatever the elements are); otherwise keep
// the first element right after the opening delimiter and put each later
// element on its own line, aligned one column past that delimiter (or at
// anchorCol when >= 0, for the "closing delimiter aligned with the opening
// column" forms), with a trailing comma on all but the last.
func (it Items[T]) FormatPacked(f *format.Formatter, anchorCol int) {
	rendered, fits := f.TrySingleLine(func() { it.formatInline(f) })
	if fits {
		f.Commit(rendered)
		return
	}
	anchor := anchorCol
	body := func() {
		for i, elem := range it.Elems {
			if i > 0 {
				f.WriteToken(comma())
				f.AddNewline()
			}
			elem.Format(f)
		}
	}
	if it.Open.Text != "" {
		f.WriteToken(it.Open)
	}
	if anchor < 0 {
		// Column() already points one past the delimiter just written, so
		// the anchor for "one column past the opening delimiter" is the
		// current column itself, not current+1.
		f.WithAnchor(f.Column(), func() {
			body()
		})
	} else {
		f.WithAnchor(anchor, func() {
			body()
		})
	}
	if it.Close.Text != "" {
		f.WriteToken(it.Close)
	}
}

// FormatPackedClosingOutdented is FormatPacked's map-entry variant: the
// closing delimiter gets its own line, indented one column left of the
// entries rather than glued to the last one.
func (it Items[T]) FormatPackedClosingOutdented(f *format.Formatter, anchorCol int) {
	rendered, fits := f.TrySingleLine(func() { it.formatInline(f) })
	if fits {
		f.Commit(rendered)
		return
	}
	if it.Open.Text != "" {
		f.WriteToken(it.Open)
	}
	anchor := anchorCol
	if anchor < 0 {
		anchor = f.Column()
	}
	f.WithAnchor(anchor, func() {
		for i, elem := range it.Elems {
			if i > 0 {
				f.WriteToken(comma())
				f.AddNewline()
			}
			elem.Format(f)
		}
	})
	f.WithAnchor(anchor-1, func() {
		f.AddNewline()
	})
	if it.Close.Text != "" {
		f.WriteToken(it.Close)
	}
}

func (it Items[T]) formatInline(f *format.Formatter) {
	if it.Open.Text != "" {
		f.WriteToken(it.Open)
	}
	for i, elem := range it.Elems {
		if i > 0 {
			f.WriteToken(comma())
			f.AddSpace()
		}
		elem.Format(f)
	}
	if it.Close.Text != "" {
		f.WriteToken(it.Close)
	}
}

func comma() token.Token { return token.Token{Kind: token.SYMBOL, Text: ","} }

// BinaryOp is the one generic realization of the binary forms (arithmetic
// type/expr operators, matches, `::` and `->` annotations): a left operand,
// an operator token, and a right operand, with a style descriptor
// controlling when the operator breaks. Operator chains are built
// right-nested, with the rest of the chain in Right. It is the analogue of
// the teacher's BinaryOpLike<L, Op, R>.
type BinaryOp[L Node, R Node] struct {
	Left    L
	Op      token.Token
	Right   R
	Indent  int
	Newline StyleNewline
}

func (b BinaryOp[L, R]) Span() Span {
	return Span{Start: b.Left.Span().Start, End: b.Right.Span().End}
}

// Format implements spec.md §4.4's binary-op style: emit lhs, the operator
// with surrounding spaces, then either a space before rhs or a newline
// indented by Indent from the column where lhs started. NewlineNever always
// uses the space, NewlineAlways always breaks, and NewlineIfTooLong /
// NewlineIfTooLongOrMultiline break only when the whole form does not fit.
func (b BinaryOp[L, R]) Format(f *format.Formatter) {
	start := f.Column()
	if b.Newline == NewlineNever {
		b.Left.Format(f)
		f.AddSpace()
		f.WriteToken(b.Op)
		f.AddSpace()
		b.Right.Format(f)
		return
	}
	if b.Newline == NewlineAlways {
		b.Left.Format(f)
		f.AddSpace()
		f.WriteToken(b.Op)
		f.WithAnchor(start+b.Indent, func() {
			f.AddNewline()
			b.Right.Format(f)
		})
		return
	}
	rendered, fits := f.TrySingleLine(func() {
		b.Left.Format(f)
		f.AddSpace()
		f.WriteToken(b.Op)
		f.AddSpace()
		b.Right.Format(f)
	})
	if fits {
		f.Commit(rendered)
		return
	}
	b.Left.Format(f)
	f.AddSpace()
	f.WriteToken(b.Op)
	f.WithAnchor(start+b.Indent, func() {
		f.AddNewline()
		b.Right.Format(f)
	})
}

// Maybe wraps an optional child: present reports whether it was parsed.
type Maybe[T Node] struct {
	Value   T
	Present bool
}

func (m Maybe[T]) Span() Span {
	if m.Present {
		return m.Value.Span()
	}
	return Span{}
}

func (m Maybe[T]) Format(f *format.Formatter) {
	if m.Present {
		m.Value.Format(f)
	}
}

// ParseMaybe tries fn speculatively; absence is never an error.
func ParseMaybe[T Node](s *pstream.Stream, fn parse.Func[T]) Maybe[T] {
	v, ok := parse.Opt(s, fn)
	return Maybe[T]{Value: v, Present: ok}
}

// Either holds one of two alternative node shapes, used where a sum has
// exactly two variants and a dedicated named sum type would be pure
// boilerplate (e.g. a record field's optional `::Type` vs plain name).
type Either[A Node, B Node] struct {
	A       A
	B       B
	IsFirst bool
}

func (e Either[A, B]) Span() Span {
	if e.IsFirst {
		return e.A.Span()
	}
	return e.B.Span()
}

func (e Either[A, B]) Format(f *format.Formatter) {
	if e.IsFirst {
		e.A.Format(f)
		return
	}
	e.B.Format(f)
}

// Parenthesized wraps any node in a `( Inner )` pair. Primitive exactly
// when Inner is primitive — the parens themselves cost two characters but
// never force a break on their own.
type Parenthesized[T Node] struct {
	Open  token.Token
	Inner T
	Close token.Token
}

func ParseParenthesized[T Node](s *pstream.Stream, inner parse.Func[T]) (Parenthesized[T], error) {
	open, err := parse.ExpectSymbol(s, "(")
	if err != nil {
		return Parenthesized[T]{}, err
	}
	v, err := inner(s)
	if err != nil {
		return Parenthesized[T]{}, err
	}
	close, err := parse.ExpectSymbol(s, ")")
	if err != nil {
		return Parenthesized[T]{}, err
	}
	return Parenthesized[T]{Open: open, Inner: v, Close: close}, nil
}

func (p Parenthesized[T]) Span() Span { return spanFromTokens(p.Open, p.Close) }

func (p Parenthesized[T]) Format(f *format.Formatter) {
	f.WriteToken(p.Open)
	p.Inner.Format(f)
	f.WriteToken(p.Close)
}

