// Package cst declares the concrete-syntax-tree node set: every syntactic
// form the formatter understands, each responsible for its own parsing,
// span computation, and layout.
//
// Go has no compile-time derive, so the "declarative derivation" the
// original design calls for is realized two ways here instead of one
// generated one: sum nodes (Type, Expr, Form, ...) are plain interfaces
// whose Parse is driven once, generically, by parse.Alternatives — see
// that package's doc comment — and whose Span/Format are free (interface
// dispatch already picks the right variant's method). Product nodes are
// hand-written structs with a hand-written Parse, because Go cannot walk a
// struct's fields generically without reflection; what *is* shared across
// product nodes is the repeated shapes (delimited lists, binary operators,
// optional suffixes) in combinators.go, written once and reused by every
// concrete type that has that shape.
package cst

import (
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/token"
)

// Span is a node's source extent. Layout never consults it, since
// re-emitted text has its own freshly computed columns.
type Span struct {
	Start token.Position
	End   token.Position
}

// Node is implemented by every CST node: product and sum alike.
type Node interface {
	Span() Span
	Format(f *format.Formatter)
}

// spanFromTokens builds a Span covering [first.Start, last.End).
func spanFromTokens(first, last token.Token) Span {
	return Span{Start: first.Start, End: last.End}
}
