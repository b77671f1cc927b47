// Package efmt is the library surface: format a whole compilation unit, or
// parse a single CST root for testing and tooling.
package efmt

import (
	"github.com/efmtgo/efmt/cst"
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/pstream"
)

// Format runs the full pipeline — preprocess, parse, lay out — over
// source, returning the canonical, width-bounded rendering. softWidth <= 0
// uses format.DefaultSoftWidth.
func Format(filename string, source []byte, softWidth int) (string, error) {
	program, stream, err := parseProgram(filename, source)
	if err != nil {
		return "", err
	}
	f := format.New(softWidth, stream.Comments())
	program.Format(f)
	return f.String(), nil
}

func parseProgram(filename string, source []byte) (cst.Program, *pstream.Stream, error) {
	pre, err := preprocess.New(filename, source).Preprocess()
	if err != nil {
		return cst.Program{}, nil, err
	}
	stream := pstream.New(pre)
	program, err := cst.ParseProgram(stream)
	if err != nil {
		return cst.Program{}, nil, err
	}
	return program, stream, nil
}

// ParseProgram parses source as a full compilation unit, for tooling that
// needs the CST rather than formatted text.
func ParseProgram(filename string, source []byte) (cst.Program, error) {
	program, _, err := parseProgram(filename, source)
	return program, err
}

// ParseType parses source as a standalone type, a concrete stand-in for
// spec.md's generic `parse<T>` entry point (Go cannot parameterize a
// function over "the CST root to parse" without an explicit per-root
// value, since a type parameter cannot carry its own parse function —
// documented as an Open-Question decision in the design ledger).
func ParseType(filename string, source []byte) (cst.Type, error) {
	pre, err := preprocess.New(filename, source).Preprocess()
	if err != nil {
		return nil, err
	}
	return cst.ParseType(pstream.New(pre))
}

// ParseExpr parses source as a standalone expression.
func ParseExpr(filename string, source []byte) (cst.Expr, error) {
	pre, err := preprocess.New(filename, source).Preprocess()
	if err != nil {
		return nil, err
	}
	return cst.ParseExpr(pstream.New(pre))
}
