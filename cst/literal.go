package cst

import (
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/parse"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

// Leaf wraps a single token verbatim. It is the primitive node: it never
// breaks on its own, and a container's "does it fit on one line" check
// (TrySingleLine) is what lets a run of Leaf children pack onto one line.
type Leaf struct {
	Tok token.Token
}

func (l Leaf) Span() Span                { return Span{Start: l.Tok.Start, End: l.Tok.End} }
func (l Leaf) Format(f *format.Formatter) { f.WriteToken(l.Tok) }

func leafOfKind(kind token.Kind, what string) parse.Func[Leaf] {
	return func(s *pstream.Stream) (Leaf, error) {
		t, err := parse.ExpectKind(s, kind, what)
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Tok: t}, nil
	}
}

// ParseVariable parses a VARIABLE token, e.g. `Foo`, `_`, `_Foo`.
func ParseVariable(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.VARIABLE, "variable")(s) }

// ParseAtom parses an ATOM token, e.g. `foo`, `'quoted atom'`.
func ParseAtom(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.ATOM, "atom")(s) }

// ParseInteger parses an INTEGER token.
func ParseInteger(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.INTEGER, "integer")(s) }

// ParseFloat parses a FLOAT token.
func ParseFloat(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.FLOAT, "float")(s) }

// ParseChar parses a CHAR token, e.g. `$a`.
func ParseChar(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.CHAR, "char")(s) }

// ParseString parses a STRING token.
func ParseString(s *pstream.Stream) (Leaf, error) { return leafOfKind(token.STRING, "string")(s) }

// ParseLiteral is the Literal alternative of BaseType/Expr: any of atom,
// integer, float, char, string, tried in that order.
func ParseLiteral(s *pstream.Stream) (Leaf, error) {
	return parse.Alternatives(s, ParseAtom, ParseInteger, ParseFloat, ParseChar, ParseString)
}
