package cst

import (
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/parse"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

// Type is the root of the type sublanguage: `Type := UnionType`. It is an
// alias rather than a wrapper struct because the grammar adds nothing of
// its own at this layer.
type Type = Node

// ParseType parses a full type.
func ParseType(s *pstream.Stream) (Type, error) { return ParseUnionType(s) }

// UnionType is `NonUnionType (| NonUnionType)*`. Formatting is bespoke
// rather than routed through Items.FormatPacked: a union's first branch
// stays on the line that introduced the type (e.g. after `Foo :: `), and
// only later branches move to new lines anchored at the first branch's
// column, each trailing a `|`.
type UnionType struct {
	Branches []NonUnionType
	Pipes    []token.Token // len(Pipes) == len(Branches)-1
}

// NonUnionType is `BaseType | BinaryOpType`; both alternatives already
// implement Node directly, so no wrapper type is needed.
type NonUnionType = Node

func ParseUnionType(s *pstream.Stream) (UnionType, error) {
	first, err := ParseNonUnionType(s)
	if err != nil {
		return UnionType{}, err
	}
	u := UnionType{Branches: []NonUnionType{first}}
	for {
		pipe, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
			return parse.ExpectSymbol(s, "|")
		})
		if !ok {
			break
		}
		next, err := ParseNonUnionType(s)
		if err != nil {
			return UnionType{}, err
		}
		u.Pipes = append(u.Pipes, pipe)
		u.Branches = append(u.Branches, next)
	}
	return u, nil
}

func (u UnionType) Span() Span {
	return Span{Start: u.Branches[0].Span().Start, End: u.Branches[len(u.Branches)-1].Span().End}
}

func (u UnionType) Format(f *format.Formatter) {
	if len(u.Branches) == 1 {
		u.Branches[0].Format(f)
		return
	}
	rendered, fits := f.TrySingleLine(func() { u.formatInline(f) })
	if fits {
		f.Commit(rendered)
		return
	}
	anchor := f.Column()
	f.WithAnchor(anchor, func() {
		for i, b := range u.Branches {
			b.Format(f)
			if i < len(u.Pipes) {
				f.AddSpace()
				f.WriteToken(u.Pipes[i])
				f.AddNewline()
			}
		}
	})
}

func (u UnionType) formatInline(f *format.Formatter) {
	for i, b := range u.Branches {
		b.Format(f)
		if i < len(u.Pipes) {
			f.AddSpace()
			f.WriteToken(u.Pipes[i])
			f.AddSpace()
		}
	}
}

// arithmeticOps is the BinaryOp alternative: `* + - div rem band bor bxor
// bsl bsr ..`. ".." appears as a two-char symbol from the lexer.
var arithmeticOps = []string{"*", "+", "-", "div", "rem", "band", "bor", "bxor", "bsl", "bsr", ".."}

func parseArithmeticOp(s *pstream.Stream) (token.Token, error) {
	t := s.Peek()
	for _, op := range arithmeticOps {
		if t.Is(token.SYMBOL, op) || t.Is(token.KEYWORD, op) {
			return s.Next(), nil
		}
	}
	return token.Token{}, s.Fail(&errUnexpectedOp{t})
}

// BinaryOpType is `BaseType BinaryOp Type`, right-recursive on its Type
// operand (the grammar never requires left-recursion here: the operator
// always follows an already-parsed BaseType head).
type BinaryOpType = BinaryOp[Node, Type]

// ParseNonUnionType parses a BaseType head and, if a BinaryOp symbol
// follows, resumes into a BinaryOpType with the head as its left operand —
// this *is* the resume-parse pattern spec.md calls for, specialized to
// types.
func ParseNonUnionType(s *pstream.Stream) (NonUnionType, error) {
	head, err := ParseBaseType(s)
	if err != nil {
		return nil, err
	}
	return ResumeNonUnionType(s, head)
}

// ResumeNonUnionType is the resume-parse entry point: given an
// already-parsed head, peek for a trailing BinaryOp and fold it in.
func ResumeNonUnionType(s *pstream.Stream, head Node) (NonUnionType, error) {
	op, ok := parse.Opt(s, parseArithmeticOp)
	if !ok {
		return head, nil
	}
	right, err := ParseType(s)
	if err != nil {
		return nil, err
	}
	return BinaryOpType{Left: head, Op: op, Right: right, Indent: 0, Newline: NewlineIfTooLong}, nil
}

// ParseBaseType tries every BaseType alternative in grammar order.
func ParseBaseType(s *pstream.Stream) (Node, error) {
	return parse.Alternatives(s,
		parseMfargsFunc,
		parseListTypeFunc,
		parseTupleTypeFunc,
		parseMapTypeFunc,
		parseRecordTypeFunc,
		parseBitstringTypeFunc,
		parseFunctionTypeFunc,
		parseUnaryOpTypeFunc,
		parseParenthesizedTypeFunc,
		parseVariableOrAnnotatedFunc,
		parseLiteralTypeFunc,
	)
}

func parseLiteralTypeFunc(s *pstream.Stream) (Node, error) {
	l, err := ParseLiteral(s)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// AnnotatedVariableType is `Variable :: Type`. A bare Variable (no `::`)
// parses as a plain Leaf — both shapes share this one parser since both
// start by consuming a Variable token.
func parseVariableOrAnnotatedFunc(s *pstream.Stream) (Node, error) {
	v, err := ParseVariable(s)
	if err != nil {
		return nil, err
	}
	cc, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
		return parse.ExpectSymbol(s, "::")
	})
	if !ok {
		return v, nil
	}
	t, err := ParseType(s)
	if err != nil {
		return nil, err
	}
	return AnnotatedVariableType{Variable: v, Colons: cc, Type: t}, nil
}

// AnnotatedVariableType is `Variable :: Type`, space-separated: the `::`
// never breaks, so a long annotated type (e.g. a union) lays itself out
// starting from the column after `:: `.
type AnnotatedVariableType struct {
	Variable Leaf
	Colons   token.Token
	Type     Type
}

func (a AnnotatedVariableType) Span() Span {
	return Span{Start: a.Variable.Span().Start, End: a.Type.Span().End}
}

func (a AnnotatedVariableType) Format(f *format.Formatter) {
	a.Variable.Format(f)
	f.AddSpace()
	f.WriteToken(a.Colons)
	f.AddSpace()
	a.Type.Format(f)
}

// Parenthesized type: `( Type )`.
type ParenType = Parenthesized[Type]

func parseParenthesizedTypeFunc(s *pstream.Stream) (Node, error) {
	p, err := ParseParenthesized(s, ParseType)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UnaryOp is `+ - bnot`. UnaryOpType is `UnaryOp BaseType`.
type UnaryOpType struct {
	Op      token.Token
	Operand Node
}

func (u UnaryOpType) Span() Span { return Span{Start: u.Op.Start, End: u.Operand.Span().End} }
func (u UnaryOpType) Format(f *format.Formatter) {
	f.WriteToken(u.Op)
	u.Operand.Format(f)
}

var unaryOps = []string{"+", "-", "bnot"}

func parseUnaryOpTypeFunc(s *pstream.Stream) (Node, error) {
	t := s.Peek()
	matched := false
	for _, op := range unaryOps {
		if t.Is(token.SYMBOL, op) || t.Is(token.KEYWORD, op) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, s.Fail(&errUnexpectedOp{t})
	}
	s.Next()
	operand, err := ParseBaseType(s)
	if err != nil {
		return nil, err
	}
	return UnaryOpType{Op: t, Operand: operand}, nil
}

// Mfargs is `(Atom :)? Atom ( Type , ... )` — a possibly module-qualified
// named application, the shape shared by remote-call-like type forms
// (e.g. `lists:list(integer())`) and zero-arg type refs (`atom()`).
type Mfargs struct {
	Module Maybe[moduleQualifier]
	Name   Leaf
	Args   Items[Type]
}

type moduleQualifier struct {
	Name   Leaf
	Colon  token.Token
}

func (m moduleQualifier) Span() Span { return Span{Start: m.Name.Span().Start, End: m.Colon.End} }
func (m moduleQualifier) Format(f *format.Formatter) {
	m.Name.Format(f)
	f.WriteToken(m.Colon)
}

func (m Mfargs) Span() Span {
	start := m.Name.Span().Start
	if m.Module.Present {
		start = m.Module.Value.Span().Start
	}
	return Span{Start: start, End: m.Args.Span().End}
}

func (m Mfargs) Format(f *format.Formatter) {
	m.Module.Format(f)
	m.Name.Format(f)
	m.Args.FormatPacked(f, -1)
}

func parseMfargsFunc(s *pstream.Stream) (Node, error) {
	mod := ParseMaybe(s, func(s *pstream.Stream) (moduleQualifier, error) {
		name, err := ParseAtom(s)
		if err != nil {
			return moduleQualifier{}, err
		}
		colon, err := parse.ExpectSymbol(s, ":")
		if err != nil {
			return moduleQualifier{}, err
		}
		return moduleQualifier{Name: name, Colon: colon}, nil
	})
	name, err := ParseAtom(s)
	if err != nil {
		return nil, err
	}
	args, err := ParseItems(s, "(", ",", ")", ParseType)
	if err != nil {
		return nil, err
	}
	return Mfargs{Module: mod, Name: name, Args: args}, nil
}

// ListType is `[ (Type | ...) , ... ]`. A bare trailing `...` (meaning
// "nonempty list of the preceding element type") is represented as a
// synthetic Leaf element rather than a separate grammar rule, since it
// formats identically to any other packed element.
type ListType struct {
	Items Items[Type]
}

func (l ListType) Span() Span { return l.Items.Span() }
func (l ListType) Format(f *format.Formatter) { l.Items.FormatPacked(f, -1) }

func parseListTypeFunc(s *pstream.Stream) (Node, error) {
	items, err := ParseItems(s, "[", ",", "]", parseListElemOrEllipsis)
	if err != nil {
		return nil, err
	}
	return ListType{Items: items}, nil
}

func parseListElemOrEllipsis(s *pstream.Stream) (Type, error) {
	if t := s.Peek(); t.Is(token.SYMBOL, "...") {
		s.Next()
		return Leaf{Tok: t}, nil
	}
	return ParseType(s)
}

// TupleType is `{ Type , ... }`.
type TupleType struct{ Items Items[Type] }

func (t TupleType) Span() Span               { return t.Items.Span() }
func (t TupleType) Format(f *format.Formatter) { t.Items.FormatPacked(f, -1) }

func parseTupleTypeFunc(s *pstream.Stream) (Node, error) {
	items, err := ParseItems(s, "{", ",", "}", ParseType)
	if err != nil {
		return nil, err
	}
	return TupleType{Items: items}, nil
}

// MapType is `# { Type (:= | =>) Type , ... }`.
type MapType struct {
	Hash  token.Token
	Items Items[mapTypeEntry]
}

type mapTypeEntry struct {
	Key Type
	Op  token.Token // ":=" or "=>"
	Val Type
}

func (e mapTypeEntry) Span() Span { return Span{Start: e.Key.Span().Start, End: e.Val.Span().End} }

// Format reuses the `::`-style break policy (offset 4, breaking only on
// overflow): an entry long enough to overflow the soft width on its own
// breaks after its ":="/"=>" operator instead of running past the width.
func (e mapTypeEntry) Format(f *format.Formatter) {
	BinaryOp[Node, Node]{Left: e.Key, Op: e.Op, Right: e.Val, Indent: 4, Newline: NewlineIfTooLong}.Format(f)
}

func (m MapType) Span() Span { return Span{Start: m.Hash.Start, End: m.Items.Span().End} }
func (m MapType) Format(f *format.Formatter) {
	f.WriteToken(m.Hash)
	m.Items.FormatPackedClosingOutdented(f, -1)
}

func parseMapTypeFunc(s *pstream.Stream) (Node, error) {
	hash, err := parse.ExpectSymbol(s, "#")
	if err != nil {
		return nil, err
	}
	items, err := ParseItems(s, "{", ",", "}", func(s *pstream.Stream) (mapTypeEntry, error) {
		key, err := ParseType(s)
		if err != nil {
			return mapTypeEntry{}, err
		}
		op, err := parse.Alternatives(s,
			func(s *pstream.Stream) (token.Token, error) { return parse.ExpectSymbol(s, ":=") },
			func(s *pstream.Stream) (token.Token, error) { return parse.ExpectSymbol(s, "=>") },
		)
		if err != nil {
			return mapTypeEntry{}, err
		}
		val, err := ParseType(s)
		if err != nil {
			return mapTypeEntry{}, err
		}
		return mapTypeEntry{Key: key, Op: op, Val: val}, nil
	})
	if err != nil {
		return nil, err
	}
	return MapType{Hash: hash, Items: items}, nil
}

// RecordType is `# Atom { (Atom :: Type) , ... }`.
type RecordType struct {
	Hash   token.Token
	Name   Leaf
	Fields Items[recordTypeField]
}

type recordTypeField struct {
	Name   Leaf
	Colons token.Token
	Type   Type
}

func (f recordTypeField) Span() Span { return Span{Start: f.Name.Span().Start, End: f.Type.Span().End} }
func (fld recordTypeField) Format(f *format.Formatter) {
	BinaryOp[Node, Node]{Left: fld.Name, Op: fld.Colons, Right: fld.Type, Indent: 4, Newline: NewlineIfTooLong}.Format(f)
}

func (r RecordType) Span() Span { return Span{Start: r.Hash.Start, End: r.Fields.Span().End} }
func (r RecordType) Format(f *format.Formatter) {
	f.WriteToken(r.Hash)
	r.Name.Format(f)
	r.Fields.FormatPacked(f, -1)
}

func parseRecordTypeFunc(s *pstream.Stream) (Node, error) {
	hash, err := parse.ExpectSymbol(s, "#")
	if err != nil {
		return nil, err
	}
	name, err := ParseAtom(s)
	if err != nil {
		return nil, err
	}
	fields, err := ParseItems(s, "{", ",", "}", func(s *pstream.Stream) (recordTypeField, error) {
		fname, err := ParseAtom(s)
		if err != nil {
			return recordTypeField{}, err
		}
		colons, err := parse.ExpectSymbol(s, "::")
		if err != nil {
			return recordTypeField{}, err
		}
		typ, err := ParseType(s)
		if err != nil {
			return recordTypeField{}, err
		}
		return recordTypeField{Name: fname, Colons: colons, Type: typ}, nil
	})
	if err != nil {
		return nil, err
	}
	return RecordType{Hash: hash, Name: name, Fields: fields}, nil
}

// BitstringType is `<< _:SizeType? , _:_*UnitType? >>`.
type BitstringType struct {
	Open    token.Token
	Segment Maybe[bitstringSizeSpec]
	Comma   Maybe[Leaf]
	Unit    Maybe[bitstringUnitSpec]
	Close   token.Token
}

type bitstringSizeSpec struct {
	Underscore token.Token
	Colon      token.Token
	Size       Type
}

func (b bitstringSizeSpec) Span() Span { return Span{Start: b.Underscore.Start, End: b.Size.Span().End} }
func (b bitstringSizeSpec) Format(f *format.Formatter) {
	f.WriteToken(b.Underscore)
	f.WriteToken(b.Colon)
	b.Size.Format(f)
}

type bitstringUnitSpec struct {
	Underscore token.Token
	Colon      token.Token
	Star       token.Token
	Unit       Type
}

func (b bitstringUnitSpec) Span() Span { return Span{Start: b.Underscore.Start, End: b.Unit.Span().End} }
func (b bitstringUnitSpec) Format(f *format.Formatter) {
	f.WriteToken(b.Underscore)
	f.WriteToken(b.Colon)
	f.WriteToken(b.Star)
	b.Unit.Format(f)
}

func (b BitstringType) Span() Span { return Span{Start: b.Open.Start, End: b.Close.End} }
func (b BitstringType) Format(f *format.Formatter) {
	f.WriteToken(b.Open)
	b.Segment.Format(f)
	if b.Comma.Present {
		f.WriteToken(b.Comma.Value.Tok)
		f.AddSpace()
	}
	b.Unit.Format(f)
	f.WriteToken(b.Close)
}

func parseBitstringTypeFunc(s *pstream.Stream) (Node, error) {
	open, err := parse.ExpectSymbol(s, "<<")
	if err != nil {
		return nil, err
	}
	segment := ParseMaybe(s, func(s *pstream.Stream) (bitstringSizeSpec, error) {
		u := s.Peek()
		if !u.Is(token.VARIABLE, "_") {
			return bitstringSizeSpec{}, s.Fail(&errUnexpectedOp{u})
		}
		s.Next()
		c, err := parse.ExpectSymbol(s, ":")
		if err != nil {
			return bitstringSizeSpec{}, err
		}
		sz, err := ParseType(s)
		if err != nil {
			return bitstringSizeSpec{}, err
		}
		return bitstringSizeSpec{Underscore: u, Colon: c, Size: sz}, nil
	})
	comma := Maybe[Leaf]{}
	if t, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) { return parse.ExpectSymbol(s, ",") }); ok {
		comma = Maybe[Leaf]{Value: Leaf{Tok: t}, Present: true}
	}
	unit := ParseMaybe(s, func(s *pstream.Stream) (bitstringUnitSpec, error) {
		u := s.Peek()
		if !u.Is(token.VARIABLE, "_") {
			return bitstringUnitSpec{}, s.Fail(&errUnexpectedOp{u})
		}
		s.Next()
		c, err := parse.ExpectSymbol(s, ":")
		if err != nil {
			return bitstringUnitSpec{}, err
		}
		star, err := parse.ExpectSymbol(s, "*")
		if err != nil {
			return bitstringUnitSpec{}, err
		}
		ut, err := ParseType(s)
		if err != nil {
			return bitstringUnitSpec{}, err
		}
		return bitstringUnitSpec{Underscore: u, Colon: c, Star: star, Unit: ut}, nil
	})
	close, err := parse.ExpectSymbol(s, ">>")
	if err != nil {
		return nil, err
	}
	return BitstringType{Open: open, Segment: segment, Comma: comma, Unit: unit, Close: close}, nil
}

// FunctionType is `fun ( (Params -> ReturnType)? )`. Params is either a
// parenthesized comma list of Types or `(...)` meaning "any arity, any
// types". The `->` delimiter uses offset 8 and breaks only if
// the whole form would otherwise overflow or already contains a break
// (spec.md §4.4's "Function-type return" policy).
type FunctionType struct {
	Fun  token.Token
	Open token.Token
	Sig  Maybe[functionSig]
	Close token.Token
}

type functionSig struct {
	Params Node // Items[Type] or a Parenthesized `(...)`
	Arrow  token.Token
	Return Type
}

func (sig functionSig) Span() Span { return Span{Start: sig.Params.Span().Start, End: sig.Return.Span().End} }
func (sig functionSig) Format(f *format.Formatter) {
	BinaryOp[Node, Node]{Left: sig.Params, Op: sig.Arrow, Right: sig.Return, Indent: 8, Newline: NewlineIfTooLongOrMultiline}.Format(f)
}

func (ft FunctionType) Span() Span { return Span{Start: ft.Fun.Start, End: ft.Close.End} }
func (ft FunctionType) Format(f *format.Formatter) {
	f.WriteToken(ft.Fun)
	f.WriteToken(ft.Open)
	ft.Sig.Format(f)
	f.WriteToken(ft.Close)
}

func parseFunctionTypeFunc(s *pstream.Stream) (Node, error) {
	funTok, err := parse.ExpectKeyword(s, "fun")
	if err != nil {
		return nil, err
	}
	open, err := parse.ExpectSymbol(s, "(")
	if err != nil {
		return nil, err
	}
	sig := ParseMaybe(s, parseFunctionSig)
	close, err := parse.ExpectSymbol(s, ")")
	if err != nil {
		return nil, err
	}
	return FunctionType{Fun: funTok, Open: open, Sig: sig, Close: close}, nil
}

func parseFunctionSig(s *pstream.Stream) (functionSig, error) {
	var params Node
	if t := s.Peek(); t.Is(token.SYMBOL, "(") {
		inner, ok := parse.Opt(s, func(s *pstream.Stream) (Node, error) {
			return ParseParenthesizedEllipsis(s)
		})
		if ok {
			params = inner
		} else {
			items, err := ParseItems(s, "(", ",", ")", ParseType)
			if err != nil {
				return functionSig{}, err
			}
			params = items
		}
	} else {
		return functionSig{}, s.Fail(&errUnexpectedOp{t})
	}
	arrow, err := parse.ExpectSymbol(s, "->")
	if err != nil {
		return functionSig{}, err
	}
	ret, err := ParseType(s)
	if err != nil {
		return functionSig{}, err
	}
	return functionSig{Params: params, Arrow: arrow, Return: ret}, nil
}

// ParseParenthesizedEllipsis parses the `(...)` "any arity" params shape.
func ParseParenthesizedEllipsis(s *pstream.Stream) (Node, error) {
	open, err := parse.ExpectSymbol(s, "(")
	if err != nil {
		return nil, err
	}
	dots, err := parse.ExpectSymbol(s, "...")
	if err != nil {
		return nil, err
	}
	close, err := parse.ExpectSymbol(s, ")")
	if err != nil {
		return nil, err
	}
	return Parenthesized[Node]{Open: open, Inner: Leaf{Tok: dots}, Close: close}, nil
}

type errUnexpectedOp struct{ got token.Token }

func (e *errUnexpectedOp) Error() string { return "expected operator, got " + e.got.Text }
