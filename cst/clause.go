package cst

import (
	"github.com/efmtgo/efmt/format"
	"github.com/efmtgo/efmt/parse"
	"github.com/efmtgo/efmt/pstream"
	"github.com/efmtgo/efmt/token"
)

// Guard is `Expr (, Expr)*` — comma binds tighter than the semicolon that
// separates Guards within a GuardSeq.
type Guard struct{ Items Items[Expr] }

func (g Guard) Span() Span { return g.Items.Span() }
func (g Guard) Format(f *format.Formatter) {
	for i, e := range g.Items.Elems {
		if i > 0 {
			f.WriteToken(comma())
			f.AddSpace()
		}
		e.Format(f)
	}
}

func parseGuard(s *pstream.Stream) (Guard, error) {
	items, err := ParseItems(s, "", ",", "", ParseExpr)
	if err != nil {
		return Guard{}, err
	}
	return Guard{Items: items}, nil
}

// GuardSeq is `Guard (; Guard)*`.
type GuardSeq struct{ Items Items[Guard] }

func (g GuardSeq) Span() Span { return g.Items.Span() }
func (g GuardSeq) Format(f *format.Formatter) {
	for i, guard := range g.Items.Elems {
		if i > 0 {
			f.WriteToken(token.Token{Kind: token.SYMBOL, Text: ";"})
			f.AddSpace()
		}
		guard.Format(f)
	}
}

func parseGuardSeq(s *pstream.Stream) (GuardSeq, error) {
	items, err := ParseItems(s, "", ";", "", parseGuard)
	if err != nil {
		return GuardSeq{}, err
	}
	return GuardSeq{Items: items}, nil
}

// ClauseHead is `(Name)? ArgShape (when GuardSeq)? ->`. ArgShape is
// whichever of "no args" (if-clauses), "a single pattern" (case clauses),
// or "a parenthesized pattern list" (function clauses) the caller passes
// in — the head's formatting is identical across all three, so one struct
// covers them.
type ClauseHead struct {
	Name  Maybe[Leaf]
	Args  Maybe[Node]
	When  Maybe[Leaf]
	Guard Maybe[GuardSeq]
	Arrow token.Token
}

func (h ClauseHead) Span() Span {
	start := h.Arrow.Start
	switch {
	case h.Name.Present:
		start = h.Name.Value.Span().Start
	case h.Args.Present:
		start = h.Args.Value.Span().Start
	}
	return Span{Start: start, End: h.Arrow.End}
}

func (h ClauseHead) Format(f *format.Formatter) {
	h.Name.Format(f)
	h.Args.Format(f)
	if h.Guard.Present {
		f.AddSpace()
		f.WriteToken(h.When.Value.Tok)
		f.AddSpace()
		h.Guard.Value.Format(f)
	}
	f.AddSpace()
	f.WriteToken(h.Arrow)
}

// Clause is a ClauseHead plus a comma-separated body of expressions.
type Clause struct {
	Head ClauseHead
	Body Items[Expr]
}

func (c Clause) Span() Span { return Span{Start: c.Head.Span().Start, End: c.Body.Span().End} }
func (c Clause) Format(f *format.Formatter) {
	c.Head.Format(f)
	f.WithIndent(4, func() {
		f.AddNewline()
		for i, e := range c.Body.Elems {
			if i > 0 {
				f.WriteToken(comma())
				f.AddNewline()
			}
			e.Format(f)
		}
	})
}

func parseClauseBody(s *pstream.Stream) (Items[Expr], error) {
	return ParseItems(s, "", ",", "", ParseExpr)
}

func parseOptionalGuard(s *pstream.Stream) (Maybe[Leaf], Maybe[GuardSeq], error) {
	when, ok := parse.Opt(s, func(s *pstream.Stream) (token.Token, error) {
		return parse.ExpectKeyword(s, "when")
	})
	if !ok {
		return Maybe[Leaf]{}, Maybe[GuardSeq]{}, nil
	}
	seq, err := parseGuardSeq(s)
	if err != nil {
		return Maybe[Leaf]{}, Maybe[GuardSeq]{}, err
	}
	return Maybe[Leaf]{Value: Leaf{Tok: when}, Present: true}, Maybe[GuardSeq]{Value: seq, Present: true}, nil
}

// parseFunClause is a function/anonymous-fun clause: `(Name)? ( Pattern ,
// ... ) (when GuardSeq)? -> Body`.
func parseFunClause(s *pstream.Stream) (Clause, error) {
	name := ParseMaybe(s, ParseAtom)
	args, err := ParseItems(s, "(", ",", ")", ParseExpr)
	if err != nil {
		return Clause{}, err
	}
	when, guard, err := parseOptionalGuard(s)
	if err != nil {
		return Clause{}, err
	}
	arrow, err := parse.ExpectSymbol(s, "->")
	if err != nil {
		return Clause{}, err
	}
	body, err := parseClauseBody(s)
	if err != nil {
		return Clause{}, err
	}
	return Clause{
		Head: ClauseHead{Name: name, Args: Maybe[Node]{Value: args, Present: true}, When: when, Guard: guard, Arrow: arrow},
		Body: body,
	}, nil
}

// parseCaseClause is `Pattern (when GuardSeq)? -> Body`.
func parseCaseClause(s *pstream.Stream) (Clause, error) {
	pat, err := ParseExpr(s)
	if err != nil {
		return Clause{}, err
	}
	when, guard, err := parseOptionalGuard(s)
	if err != nil {
		return Clause{}, err
	}
	arrow, err := parse.ExpectSymbol(s, "->")
	if err != nil {
		return Clause{}, err
	}
	body, err := parseClauseBody(s)
	if err != nil {
		return Clause{}, err
	}
	return Clause{
		Head: ClauseHead{Args: Maybe[Node]{Value: pat, Present: true}, When: when, Guard: guard, Arrow: arrow},
		Body: body,
	}, nil
}

// parseIfClause is `GuardSeq -> Body` — if-clauses have no pattern and the
// guard is mandatory rather than introduced by `when`.
func parseIfClause(s *pstream.Stream) (Clause, error) {
	guard, err := parseGuardSeq(s)
	if err != nil {
		return Clause{}, err
	}
	arrow, err := parse.ExpectSymbol(s, "->")
	if err != nil {
		return Clause{}, err
	}
	body, err := parseClauseBody(s)
	if err != nil {
		return Clause{}, err
	}
	return Clause{
		Head: ClauseHead{Guard: Maybe[GuardSeq]{Value: guard, Present: true}, Arrow: arrow},
		Body: body,
	}, nil
}
