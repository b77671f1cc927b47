// Package preprocess expands textual macros (`?NAME`, `?NAME(Args)`,
// `-define(...)`) into a flat token stream, the way spec.md §4.1 describes,
// while recording where comments and original macro-call sites were so the
// formatter can restore them later.
package preprocess

import (
	"github.com/google/uuid"

	"github.com/efmtgo/efmt/efmterr"
	"github.com/efmtgo/efmt/lexer"
	"github.com/efmtgo/efmt/token"
)

// MacroDefine is a registered `-define` entry: an optional parameter list
// plus the token list it expands to.
type MacroDefine struct {
	Name        string
	Params      []string // nil means "no parameter list" (?NAME, not ?NAME(...))
	Replacement []token.Token
}

// Predefined seeds the macro table with the names every Erlang-like source
// file can reference without a `-define`. Their replacements are sentinel
// atoms: this core performs no semantic evaluation, so the text these
// expand to is never inspected, only reproduced.
func Predefined() map[string]MacroDefine {
	names := []string{
		"MODULE", "MODULE_STRING", "FILE", "LINE", "MACHINE",
		"FUNCTION_NAME", "FUNCTION_ARITY", "OTP_RELEASE",
	}
	out := make(map[string]MacroDefine, len(names))
	for _, name := range names {
		out[name] = MacroDefine{
			Name: name,
			Replacement: []token.Token{
				{Kind: token.ATOM, Text: "dummy"},
			},
		}
	}
	return out
}

// Span is a half-open source range, used for macro-call sites.
type Span struct {
	Start token.Position
	End   token.Position
}

// MacroCall records one `?NAME(...)` invocation's original source span and
// the range of expanded tokens it produced, so formatting code (or a
// future LSP) can map back from the expanded form to the call site.
type MacroCall struct {
	ID       uuid.UUID
	Name     string
	CallSpan Span
	TokenLo  int // index into Preprocessed.Tokens, inclusive
	TokenHi  int // exclusive
}

// CommentMap is a position-sorted record of every comment in the primary
// file. Comments are not part of the CST; the formatter re-injects them by
// position (spec.md §3).
type CommentMap struct {
	ordered []token.Token
}

// Add inserts a comment token, keeping the map sorted by start position.
func (m *CommentMap) Add(c token.Token) {
	i := 0
	for i < len(m.ordered) && m.ordered[i].Start.Offset < c.Start.Offset {
		i++
	}
	m.ordered = append(m.ordered, token.Token{})
	copy(m.ordered[i+1:], m.ordered[i:])
	m.ordered[i] = c
}

// All returns every comment in increasing position order.
func (m *CommentMap) All() []token.Token {
	return m.ordered
}

// Pending returns (and consumes) every comment whose start position is
// strictly before pos, in order. The formatter calls this just before
// emitting each token.
func (m *CommentMap) Pending(pos token.Position) []token.Token {
	i := 0
	for i < len(m.ordered) && m.ordered[i].Start.Offset < pos.Offset {
		i++
	}
	out := m.ordered[:i:i]
	m.ordered = m.ordered[i:]
	return out
}

// Remaining reports whether any comments remain unflushed (used after
// formatting to flush trailing comments at end of file).
func (m *CommentMap) Remaining() bool { return len(m.ordered) > 0 }

// Preprocessed is the output of a preprocessing pass: the expanded token
// vector plus the side tables the formatter and diagnostics need.
type Preprocessed struct {
	File       string
	Tokens     []token.Token
	Comments   *CommentMap
	MacroCalls []MacroCall
}

// tokenSource is the minimal pull interface macro expansion needs. It is
// implemented once over the live lexer (for the primary file) and once
// over a plain token slice (for re-scanning a macro's replacement list so
// that macros nested inside other macros still expand, per spec.md's
// "substituted tokens are re-scanned" ordering rule).
type tokenSource interface {
	next() (token.Token, error)
	pushback(token.Token)
}

type sliceSource struct {
	tokens []token.Token
	i      int
	buf    *token.Token
}

func (s *sliceSource) next() (token.Token, error) {
	if s.buf != nil {
		t := *s.buf
		s.buf = nil
		return t, nil
	}
	if s.i >= len(s.tokens) {
		return token.Token{Kind: token.EOF}, nil
	}
	t := s.tokens[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) pushback(t token.Token) { s.buf = &t }

// lexSource adapts a lexer.Lexer to tokenSource, routing comments from the
// primary file into a CommentMap instead of returning them.
type lexSource struct {
	lex      *lexer.Lexer
	filename string
	comments *CommentMap
	buf      *token.Token
}

func (s *lexSource) next() (token.Token, error) {
	if s.buf != nil {
		t := *s.buf
		s.buf = nil
		return t, nil
	}
	for {
		t := s.lex.Next()
		if err := s.lex.FirstError(); err != nil {
			return token.Token{}, &efmterr.TokenizeError{Pos: t.Start, Inner: err}
		}
		if t.Kind == token.COMMENT {
			s.comments.Add(t)
			continue
		}
		return t, nil
	}
}

func (s *lexSource) pushback(t token.Token) { s.buf = &t }

// Preprocessor runs the expansion algorithm over one file.
type Preprocessor struct {
	src     *lexSource
	defines map[string]MacroDefine
	out     Preprocessed
}

// New creates a Preprocessor over filename's source text.
func New(filename string, src []byte) *Preprocessor {
	comments := &CommentMap{}
	return &Preprocessor{
		src: &lexSource{
			lex:      lexer.New(filename, src),
			filename: filename,
			comments: comments,
		},
		defines: Predefined(),
		out: Preprocessed{
			File:     filename,
			Comments: comments,
		},
	}
}

// Preprocess runs the full algorithm: scans the primary file left to
// right, expanding `?NAME` macro calls and consuming `-define` directives,
// and returns the expanded token vector plus comment/macro-call maps.
func (p *Preprocessor) Preprocess() (*Preprocessed, error) {
	for {
		tok, err := p.src.next()
		if err != nil {
			return nil, err
		}
		if tok.IsEOF() {
			return &p.out, nil
		}
		switch {
		case tok.Is(token.SYMBOL, "?"):
			if err := p.expandMacroCall(p.src, &p.out.Tokens, &p.out.MacroCalls, tok.Start); err != nil {
				return nil, err
			}
		case tok.Is(token.SYMBOL, "-"):
			if err := p.handleHyphen(tok); err != nil {
				return nil, err
			}
		default:
			p.out.Tokens = append(p.out.Tokens, tok)
		}
	}
}

// handleHyphen peeks one token after a `-`; if it names a directive it is
// consumed in full (and, for `-define`, registered). Otherwise the hyphen
// is emitted as an ordinary token and the peeked token is pushed back so
// the main loop reprocesses it normally (it may itself be a macro call).
func (p *Preprocessor) handleHyphen(hyphen token.Token) error {
	next, err := p.src.next()
	if err != nil {
		return err
	}
	if next.Kind == token.ATOM {
		switch next.Text {
		case "define":
			define, err := p.parseDefine()
			if err != nil {
				return err
			}
			p.defines[define.Name] = define
			return nil
		case "include", "include_lib":
			return &efmterr.UnsupportedDirective{Name: next.Text, Pos: hyphen.Start}
		}
	}
	p.out.Tokens = append(p.out.Tokens, hyphen)
	p.src.pushback(next)
	return nil
}

// parseDefine parses `(name, params?, replacement)` up to the terminating
// `.`, per spec.md §4.1.
func (p *Preprocessor) parseDefine() (MacroDefine, error) {
	if _, err := p.expectSymbol(p.src, "("); err != nil {
		return MacroDefine{}, err
	}
	nameTok, err := p.src.next()
	if err != nil {
		return MacroDefine{}, err
	}
	if nameTok.Kind != token.ATOM && nameTok.Kind != token.VARIABLE {
		return MacroDefine{}, &efmterr.UnexpectedToken{Expected: "macro name", Got: nameTok.Text, Pos: nameTok.Start}
	}

	sep, err := p.src.next()
	if err != nil {
		return MacroDefine{}, err
	}
	var params []string
	switch {
	case sep.Is(token.SYMBOL, ","):
		params = nil
	case sep.Is(token.SYMBOL, "("):
		params = []string{}
		for {
			param, err := p.src.next()
			if err != nil {
				return MacroDefine{}, err
			}
			if param.Kind != token.VARIABLE {
				p.src.pushback(param)
				break
			}
			params = append(params, param.Text)
			comma, err := p.src.next()
			if err != nil {
				return MacroDefine{}, err
			}
			if !comma.Is(token.SYMBOL, ",") {
				p.src.pushback(comma)
				break
			}
		}
		if _, err := p.expectSymbol(p.src, ")"); err != nil {
			return MacroDefine{}, err
		}
		if _, err := p.expectSymbol(p.src, ","); err != nil {
			return MacroDefine{}, err
		}
	default:
		return MacroDefine{}, &efmterr.UnexpectedToken{Expected: "',' or '('", Got: sep.Text, Pos: sep.Start}
	}

	var replacement []token.Token
	level := 0
	for {
		tok, err := p.src.next()
		if err != nil {
			return MacroDefine{}, err
		}
		if tok.IsEOF() {
			return MacroDefine{}, &efmterr.UnexpectedEOF{Pos: tok.Start}
		}
		if tok.Is(token.SYMBOL, "(") {
			level++
		} else if tok.Is(token.SYMBOL, ")") {
			if level == 0 {
				break
			}
			level--
		}
		replacement = append(replacement, tok)
	}
	if _, err := p.expectSymbol(p.src, "."); err != nil {
		return MacroDefine{}, err
	}
	return MacroDefine{Name: nameTok.Text, Params: params, Replacement: replacement}, nil
}

func (p *Preprocessor) expectSymbol(src tokenSource, text string) (token.Token, error) {
	tok, err := src.next()
	if err != nil {
		return token.Token{}, err
	}
	if !tok.Is(token.SYMBOL, text) {
		return token.Token{}, &efmterr.UnexpectedToken{Expected: text, Got: tok.Text, Pos: tok.Start}
	}
	return tok, nil
}

// expandMacroCall reads a macro name (and, for parameterized macros, its
// argument list), looks up the define, substitutes parameters, and
// recursively re-scans the resulting tokens (so nested macro calls expand
// too) before appending them to out and recording a MacroCall region.
func (p *Preprocessor) expandMacroCall(src tokenSource, out *[]token.Token, calls *[]MacroCall, callStart token.Position) error {
	nameTok, err := src.next()
	if err != nil {
		return err
	}
	if nameTok.IsEOF() {
		return &efmterr.UnexpectedEOF{Pos: nameTok.Start}
	}
	if nameTok.Kind != token.ATOM && nameTok.Kind != token.VARIABLE {
		return &efmterr.UnexpectedToken{Expected: "macro name", Got: nameTok.Text, Pos: nameTok.Start}
	}
	define, ok := p.defines[nameTok.Text]
	if !ok {
		return &efmterr.UndefinedMacro{Name: nameTok.Text, Pos: nameTok.Start}
	}

	callEnd := nameTok.End
	var raw []token.Token
	if define.Params != nil {
		if _, err := p.expectSymbol(src, "("); err != nil {
			return err
		}
		args := make(map[string][]token.Token, len(define.Params))
		for i, param := range define.Params {
			arg, err := p.scanMacroArg(src)
			if err != nil {
				return err
			}
			args[param] = arg
			if i+1 < len(define.Params) {
				if _, err := p.expectSymbol(src, ","); err != nil {
					return err
				}
			}
		}
		closeTok, err := p.expectSymbol(src, ")")
		if err != nil {
			return err
		}
		callEnd = closeTok.End
		raw = substituteParams(define.Replacement, args)
	} else {
		raw = append([]token.Token(nil), define.Replacement...)
	}

	expanded, err := p.rescan(raw)
	if err != nil {
		return err
	}

	lo := len(*out)
	*out = append(*out, expanded...)
	*calls = append(*calls, MacroCall{
		ID:       uuid.New(),
		Name:     nameTok.Text,
		CallSpan: Span{Start: callStart, End: callEnd},
		TokenLo:  lo,
		TokenHi:  len(*out),
	})
	return nil
}

// rescan re-runs macro expansion over an already-substituted token list, so
// that a macro invoked inside another macro's replacement still expands.
func (p *Preprocessor) rescan(tokens []token.Token) ([]token.Token, error) {
	src := &sliceSource{tokens: tokens}
	var out []token.Token
	var calls []MacroCall // discarded: nested calls are attributed to the outer call's span
	for {
		tok, err := src.next()
		if err != nil {
			return nil, err
		}
		if tok.IsEOF() {
			return out, nil
		}
		if tok.Is(token.SYMBOL, "?") {
			if err := p.expandMacroCall(src, &out, &calls, tok.Start); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, tok)
	}
}

func substituteParams(replacement []token.Token, args map[string][]token.Token) []token.Token {
	var out []token.Token
	for _, tok := range replacement {
		if tok.Kind == token.VARIABLE {
			if arg, ok := args[tok.Text]; ok {
				out = append(out, arg...)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// blockKeywords is the set of keywords that open a nesting level during
// macro-argument scanning. spec.md §9's Open Questions flags the source
// algorithm's keyword check as written as a conjunction of five mutually
// exclusive comparisons (logically always false); the intended, and here
// implemented, semantics is a disjunction.
var blockKeywords = map[string]bool{
	"begin": true, "try": true, "fun": true, "case": true, "if": true,
}

// scanMacroArg reads one comma/close-paren-terminated macro argument using
// balanced-delimiter scanning, per spec.md §4.1.
func (p *Preprocessor) scanMacroArg(src tokenSource) ([]token.Token, error) {
	var paren, brace, square, block int
	topLevel := func() bool { return paren+brace+square+block == 0 }

	var out []token.Token
	for {
		tok, err := src.next()
		if err != nil {
			return nil, err
		}
		if tok.IsEOF() {
			return nil, &efmterr.UnexpectedEOF{Pos: tok.Start}
		}
		switch {
		case tok.Is(token.SYMBOL, ",") && topLevel():
			src.pushback(tok)
			return out, nil
		case tok.Is(token.SYMBOL, ")") && topLevel():
			src.pushback(tok)
			return out, nil
		case tok.Is(token.SYMBOL, "."):
			return nil, &efmterr.MalformedMacroArg{Pos: tok.Start}
		case tok.Is(token.SYMBOL, "("):
			paren++
		case tok.Is(token.SYMBOL, ")"):
			if paren == 0 {
				return nil, &efmterr.MalformedMacroArg{Pos: tok.Start}
			}
			paren--
		case tok.Is(token.SYMBOL, "{"):
			brace++
		case tok.Is(token.SYMBOL, "}"):
			if brace == 0 {
				return nil, &efmterr.MalformedMacroArg{Pos: tok.Start}
			}
			brace--
		case tok.Is(token.SYMBOL, "["):
			square++
		case tok.Is(token.SYMBOL, "]"):
			if square == 0 {
				return nil, &efmterr.MalformedMacroArg{Pos: tok.Start}
			}
			square--
		case tok.Kind == token.KEYWORD && blockKeywords[tok.Text]:
			block++
		case tok.Is(token.KEYWORD, "end"):
			if block == 0 {
				return nil, &efmterr.MalformedMacroArg{Pos: tok.Start}
			}
			block--
		}
		out = append(out, tok)
	}
}
