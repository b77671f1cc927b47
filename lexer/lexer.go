// Package lexer implements the token source that feeds the preprocessor.
//
// This is the "external collaborator" spec.md treats as out of scope for the
// core pretty-printer; it exists here, hand-written in the same
// character-at-a-time style as the teacher's cue/scanner, so that the rest
// of the pipeline has something real to run against.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/efmtgo/efmt/token"
)

// Lexer scans source text into a sequence of token.Token values, tracking
// byte offset, line, and column as it goes.
type Lexer struct {
	filename string
	src      []byte

	ch       rune
	offset   int
	rdOffset int
	line     int
	lineHead int // offset of the first byte of the current line

	errorCount int
	firstError error
}

// New creates a Lexer over src. filename is attached to every position it
// reports; the comment map does not compare it, so comments from different
// files are not told apart there.
func New(filename string, src []byte) *Lexer {
	l := &Lexer{filename: filename, src: src, line: 1}
	l.next()
	if l.ch == bom {
		l.next()
	}
	return l
}

const bom = 0xFEFF

func (l *Lexer) next() {
	if l.rdOffset < len(l.src) {
		l.offset = l.rdOffset
		if l.ch == '\n' {
			l.line++
			l.lineHead = l.offset
		}
		r, w := rune(l.src[l.rdOffset]), 1
		switch {
		case r == 0:
			l.errorf(l.offset, "illegal NUL byte")
		case r >= utf8.RuneSelf:
			r, w = utf8.DecodeRune(l.src[l.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				l.errorf(l.offset, "illegal UTF-8 encoding")
			}
		}
		l.rdOffset += w
		l.ch = r
	} else {
		l.offset = len(l.src)
		if l.ch == '\n' {
			l.line++
			l.lineHead = l.offset
		}
		l.ch = -1
	}
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		File:   l.filename,
		Offset: l.offset,
		Line:   l.line,
		Column: l.offset - l.lineHead + 1,
	}
}

func (l *Lexer) errorf(offset int, format string, args ...interface{}) {
	l.errorCount++
	if l.firstError == nil {
		l.firstError = fmt.Errorf("%s: %s", l.pos(), fmt.Sprintf(format, args...))
	}
}

// ErrorCount reports how many illegal-byte errors were seen during the scan.
func (l *Lexer) ErrorCount() int { return l.errorCount }

// FirstError returns the first illegal-byte error encountered, if any. The
// preprocessor wraps it as efmterr.TokenizeError.
func (l *Lexer) FirstError() error { return l.firstError }

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

func (l *Lexer) skipSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.next()
	}
}

// Next scans and returns the next token, skipping nothing but whitespace;
// comments are returned as COMMENT tokens for the caller (the preprocessor)
// to route into its comment map.
func (l *Lexer) Next() token.Token {
	l.skipSpace()
	start := l.pos()

	switch ch := l.ch; {
	case ch < 0:
		return token.Token{Kind: token.EOF, Start: start, End: start}
	case ch == '%':
		return l.scanComment(start)
	case ch == '$':
		return l.scanChar(start)
	case ch == '"':
		return l.scanString(start)
	case ch == '\'':
		return l.scanQuotedAtom(start)
	case isDigit(ch):
		return l.scanNumber(start)
	case unicode.IsUpper(ch) || ch == '_':
		return l.scanVariable(start)
	case isLetter(ch):
		return l.scanAtomOrKeyword(start)
	default:
		return l.scanSymbol(start)
	}
}

func (l *Lexer) scanComment(start token.Position) token.Token {
	var b strings.Builder
	for l.ch != '\n' && l.ch >= 0 {
		b.WriteRune(l.ch)
		l.next()
	}
	return token.Token{Kind: token.COMMENT, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanChar(start token.Position) token.Token {
	var b strings.Builder
	b.WriteRune(l.ch) // '$'
	l.next()
	if l.ch == '\\' {
		b.WriteRune(l.ch)
		l.next()
	}
	b.WriteRune(l.ch)
	l.next()
	return token.Token{Kind: token.CHAR, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanString(start token.Position) token.Token {
	var b strings.Builder
	b.WriteRune(l.ch) // opening quote
	l.next()
	for l.ch != '"' && l.ch >= 0 {
		if l.ch == '\\' {
			b.WriteRune(l.ch)
			l.next()
		}
		b.WriteRune(l.ch)
		l.next()
	}
	b.WriteRune(l.ch) // closing quote
	l.next()
	return token.Token{Kind: token.STRING, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanQuotedAtom(start token.Position) token.Token {
	var b strings.Builder
	b.WriteRune(l.ch) // opening quote
	l.next()
	for l.ch != '\'' && l.ch >= 0 {
		if l.ch == '\\' {
			b.WriteRune(l.ch)
			l.next()
		}
		b.WriteRune(l.ch)
		l.next()
	}
	b.WriteRune(l.ch) // closing quote
	l.next()
	return token.Token{Kind: token.ATOM, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanNumber(start token.Position) token.Token {
	var b strings.Builder
	kind := token.INTEGER
	for isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.next()
	}
	if l.ch == '#' { // base#digits, e.g. 16#ff
		b.WriteRune(l.ch)
		l.next()
		for isLetter(l.ch) || isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.next()
		}
		return token.Token{Kind: token.INTEGER, Text: b.String(), Start: start, End: l.pos()}
	}
	if l.ch == '.' && isDigit(l.peek()) {
		kind = token.FLOAT
		b.WriteRune(l.ch)
		l.next()
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.next()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		kind = token.FLOAT
		b.WriteRune(l.ch)
		l.next()
		if l.ch == '+' || l.ch == '-' {
			b.WriteRune(l.ch)
			l.next()
		}
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.next()
		}
	}
	return token.Token{Kind: kind, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) peek() rune {
	if l.rdOffset < len(l.src) {
		r, _ := utf8.DecodeRune(l.src[l.rdOffset:])
		return r
	}
	return -1
}

func (l *Lexer) scanVariable(start token.Position) token.Token {
	var b strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.next()
	}
	return token.Token{Kind: token.VARIABLE, Text: b.String(), Start: start, End: l.pos()}
}

func (l *Lexer) scanAtomOrKeyword(start token.Position) token.Token {
	var b strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.next()
	}
	text := b.String()
	kind := token.ATOM
	if token.IsKeyword(text) {
		kind = token.KEYWORD
	}
	return token.Token{Kind: kind, Text: text, Start: start, End: l.pos()}
}

// multiCharSymbols is checked longest-first so that e.g. "=>" does not scan
// as "=" followed by ">".
var multiCharSymbols = []string{
	"=/=", "=:=", "...",
	"->", "=>", ":=", "::", "<<", ">>", "||", "..", "<-",
	"/=", "=<", ">=", "==",
}

func (l *Lexer) scanSymbol(start token.Position) token.Token {
	for _, sym := range multiCharSymbols {
		if l.lookingAt(sym) {
			for range sym {
				l.next()
			}
			return token.Token{Kind: token.SYMBOL, Text: sym, Start: start, End: l.pos()}
		}
	}
	ch := l.ch
	l.next()
	return token.Token{Kind: token.SYMBOL, Text: string(ch), Start: start, End: l.pos()}
}

func (l *Lexer) lookingAt(s string) bool {
	if l.offset+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.offset:l.offset+len(s)]) == s
}
