package token

// Kind tags the lexical class of a Token. Whitespace is never tokenized;
// comments are tokenized (so the lexer can report their position and text)
// but are filtered out of the parser's view by the preprocessor and kept
// only in the comment map.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	ATOM     // foo, 'quoted atom'
	VARIABLE // Foo, _Foo, _
	INTEGER  // 123, 16#ff
	FLOAT    // 1.0, 1.0e10
	CHAR     // $a
	STRING   // "text"
	KEYWORD  // fun, case, of, end, if, when, begin, try, div, rem, band, bor, bxor, bsl, bsr, bnot
	SYMBOL   // punctuation and operators: ( ) { } [ ] , . ; : :: | -> => := * + - etc.
	COMMENT  // % to end of line
)

func (k Kind) String() string {
	switch k {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case ATOM:
		return "ATOM"
	case VARIABLE:
		return "VARIABLE"
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case CHAR:
		return "CHAR"
	case STRING:
		return "STRING"
	case KEYWORD:
		return "KEYWORD"
	case SYMBOL:
		return "SYMBOL"
	case COMMENT:
		return "COMMENT"
	default:
		return "UNKNOWN"
	}
}

// Token is a single tagged lexeme with its source span. Text is the exact
// source text for the token, including quotes/escapes for literals — the
// formatter reproduces it verbatim rather than re-rendering a parsed value,
// which is what makes bit-for-bit token preservation (spec invariant 2)
// trivial to satisfy.
type Token struct {
	Kind  Kind
	Text  string
	Start Position
	End   Position
}

// Is reports whether t has the given kind and the given text. Used
// pervasively by the Expect protocol instead of comparing Kind and Text
// separately at every call site.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsEOF reports whether t is the sentinel end-of-stream token.
func (t Token) IsEOF() bool {
	return t.Kind == EOF
}

var keywords = map[string]bool{
	"fun": true, "case": true, "of": true, "end": true, "if": true,
	"when": true, "begin": true, "try": true, "catch": true, "after": true,
	"receive": true, "div": true, "rem": true, "band": true, "bor": true,
	"bxor": true, "bsl": true, "bsr": true, "bnot": true, "not": true,
	"andalso": true, "orelse": true, "and": true, "or": true, "xor": true,
}

// IsKeyword reports whether name is a reserved word rather than a plain atom.
func IsKeyword(name string) bool {
	return keywords[name]
}
