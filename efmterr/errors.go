// Package efmterr declares the structured error kinds produced by the
// preprocessor and parser (spec.md §7), each carrying the source position
// of the failure so a CLI can print file:line:column diagnostics.
package efmterr

import (
	"fmt"

	"github.com/efmtgo/efmt/token"
)

// UnexpectedEOF is returned when the preprocessor or parser runs off the
// end of the token stream while still expecting more input.
type UnexpectedEOF struct {
	Pos token.Position
}

func (e *UnexpectedEOF) Error() string {
	return fmt.Sprintf("%s: unexpected end of file", e.Pos)
}

// UndefinedMacro is returned when a `?Name` invocation has no matching
// `-define`.
type UndefinedMacro struct {
	Name string
	Pos  token.Position
}

func (e *UndefinedMacro) Error() string {
	return fmt.Sprintf("%s: macro %q is not defined", e.Pos, e.Name)
}

// MalformedMacroArg is returned when a macro argument's delimiters are
// unbalanced, or it contains a bare `.` at the top level.
type MalformedMacroArg struct {
	Pos token.Position
}

func (e *MalformedMacroArg) Error() string {
	return fmt.Sprintf("%s: malformed macro argument", e.Pos)
}

// UnsupportedDirective is returned for `-include`/`-include_lib`, which
// this revision explicitly rejects rather than silently ignoring or
// guessing a resolution policy (spec.md §9 Open Questions).
type UnsupportedDirective struct {
	Name string
	Pos  token.Position
}

func (e *UnsupportedDirective) Error() string {
	return fmt.Sprintf("%s: %q directives are not supported", e.Pos, e.Name)
}

// UnexpectedToken is returned when the parser could not match an expected
// terminal symbol or keyword.
type UnexpectedToken struct {
	Expected string
	Got      string
	Pos      token.Position
}

func (e *UnexpectedToken) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

// NoAlternative is returned when a sum-node parse exhausted every variant.
// It carries the furthest-reaching inner error the stream recorded, so the
// end user gets the most specific diagnostic available rather than a
// generic "no variant matched".
type NoAlternative struct {
	Pos   token.Position
	Inner error
}

func (e *NoAlternative) Error() string {
	if e.Inner != nil {
		return e.Inner.Error()
	}
	return fmt.Sprintf("%s: no alternative matched", e.Pos)
}

func (e *NoAlternative) Unwrap() error { return e.Inner }

// TokenizeError wraps a failure reported by the external token source.
type TokenizeError struct {
	Pos   token.Position
	Inner error
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Inner)
}

func (e *TokenizeError) Unwrap() error { return e.Inner }
