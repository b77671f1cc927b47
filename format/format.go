// Package format implements the layout engine: the component that walks a
// parsed CST and emits canonical, width-bounded text, re-injecting comments
// from the preprocessor's comment map as it goes.
//
// The primitive operations below mirror the teacher's own printer model in
// cue/format (an output buffer plus a column and indentation discipline)
// generalized to a soft-width, speculative-single-line policy instead of
// cue's token-class spacing table.
package format

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/efmtgo/efmt/preprocess"
	"github.com/efmtgo/efmt/token"
)

// DefaultSoftWidth is used when a caller does not configure one.
const DefaultSoftWidth = 80

// Formatter accumulates formatted output for one compilation unit.
type Formatter struct {
	buf    strings.Builder
	column int
	indent []int // stack of column anchors

	softWidth int
	comments  *preprocess.CommentMap

	// speculative mode: while inSpeculation is set, writes go to a scratch
	// buffer instead of buf, and AddNewline is forbidden (it panics).
	scratch      *strings.Builder
	scratchCol   int
	inSpeculation bool
}

// New creates a Formatter targeting softWidth columns, re-injecting
// comments from comments as tokens are written.
func New(softWidth int, comments *preprocess.CommentMap) *Formatter {
	if softWidth <= 0 {
		softWidth = DefaultSoftWidth
	}
	return &Formatter{softWidth: softWidth, comments: comments, indent: []int{0}}
}

// String returns the accumulated output.
func (f *Formatter) String() string { return f.buf.String() }

// Column reports the current display column (0-based).
func (f *Formatter) Column() int {
	if f.inSpeculation {
		return f.scratchCol
	}
	return f.column
}

// SoftWidth reports the configured soft target width.
func (f *Formatter) SoftWidth() int { return f.softWidth }

func (f *Formatter) write(s string) {
	if f.inSpeculation {
		f.scratch.WriteString(s)
		f.scratchCol += displayWidth(s)
		return
	}
	f.buf.WriteString(s)
	f.column += displayWidth(s)
}

func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\n' {
			w = 0
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

// WriteToken flushes any comments positioned strictly before t, then emits
// t's verbatim text. Comments are flushed each on their own line at the
// current indentation anchor, preserving spec's "attach to original
// position" policy even though this is a canonical reformat.
func (f *Formatter) WriteToken(t token.Token) {
	f.flushComments(t.Start)
	f.write(t.Text)
}

// flushComments emits every comment positioned strictly before pos, in
// order, each on its own line. A no-op during speculative single-line
// rendering: comments never participate in the fits-on-one-line decision,
// and are instead flushed once the real (non-speculative) pass reaches
// that token.
func (f *Formatter) flushComments(pos token.Position) {
	if f.inSpeculation || f.comments == nil {
		return
	}
	for _, c := range f.comments.Pending(pos) {
		f.buf.WriteString(c.Text)
		f.buf.WriteByte('\n')
		f.column = 0
		f.indentTo(f.topAnchor())
	}
}

// FlushTrailingComments emits any comments left unconsumed after the last
// token (end-of-file trailing comments).
func (f *Formatter) FlushTrailingComments() {
	if f.comments == nil {
		return
	}
	for f.comments.Remaining() {
		for _, c := range f.comments.Pending(token.Position{Offset: 1 << 62}) {
			f.buf.WriteString(c.Text)
			f.buf.WriteByte('\n')
			f.column = 0
		}
	}
}

// AddSpace emits one space, unless at the start of a line.
func (f *Formatter) AddSpace() {
	if f.Column() == 0 {
		return
	}
	f.write(" ")
}

// AddNewline emits a newline and re-indents to the top of the indentation
// stack. Forbidden during speculative single-line rendering.
func (f *Formatter) AddNewline() {
	if f.inSpeculation {
		panic("format: AddNewline called inside TrySingleLine")
	}
	f.buf.WriteByte('\n')
	f.column = 0
	f.indentTo(f.topAnchor())
}

func (f *Formatter) indentTo(col int) {
	if col <= 0 {
		return
	}
	f.write(strings.Repeat(" ", col))
}

func (f *Formatter) topAnchor() int { return f.indent[len(f.indent)-1] }

// WithIndent pushes current_column+offset as a new anchor, runs body, and
// pops it on return (including on panic, so a formatting bug never leaves
// the indentation stack unbalanced for the rest of the file).
func (f *Formatter) WithIndent(offset int, body func()) {
	f.indent = append(f.indent, f.Column()+offset)
	defer func() { f.indent = f.indent[:len(f.indent)-1] }()
	body()
}

// WithAnchor pushes an explicit absolute column as a new anchor (used for
// "closing delimiter aligned with the opening column").
func (f *Formatter) WithAnchor(col int, body func()) {
	f.indent = append(f.indent, col)
	defer func() { f.indent = f.indent[:len(f.indent)-1] }()
	body()
}

// TrySingleLine attempts to run body with newlines disabled, rendering into
// a scratch buffer, and returns that rendering with whether it fits within
// the soft width (measured from the current column). Nothing is written to
// the output: a caller that gets fits == true passes the rendering to
// Commit, and otherwise re-runs body with breaks enabled. A call nested
// inside another speculation always reports fits == true, so its caller
// stays on one line; the outermost call alone decides whether the line fits.
func (f *Formatter) TrySingleLine(body func()) (rendered string, fits bool) {
	outer := f.inSpeculation
	savedScratch, savedCol := f.scratch, f.scratchCol

	scratch := &strings.Builder{}
	f.scratch = scratch
	f.scratchCol = f.Column()
	f.inSpeculation = true

	func() {
		defer func() {
			f.inSpeculation = outer
			f.scratch, f.scratchCol = savedScratch, savedCol
		}()
		body()
	}()

	width := f.scratchWidthOf(scratch.String())
	fits = outer || f.Column()+width <= f.softWidth
	return scratch.String(), fits
}

func (f *Formatter) scratchWidthOf(s string) int {
	w := 0
	for _, r := range s {
		w += runewidth.RuneWidth(r)
	}
	return w
}

// Commit writes a previously speculative rendering verbatim into the real
// buffer (used after TrySingleLine reports fits == true).
func (f *Formatter) Commit(rendered string) {
	f.write(rendered)
}
