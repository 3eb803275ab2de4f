// Package writer provides an indentation-aware buffer for emitting source
// text. Generators build output line by line; the writer owns indentation
// state so generator code never concatenates leading whitespace by hand.
package writer

import (
	"fmt"
	"strings"
)

// Writer accumulates generated source with automatic line indentation
type Writer struct {
	sb      strings.Builder
	depth   int
	indent  string
	pending bool // next write starts a fresh line
}

// New creates a writer using the given indentation unit ("\t" for Go,
// four spaces for Rust, and so on).
func New(indent string) *Writer {
	return &Writer{indent: indent, pending: true}
}

// In increases the indentation depth
func (w *Writer) In() {
	w.depth++
}

// Out decreases the indentation depth
func (w *Writer) Out() {
	if w.depth > 0 {
		w.depth--
	}
}

// Raw appends text without a trailing newline, indenting if at line start
func (w *Writer) Raw(s string) {
	if w.pending && s != "" {
		w.sb.WriteString(strings.Repeat(w.indent, w.depth))
		w.pending = false
	}
	w.sb.WriteString(s)
}

// Rawf appends formatted text without a trailing newline
func (w *Writer) Rawf(format string, args ...any) {
	w.Raw(fmt.Sprintf(format, args...))
}

// Line appends one indented line
func (w *Writer) Line(s string) {
	w.Raw(s)
	w.sb.WriteString("\n")
	w.pending = true
}

// Linef appends one formatted indented line
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Blank appends an empty line unless the output already ends with one
func (w *Writer) Blank() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n\n") {
		w.sb.WriteString("\n")
		w.pending = true
	}
}

// Block emits opener, runs body one level deeper, then emits closer
func (w *Writer) Block(opener, closer string, body func()) {
	w.Line(opener)
	w.In()
	body()
	w.Out()
	w.Line(closer)
}

// Comment emits a line comment with the given marker ("//", "///", ...)
func (w *Writer) Comment(marker, text string) {
	if text == "" {
		w.Line(marker)
		return
	}
	w.Linef("%s %s", marker, text)
}

// Doc emits a multi-line documentation comment block. Empty input emits
// nothing.
func (w *Writer) Doc(marker, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		w.Comment(marker, strings.TrimSpace(line))
	}
}

// String returns the generated source
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the generated source as a byte slice
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}
