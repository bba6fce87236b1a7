package typescript

import (
	"bytes"
	"fmt"
	"strings"
)

// writer is an indentation-aware line writer.
type writer struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

func newWriter(indentSize int) *writer {
	return &writer{indent: strings.Repeat(" ", indentSize)}
}

// line writes one indented line. An empty format writes a blank line.
func (w *writer) line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}
	for range w.depth {
		w.buf.WriteString(w.indent)
	}
	if len(args) > 0 {
		fmt.Fprintf(&w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteByte('\n')
}

// open writes a line and indents what follows.
func (w *writer) open(format string, args ...any) {
	w.line(format, args...)
	w.depth++
}

// shut dedents and writes the closing line.
func (w *writer) shut(s string) {
	w.depth--
	w.line("%s", s)
}

func (w *writer) empty() bool { return w.buf.Len() == 0 }

func (w *writer) bytes() []byte { return w.buf.Bytes() }
