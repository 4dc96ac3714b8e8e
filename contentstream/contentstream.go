// Package contentstream emits PDF content stream operators into an
// in-memory buffer. One Writer corresponds to one page's (or one
// overlay's) content; the document hands the finished bytes to the
// object graph writer when the page closes.
package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Writer accumulates content stream operators.
type Writer struct {
	buf bytes.Buffer
}

// New returns an empty content stream writer.
func New() *Writer { return &Writer{} }

// Bytes returns the accumulated stream body.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len reports the accumulated byte count.
func (w *Writer) Len() int { return w.buf.Len() }

// Append splices pre-built operator bytes into the stream. Layout
// engines build their operators separately and hand them over here.
func (w *Writer) Append(ops []byte) { w.buf.Write(ops) }

// Text object operators.

func (w *Writer) BeginText() { w.buf.WriteString("BT\n") }
func (w *Writer) EndText()   { w.buf.WriteString("ET\n") }

// SetFont selects a font resource by its content-stream name.
func (w *Writer) SetFont(name string, size float64) {
	fmt.Fprintf(&w.buf, "/%s %s Tf\n", name, FormatCoord(size))
}

// Td moves the text position. Inside a text object the offset is
// relative to the previous line start.
func (w *Writer) Td(x, y float64) {
	fmt.Fprintf(&w.buf, "%s %s Td\n", FormatCoord(x), FormatCoord(y))
}

// ShowLiteral shows single-byte-encoded text as a literal string.
func (w *Writer) ShowLiteral(encoded []byte) {
	w.buf.WriteByte('(')
	w.buf.Write(escapeLiteral(encoded))
	w.buf.WriteString(") Tj\n")
}

// ShowHex shows two-byte-encoded text as a hex string, the form
// composite fonts require.
func (w *Writer) ShowHex(encoded []byte) {
	w.buf.WriteByte('<')
	for _, b := range encoded {
		fmt.Fprintf(&w.buf, "%02X", b)
	}
	w.buf.WriteString("> Tj\n")
}

// Graphics state operators.

func (w *Writer) Save()    { w.buf.WriteString("q\n") }
func (w *Writer) Restore() { w.buf.WriteString("Q\n") }

func (w *Writer) SetFillRGB(r, g, b float64) {
	fmt.Fprintf(&w.buf, "%s %s %s rg\n", FormatCoord(r), FormatCoord(g), FormatCoord(b))
}

func (w *Writer) SetStrokeRGB(r, g, b float64) {
	fmt.Fprintf(&w.buf, "%s %s %s RG\n", FormatCoord(r), FormatCoord(g), FormatCoord(b))
}

func (w *Writer) SetLineWidth(width float64) {
	fmt.Fprintf(&w.buf, "%s w\n", FormatCoord(width))
}

// Path construction and painting.

func (w *Writer) MoveTo(x, y float64) {
	fmt.Fprintf(&w.buf, "%s %s m\n", FormatCoord(x), FormatCoord(y))
}

func (w *Writer) LineTo(x, y float64) {
	fmt.Fprintf(&w.buf, "%s %s l\n", FormatCoord(x), FormatCoord(y))
}

func (w *Writer) Rect(x, y, width, height float64) {
	fmt.Fprintf(&w.buf, "%s %s %s %s re\n",
		FormatCoord(x), FormatCoord(y), FormatCoord(width), FormatCoord(height))
}

func (w *Writer) ClosePath() { w.buf.WriteString("h\n") }
func (w *Writer) Stroke()    { w.buf.WriteString("S\n") }
func (w *Writer) Fill()      { w.buf.WriteString("f\n") }

// ClipRect intersects the clip region with a rectangle without
// painting it.
func (w *Writer) ClipRect(x, y, width, height float64) {
	w.Rect(x, y, width, height)
	w.buf.WriteString("W n\n")
}

// Concat appends a matrix to the current transformation matrix.
func (w *Writer) Concat(a, b, c, d, e, f float64) {
	fmt.Fprintf(&w.buf, "%s %s %s %s %s %s cm\n",
		FormatCoord(a), FormatCoord(b), FormatCoord(c),
		FormatCoord(d), FormatCoord(e), FormatCoord(f))
}

// DoXObject paints a named XObject resource.
func (w *Writer) DoXObject(name string) {
	fmt.Fprintf(&w.buf, "/%s Do\n", name)
}

// FormatCoord renders a coordinate compactly: integral values lose the
// decimal point entirely, everything else keeps up to two decimals.
func FormatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func escapeLiteral(b []byte) []byte {
	n := 0
	for _, c := range b {
		if c == '\\' || c == '(' || c == ')' {
			n++
		}
	}
	if n == 0 {
		return b
	}
	out := make([]byte, 0, len(b)+n)
	for _, c := range b {
		if c == '\\' || c == '(' || c == ')' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return out
}
