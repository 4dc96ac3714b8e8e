package writer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pivotpdftools/pivot-pdf/ir/raw"
)

// serializeObject renders one object body (without the obj/endobj
// frame). Dictionaries serialize in insertion order, so output is
// byte-for-byte deterministic.
func serializeObject(obj raw.Object) []byte {
	var buf bytes.Buffer
	writeObject(&buf, obj)
	return buf.Bytes()
}

func writeObject(buf *bytes.Buffer, obj raw.Object) {
	switch o := obj.(type) {
	case raw.NameObj:
		buf.WriteByte('/')
		buf.WriteString(o.Value())
	case raw.NumberObj:
		if o.IsInt {
			buf.WriteString(strconv.FormatInt(o.Int(), 10))
		} else {
			buf.WriteString(FormatReal(o.Float()))
		}
	case raw.BoolObj:
		if o.Value() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case raw.NullObj:
		buf.WriteString("null")
	case raw.StringObj:
		buf.WriteByte('(')
		buf.Write(EscapeString(o.Value()))
		buf.WriteByte(')')
	case raw.RefObj:
		fmt.Fprintf(buf, "%d %d R", o.Ref().Num, o.Ref().Gen)
	case *raw.ArrayObj:
		buf.WriteByte('[')
		for i, item := range o.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, item)
		}
		buf.WriteByte(']')
	case *raw.DictObj:
		writeDict(buf, o)
	case *raw.StreamObj:
		writeDict(buf, o.Dict)
		buf.WriteString("\nstream\n")
		buf.Write(o.Data)
		buf.WriteString("\nendstream")
	default:
		// Unreachable with the raw vocabulary; keep output valid.
		buf.WriteString("null")
	}
}

func writeDict(buf *bytes.Buffer, d *raw.DictObj) {
	buf.WriteString("<<")
	for _, key := range d.Keys() {
		val, _ := d.Get(key)
		buf.WriteString(" /")
		buf.WriteString(key)
		buf.WriteByte(' ')
		writeObject(buf, val)
	}
	buf.WriteString(" >>")
}

// EscapeString escapes backslash and parentheses in a literal string
// body. Other bytes pass through untouched; literal strings are
// 8-bit clean in PDF.
func EscapeString(b []byte) []byte {
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

// FormatReal renders a real number with up to six decimal places,
// trailing zeros trimmed but always keeping one decimal digit so the
// token stays a real.
func FormatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = trimZeros(s)
	return s
}

func trimZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i++ // keep one zero after the point
	}
	return s[:i]
}
