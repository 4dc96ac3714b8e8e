// Package filters implements the stream encoders a document can apply
// to content and font streams before they hit the output sink. Each
// encoder is a pure byte transform paired with the PDF filter name a
// viewer needs to decode it.
package filters

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
)

// Filter selects the transform applied to stream data.
type Filter int

const (
	None Filter = iota
	Flate
	ASCIIHex
	ASCII85
)

// Name returns the PDF /Filter name, or "" for None.
func (f Filter) Name() string {
	switch f {
	case Flate:
		return "FlateDecode"
	case ASCIIHex:
		return "ASCIIHexDecode"
	case ASCII85:
		return "ASCII85Decode"
	default:
		return ""
	}
}

// Encode applies the filter to data. level is honored by Flate only
// and follows zlib semantics (-1 for default).
func Encode(f Filter, data []byte, level int) ([]byte, error) {
	switch f {
	case None:
		return data, nil
	case Flate:
		return flateEncode(data, level)
	case ASCIIHex:
		return asciiHexEncode(data), nil
	case ASCII85:
		return ascii85Encode(data), nil
	default:
		return nil, fmt.Errorf("unknown filter %d", int(f))
	}
}

func flateEncode(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	return buf.Bytes(), nil
}

func asciiHexEncode(data []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(data))+1)
	hex.Encode(out, data)
	// PDF end-of-data marker
	out[len(out)-1] = '>'
	return out
}

func ascii85Encode(data []byte) []byte {
	var buf bytes.Buffer
	w := ascii85.NewEncoder(&buf)
	w.Write(data)
	w.Close()
	buf.WriteString("~>")
	return buf.Bytes()
}
