// Package fonts manages the fonts a document draws with: the built-in
// Type1 set with AFM width tables, and embedded TrueType fonts written
// as Type0/Identity-H composites. Embedded font objects are deferred
// to document close so the width array and ToUnicode map cover every
// glyph the document ended up using.
package fonts

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/pivotpdftools/pivot-pdf/ir/raw"
	"github.com/pivotpdftools/pivot-pdf/writer"
)

// ErrUnknownFont is returned when a FontRef does not belong to the
// registry it is used with.
var ErrUnknownFont = errors.New("unknown font reference")

type fontKind int

const (
	standardKind fontKind = iota
	embeddedKind
)

// FontRef is an opaque handle to a registered font. The zero value is
// not a valid reference.
type FontRef struct {
	kind  fontKind
	index int
	ok    bool
}

// IsValid reports whether the handle came from a registry.
func (f FontRef) IsValid() bool { return f.ok }

// Embedded reports whether the handle refers to an embedded composite
// font (two-byte glyph encoding) rather than a built-in one.
func (f FontRef) Embedded() bool { return f.ok && f.kind == embeddedKind }

// Encoded is the content-stream form of a piece of text: raw bytes
// plus the show-operator family they need.
type Encoded struct {
	Bytes []byte
	// Hex selects the hex-string form composite fonts require.
	Hex bool
}

// Registry tracks every font a document uses and hands out stable
// resource names (F1, F2, ...).
type Registry struct {
	standard    []*standardEntry
	standardIdx map[StandardFont]int
	embedded    []*trueTypeFont
	nextName    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{standardIdx: make(map[StandardFont]int)}
}

// Standard returns the handle for a built-in font, registering it on
// first use. Repeated calls return the same handle.
func (r *Registry) Standard(f StandardFont) FontRef {
	if idx, ok := r.standardIdx[f]; ok {
		return FontRef{kind: standardKind, index: idx, ok: true}
	}
	r.nextName++
	entry := &standardEntry{font: f, name: fmt.Sprintf("F%d", r.nextName)}
	r.standardIdx[f] = len(r.standard)
	r.standard = append(r.standard, entry)
	return FontRef{kind: standardKind, index: len(r.standard) - 1, ok: true}
}

// LoadTrueType parses font data and registers it as an embedded
// composite font. The font dictionary's object identity is allocated
// now so pages can reference it; the object itself is written at
// WriteDeferred once glyph usage is complete. A parse failure leaves
// the registry unchanged.
func (r *Registry) LoadTrueType(g *writer.Graph, data []byte) (FontRef, error) {
	tt, err := parseTrueType(data)
	if err != nil {
		return FontRef{}, fmt.Errorf("load truetype: %w", err)
	}
	r.nextName++
	tt.name = fmt.Sprintf("F%d", r.nextName)
	tt.obj = g.AllocateRef()
	r.embedded = append(r.embedded, tt)
	return FontRef{kind: embeddedKind, index: len(r.embedded) - 1, ok: true}, nil
}

// Measure returns the width of text in points at the given size.
// Measurement never mutates usage state.
func (r *Registry) Measure(ref FontRef, text string, size float64) float64 {
	text = norm.NFC.String(text)
	switch {
	case ref.kind == standardKind && ref.index < len(r.standard):
		return r.standard[ref.index].font.measure(text, size)
	case ref.kind == embeddedKind && ref.index < len(r.embedded):
		return r.embedded[ref.index].measure(text, size)
	}
	return 0
}

// LineHeight returns the baseline-to-baseline distance for a size.
func (r *Registry) LineHeight(ref FontRef, size float64) float64 {
	if ref.kind == embeddedKind && ref.index < len(r.embedded) {
		return r.embedded[ref.index].lineHeight(size)
	}
	return size * 1.2
}

// Encode converts text to its content-stream byte form and records
// glyph usage for embedded fonts. Text is NFC-normalized first so
// measurement and encoding agree on composed forms.
func (r *Registry) Encode(ref FontRef, text string) Encoded {
	text = norm.NFC.String(text)
	switch {
	case ref.kind == standardKind && ref.index < len(r.standard):
		return Encoded{Bytes: encodeSingleByte(text)}
	case ref.kind == embeddedKind && ref.index < len(r.embedded):
		return Encoded{Bytes: r.embedded[ref.index].encode(text), Hex: true}
	}
	return Encoded{}
}

// ResourceName returns the content-stream resource name for a font.
func (r *Registry) ResourceName(ref FontRef) string {
	switch {
	case ref.kind == standardKind && ref.index < len(r.standard):
		return r.standard[ref.index].name
	case ref.kind == embeddedKind && ref.index < len(r.embedded):
		return r.embedded[ref.index].name
	}
	return ""
}

// EnsureObject returns the font dictionary's object identity, writing
// the dictionary for built-in fonts on first use. Embedded fonts
// return their pre-allocated identity; their objects are written at
// WriteDeferred.
func (r *Registry) EnsureObject(g *writer.Graph, ref FontRef) (raw.ObjectRef, error) {
	switch {
	case ref.kind == standardKind && ref.index < len(r.standard):
		entry := r.standard[ref.index]
		if !entry.written {
			entry.obj = g.AllocateRef()
			dict := raw.Dict()
			dict.Set("Type", raw.Name("Font"))
			dict.Set("Subtype", raw.Name("Type1"))
			dict.Set("BaseFont", raw.Name(entry.font.BaseName()))
			dict.Set("Encoding", raw.Name("WinAnsiEncoding"))
			if err := g.WriteObject(entry.obj, dict); err != nil {
				return raw.ObjectRef{}, err
			}
			entry.written = true
		}
		return entry.obj, nil
	case ref.kind == embeddedKind && ref.index < len(r.embedded):
		return r.embedded[ref.index].obj, nil
	}
	return raw.ObjectRef{}, ErrUnknownFont
}

// WriteDeferred writes the composite font object clusters for every
// embedded font. Called once, by the document, right before finalize.
func (r *Registry) WriteDeferred(g *writer.Graph) error {
	for _, tt := range r.embedded {
		if err := tt.writeObjects(g); err != nil {
			return fmt.Errorf("font %s: %w", tt.psName, err)
		}
	}
	return nil
}

type standardEntry struct {
	font    StandardFont
	name    string
	obj     raw.ObjectRef
	written bool
}

// encodeSingleByte maps runes to single bytes for the built-in fonts.
// Runes outside the byte range degrade to '?'; the built-in set has no
// glyphs for them anyway.
func encodeSingleByte(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r <= 0xFF {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return out
}
