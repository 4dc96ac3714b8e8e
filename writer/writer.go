// Package writer is the incremental object graph writer. It assigns
// object identities, serializes indirect objects straight to the
// output sink while tracking byte offsets for the cross-reference
// table, and defers only small page records so closed pages can still
// receive overlay content before the document is finalized.
package writer

import (
	"errors"
	"fmt"
	"io"

	"github.com/pivotpdftools/pivot-pdf/filters"
	"github.com/pivotpdftools/pivot-pdf/ir/raw"
)

var (
	// ErrFinalized is returned when the graph is used after Finalize.
	ErrFinalized = errors.New("document already finalized")
	// ErrPageNotFound is returned for an out-of-range page reopen.
	ErrPageNotFound = errors.New("page not found")
)

// Config controls stream encoding for the whole document.
type Config struct {
	// Filter applied to every stream written through MakeStream.
	Filter filters.Filter
	// CompressionLevel follows zlib levels; 0 means default.
	CompressionLevel int
}

// PageRecord is the small deferred descriptor for one page: object
// references only, never stream bytes. Content ids are kept in
// placement order so viewers composite original content before
// overlays.
type PageRecord struct {
	Width  float64
	Height float64

	Contents []raw.ObjectRef
	Fonts    map[string]raw.ObjectRef
	XObjects map[string]raw.ObjectRef
}

// AddContent appends a content stream reference.
func (r *PageRecord) AddContent(ref raw.ObjectRef) {
	r.Contents = append(r.Contents, ref)
}

// UseFont records a font resource under its content-stream name.
func (r *PageRecord) UseFont(name string, ref raw.ObjectRef) {
	if r.Fonts == nil {
		r.Fonts = make(map[string]raw.ObjectRef)
	}
	r.Fonts[name] = ref
}

// UseXObject records an XObject resource under its content-stream name.
func (r *PageRecord) UseXObject(name string, ref raw.ObjectRef) {
	if r.XObjects == nil {
		r.XObjects = make(map[string]raw.ObjectRef)
	}
	r.XObjects[name] = ref
}

// Graph owns the output sink for one document. Object bytes are
// written eagerly; only page records and the ids of objects whose
// content is not yet known (composite fonts) stay in memory.
type Graph struct {
	out    io.Writer
	cfg    Config
	offset int64

	nextNum   int
	offsets   map[int]int64
	records   []*PageRecord
	finalized bool
}

// New writes the PDF header to out and returns a graph ready for
// object allocation. The second header line is the conventional
// binary-detection comment.
func New(out io.Writer, cfg Config) (*Graph, error) {
	g := &Graph{
		out:     out,
		cfg:     cfg,
		nextNum: 1,
		offsets: make(map[int]int64),
	}
	if err := g.writeBytes([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")); err != nil {
		return nil, err
	}
	return g, nil
}

// AllocateRef reserves the next object identity without content.
// Identities are never reused or renumbered.
func (g *Graph) AllocateRef() raw.ObjectRef {
	ref := raw.ObjectRef{Num: g.nextNum}
	g.nextNum++
	return ref
}

// WriteObject serializes one indirect object immediately and records
// its byte offset. Writing the same identity twice is a programmer
// error and is rejected.
func (g *Graph) WriteObject(ref raw.ObjectRef, obj raw.Object) error {
	if g.finalized {
		return ErrFinalized
	}
	if _, dup := g.offsets[ref.Num]; dup {
		return fmt.Errorf("object %d written twice", ref.Num)
	}
	g.offsets[ref.Num] = g.offset
	if err := g.writeString(fmt.Sprintf("%d %d obj\n", ref.Num, ref.Gen)); err != nil {
		return err
	}
	if err := g.writeBytes(serializeObject(obj)); err != nil {
		return err
	}
	return g.writeString("\nendobj\n")
}

// MakeStream wraps data as a stream object, applying the configured
// filter, and writes it under a fresh identity. extra entries (beyond
// /Length and /Filter) may be supplied through dict; nil is fine.
func (g *Graph) MakeStream(data []byte, dict *raw.DictObj) (raw.ObjectRef, error) {
	encoded, err := filters.Encode(g.cfg.Filter, data, g.level())
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if dict == nil {
		dict = raw.Dict()
	}
	if name := g.cfg.Filter.Name(); name != "" {
		dict.Set("Filter", raw.Name(name))
	}
	dict.Set("Length", raw.Int(int64(len(encoded))))
	ref := g.AllocateRef()
	if err := g.WriteObject(ref, raw.Stream(dict, encoded)); err != nil {
		return raw.ObjectRef{}, err
	}
	return ref, nil
}

// MakeRawStream writes data as-is, optionally tagged with a named
// filter the data is already encoded with. This is the path for image
// bytes that arrive pre-encoded (DCTDecode and friends).
func (g *Graph) MakeRawStream(data []byte, dict *raw.DictObj, filterName string) (raw.ObjectRef, error) {
	if dict == nil {
		dict = raw.Dict()
	}
	if filterName != "" {
		dict.Set("Filter", raw.Name(filterName))
	}
	dict.Set("Length", raw.Int(int64(len(data))))
	ref := g.AllocateRef()
	if err := g.WriteObject(ref, raw.Stream(dict, data)); err != nil {
		return raw.ObjectRef{}, err
	}
	return ref, nil
}

// DeferPageRecord stores a page descriptor for finalize. The record
// stays mutable until then, which is what allows overlay appends.
func (g *Graph) DeferPageRecord(rec *PageRecord) {
	g.records = append(g.records, rec)
}

// Record returns the deferred record for a 1-based page number.
func (g *Graph) Record(pageNum int) (*PageRecord, error) {
	if pageNum < 1 || pageNum > len(g.records) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageNotFound, pageNum, len(g.records))
	}
	return g.records[pageNum-1], nil
}

// PageCount reports how many pages have been deferred so far.
func (g *Graph) PageCount() int { return len(g.records) }

func (g *Graph) level() int {
	if g.cfg.CompressionLevel == 0 {
		return -1
	}
	return g.cfg.CompressionLevel
}

func (g *Graph) writeBytes(b []byte) error {
	n, err := g.out.Write(b)
	g.offset += int64(n)
	if err != nil {
		return fmt.Errorf("write sink: %w", err)
	}
	return nil
}

func (g *Graph) writeString(s string) error { return g.writeBytes([]byte(s)) }
