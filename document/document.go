// Package document is the public entry point: it owns the object
// graph writer, the font registry and the open page, and exposes the
// text, layout, table and drawing operations callers compose a
// document from. Content streams are written out when a page closes;
// pages themselves stay reopenable until Close.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pivotpdftools/pivot-pdf/contentstream"
	"github.com/pivotpdftools/pivot-pdf/filters"
	"github.com/pivotpdftools/pivot-pdf/fonts"
	"github.com/pivotpdftools/pivot-pdf/observability"
	"github.com/pivotpdftools/pivot-pdf/writer"
)

var (
	// ErrDocumentClosed is returned for any operation after Close.
	ErrDocumentClosed = errors.New("document is closed")
	// ErrNoOpenPage is returned when a page operation has no page.
	ErrNoOpenPage = errors.New("no open page")
	// ErrPageNotFound re-exports the writer sentinel for reopen calls.
	ErrPageNotFound = writer.ErrPageNotFound
	// ErrNotBuffered is returned by Bytes on a non-buffer document.
	ErrNotBuffered = errors.New("document is not backed by a buffer")
)

// Option configures a document at construction.
type Option func(*Document)

// WithFilter selects the stream filter applied to content and font
// streams. Default is Flate.
func WithFilter(f filters.Filter) Option {
	return func(d *Document) { d.cfg.Filter = f }
}

// WithCompressionLevel sets the Flate compression level.
func WithCompressionLevel(level int) Option {
	return func(d *Document) { d.cfg.CompressionLevel = level }
}

// WithLogger installs a logger for lifecycle events.
func WithLogger(l observability.Logger) Option {
	return func(d *Document) { d.log = l }
}

// Document assembles one PDF file.
type Document struct {
	graph *writer.Graph
	fonts *fonts.Registry
	log   observability.Logger
	cfg   writer.Config

	file *os.File
	buf  *bytes.Buffer

	info       [][2]string
	page       *pageBuilder
	imageCount int
	closed     bool
}

// pageBuilder is the open page: its deferred record plus the content
// being accumulated for it. overlay marks a reopened page whose record
// is already part of the document.
type pageBuilder struct {
	rec     *writer.PageRecord
	cs      *contentstream.Writer
	overlay bool
}

// New starts a document writing to out.
func New(out io.Writer, opts ...Option) (*Document, error) {
	d := &Document{
		fonts: fonts.NewRegistry(),
		log:   observability.NopLogger{},
		cfg:   writer.Config{Filter: filters.Flate},
	}
	for _, opt := range opts {
		opt(d)
	}
	g, err := writer.New(out, d.cfg)
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	d.graph = g
	return d, nil
}

// Create starts a document writing to a new file at path. Close
// closes the file.
func Create(path string, opts ...Option) (*Document, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	d, err := New(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.file = f
	return d, nil
}

// NewBuffer starts an in-memory document. Bytes returns the file
// after Close.
func NewBuffer(opts ...Option) (*Document, error) {
	buf := &bytes.Buffer{}
	d, err := New(buf, opts...)
	if err != nil {
		return nil, err
	}
	d.buf = buf
	return d, nil
}

// Bytes returns the assembled file for a buffer-backed document.
func (d *Document) Bytes() ([]byte, error) {
	if d.buf == nil {
		return nil, ErrNotBuffered
	}
	if !d.closed {
		return nil, fmt.Errorf("document still open")
	}
	return d.buf.Bytes(), nil
}

// SetInfo records a document information entry (Title, Author, ...).
// Entries keep their insertion order in the info dictionary.
func (d *Document) SetInfo(key, value string) {
	d.info = append(d.info, [2]string{key, value})
}

// StandardFont returns a handle to one of the built-in fonts.
func (d *Document) StandardFont(f fonts.StandardFont) fonts.FontRef {
	return d.fonts.Standard(f)
}

// LoadFont embeds a TrueType font and returns its handle. The font
// objects are written at Close, once total glyph usage is known.
func (d *Document) LoadFont(data []byte) (fonts.FontRef, error) {
	if d.closed {
		return fonts.FontRef{}, ErrDocumentClosed
	}
	return d.fonts.LoadTrueType(d.graph, data)
}

// Fonts exposes the registry for measurement outside a fit call.
func (d *Document) Fonts() *fonts.Registry { return d.fonts }

// BeginPage opens a new page of the given size, closing any page that
// is still open.
func (d *Document) BeginPage(width, height float64) error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.page != nil {
		if err := d.EndPage(); err != nil {
			return err
		}
	}
	d.page = &pageBuilder{
		rec: &writer.PageRecord{Width: width, Height: height},
		cs:  contentstream.New(),
	}
	d.log.Debug("page opened", observability.Int("page", d.graph.PageCount()+1))
	return nil
}

// OpenPage reopens a closed page (1-based) so more content can be
// drawn over it. The overlay becomes one additional content stream on
// that page; everything already written stays untouched. Any open
// page is closed first.
func (d *Document) OpenPage(pageNum int) error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.page != nil {
		if err := d.EndPage(); err != nil {
			return err
		}
	}
	rec, err := d.graph.Record(pageNum)
	if err != nil {
		return err
	}
	d.page = &pageBuilder{rec: rec, cs: contentstream.New(), overlay: true}
	d.log.Debug("page reopened", observability.Int("page", pageNum))
	return nil
}

// EndPage closes the open page: its content stream is written to the
// sink immediately and only the small page record stays in memory.
func (d *Document) EndPage() error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.page == nil {
		return ErrNoOpenPage
	}
	page := d.page
	d.page = nil

	ref, err := d.graph.MakeStream(page.cs.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("end page: %w", err)
	}
	page.rec.AddContent(ref)
	if !page.overlay {
		d.graph.DeferPageRecord(page.rec)
	}
	d.log.Debug("page closed",
		observability.Int("page", d.graph.PageCount()),
		observability.Int("content_bytes", page.cs.Len()))
	return nil
}

// PageCount reports how many pages have been closed so far.
func (d *Document) PageCount() int { return d.graph.PageCount() }

// Close finishes the document: the open page (if any) is flushed,
// deferred font objects are written, then the page tree, catalog,
// info, xref and trailer. File-backed documents close their file.
func (d *Document) Close() error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.page != nil {
		if err := d.EndPage(); err != nil {
			return err
		}
	}
	if err := d.fonts.WriteDeferred(d.graph); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err := d.graph.Finalize(d.info); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	d.closed = true
	d.log.Info("document finalized",
		observability.Int(observability.MetricPageCount, d.graph.PageCount()))
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			return fmt.Errorf("close document: %w", err)
		}
	}
	return nil
}

// useFont makes a font available to the open page's resources.
func (d *Document) useFont(ref fonts.FontRef) error {
	obj, err := d.fonts.EnsureObject(d.graph, ref)
	if err != nil {
		return err
	}
	d.page.rec.UseFont(d.fonts.ResourceName(ref), obj)
	return nil
}

func (d *Document) openPage() (*pageBuilder, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if d.page == nil {
		return nil, ErrNoOpenPage
	}
	return d.page, nil
}
