package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/pivotpdftools/pivot-pdf/filters"
	"github.com/pivotpdftools/pivot-pdf/fonts"
	"github.com/pivotpdftools/pivot-pdf/layout"
)

func TestBufferDocumentEndToEnd(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	doc.SetInfo("Title", "Smoke Test")

	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.PlaceText("Hello, world", 72, 720); err != nil {
		t.Fatalf("PlaceText: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "%PDF-1.7") {
		t.Fatal("missing PDF header")
	}
	if !strings.HasSuffix(s, "%%EOF\n") {
		t.Fatal("missing EOF marker")
	}
	if !strings.Contains(s, "(Hello, world) Tj") {
		t.Fatal("page content not written")
	}
	if !strings.Contains(s, "/Title (Smoke Test)") {
		t.Fatal("info dictionary not written")
	}
	if !strings.Contains(s, "/BaseFont /Helvetica") {
		t.Fatal("default font object not written")
	}
}

func TestDefaultFilterIsFlate(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.PlaceText("compressed", 72, 720); err != nil {
		t.Fatalf("PlaceText: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	if !bytes.Contains(out, []byte("/Filter /FlateDecode")) {
		t.Fatal("content stream not Flate encoded by default")
	}
	if bytes.Contains(out, []byte("(compressed) Tj")) {
		t.Fatal("content appears uncompressed")
	}
}

func TestBytesBeforeCloseFails(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if _, err := doc.Bytes(); err == nil {
		t.Fatal("Bytes before Close succeeded")
	}
}

func TestPageLifecycleErrors(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.EndPage(); !errors.Is(err, ErrNoOpenPage) {
		t.Fatalf("EndPage err = %v, want ErrNoOpenPage", err)
	}
	if err := doc.PlaceText("x", 0, 0); !errors.Is(err, ErrNoOpenPage) {
		t.Fatalf("PlaceText err = %v, want ErrNoOpenPage", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := doc.BeginPage(612, 792); !errors.Is(err, ErrDocumentClosed) {
		t.Fatalf("BeginPage err = %v, want ErrDocumentClosed", err)
	}
	if err := doc.Close(); !errors.Is(err, ErrDocumentClosed) {
		t.Fatalf("second Close err = %v, want ErrDocumentClosed", err)
	}
}

func TestBeginPageClosesPreviousPage(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("second BeginPage: %v", err)
	}
	if got := doc.PageCount(); got != 1 {
		t.Fatalf("PageCount = %d, want 1 (first page auto-closed)", got)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := doc.PageCount(); got != 2 {
		t.Fatalf("PageCount = %d, want 2 after close", got)
	}
}

func TestOverlayAppendsExactlyOneContentRef(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.PlaceText("original", 72, 720); err != nil {
		t.Fatalf("PlaceText: %v", err)
	}
	if err := doc.EndPage(); err != nil {
		t.Fatalf("EndPage: %v", err)
	}

	rec, err := doc.graph.Record(1)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	before := len(rec.Contents)

	if err := doc.OpenPage(1); err != nil {
		t.Fatalf("OpenPage: %v", err)
	}
	if err := doc.PlaceText("Page 1 of 1", 72, 36); err != nil {
		t.Fatalf("PlaceText: %v", err)
	}
	if err := doc.EndPage(); err != nil {
		t.Fatalf("EndPage: %v", err)
	}

	if got := len(rec.Contents); got != before+1 {
		t.Fatalf("overlay added %d content refs, want 1", got-before)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("PageCount = %d, reopen must not add pages", doc.PageCount())
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	s := string(out)
	if !strings.Contains(s, "(original) Tj") || !strings.Contains(s, "(Page 1 of 1) Tj") {
		t.Fatal("page missing original or overlay content")
	}
}

func TestOpenPageOutOfRange(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.OpenPage(1); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("OpenPage err = %v, want ErrPageNotFound", err)
	}
}

func TestFitTextFlowAcrossPages(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	body := layout.TextStyle{Font: doc.StandardFont(fonts.Helvetica), Size: 12}
	flow := layout.NewTextFlow()
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("flowing text across several pages ")
	}
	flow.AddText(b.String(), body)

	rect := layout.Rect{X: 72, Y: 720, Width: 300, Height: 200}
	for !flow.IsFinished() {
		if err := doc.BeginPage(612, 792); err != nil {
			t.Fatalf("BeginPage: %v", err)
		}
		result, err := doc.FitTextFlow(flow, rect)
		if err != nil {
			t.Fatalf("FitTextFlow: %v", err)
		}
		if result == layout.BoxEmpty {
			t.Fatal("unexpected BoxEmpty")
		}
		if doc.PageCount() > 60 {
			t.Fatal("flow did not terminate")
		}
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if doc.PageCount() < 2 {
		t.Fatalf("expected multiple pages, got %d", doc.PageCount())
	}
}

func TestFitRowUsesPageResources(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	style := layout.NewCellStyle(doc.StandardFont(fonts.Helvetica))
	table := layout.NewTable([]float64{100, 100}, style)
	cursor := layout.NewTableCursor(layout.Rect{X: 72, Y: 700, Width: 200, Height: 600})

	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	row := layout.Row{Cells: []layout.Cell{
		{Text: "k", Style: style}, {Text: "v", Style: style},
	}}
	if _, err := doc.FitRow(table, row, cursor); err != nil {
		t.Fatalf("FitRow: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	if !strings.Contains(string(out), "/Font <<") {
		t.Fatal("page resources missing font entry")
	}
}

func TestEmbeddedFontDocument(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	ref, err := doc.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	style := layout.TextStyle{Font: ref, Size: 14}
	if err := doc.PlaceTextStyled("Embedded", 72, 700, style); err != nil {
		t.Fatalf("PlaceTextStyled: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	s := string(out)
	for _, want := range []string{"/Subtype /Type0", "/FontFile2", "/ToUnicode"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q", want)
		}
	}
}

func TestRegisterAndDrawImage(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	img, err := doc.RegisterImage(ImageParams{
		Width: 2, Height: 2, ColorSpace: "DeviceGray",
		Data: []byte{0x00, 0xff, 0xff, 0x00},
	})
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.DrawImage(img, 72, 600, 100, 100); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	s := string(out)
	if !strings.Contains(s, "/Subtype /Image") {
		t.Fatal("image XObject not written")
	}
	if !strings.Contains(s, "/Im1 Do") {
		t.Fatal("image not placed in content")
	}
	if !strings.Contains(s, "/XObject <<") {
		t.Fatal("page resources missing XObject entry")
	}
}

func TestRegisterImageValidation(t *testing.T) {
	doc, err := NewBuffer()
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if _, err := doc.RegisterImage(ImageParams{Width: 0, Height: 2, Data: []byte{1}}); err == nil {
		t.Fatal("zero width accepted")
	}
	if _, err := doc.RegisterImage(ImageParams{Width: 2, Height: 2}); err == nil {
		t.Fatal("empty data accepted")
	}
}

func TestDrawingPrimitives(t *testing.T) {
	doc, err := NewBuffer(WithFilter(filters.None))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := doc.BeginPage(612, 792); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := doc.SaveState(); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetStrokeColor(layout.Color{R: 1}); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetLineWidth(2); err != nil {
		t.Fatal(err)
	}
	if err := doc.DrawLine(72, 100, 540, 100); err != nil {
		t.Fatal(err)
	}
	if err := doc.FillRect(72, 200, 100, 50); err != nil {
		t.Fatal(err)
	}
	if err := doc.RestoreState(); err != nil {
		t.Fatal(err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, _ := doc.Bytes()
	s := string(out)
	for _, want := range []string{"1 0 0 RG", "2 w", "72 100 m", "540 100 l", "S", "72 200 100 50 re", "f"} {
		if !strings.Contains(s, want) {
			t.Fatalf("content missing %q", want)
		}
	}
}
