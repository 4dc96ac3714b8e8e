package layout

import (
	"strings"

	"github.com/pivotpdftools/pivot-pdf/contentstream"
	"github.com/pivotpdftools/pivot-pdf/fonts"
)

// CellOverflow controls text that exceeds a fixed cell height.
type CellOverflow int

const (
	// Wrap lets the row grow to fit its content. Default.
	Wrap CellOverflow = iota
	// Clip word-wraps but clips to the row's fixed height.
	Clip
	// Shrink reduces the font size until the text fits the fixed
	// height, down to the size floor.
	Shrink
)

// HAlign is the horizontal alignment of cell text.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// CellStyle carries the visual options of one cell.
type CellStyle struct {
	// Background overrides the row background when set.
	Background *Color
	// TextColor defaults to black when nil.
	TextColor *Color
	Font      fonts.FontRef
	Size      float64
	// Padding applies to all four sides.
	Padding   float64
	Overflow  CellOverflow
	WordBreak WordBreak
	Align     HAlign
}

// NewCellStyle returns the default cell style for a font: 10pt, 4pt
// padding, wrapping rows, character-boundary word breaking.
func NewCellStyle(font fonts.FontRef) CellStyle {
	return CellStyle{Font: font, Size: 10, Padding: 4}
}

// Cell is one table cell.
type Cell struct {
	Text  string
	Style CellStyle
}

// Row is one table row. Height 0 means auto height from content,
// which is what Wrap overflow requires; Clip and Shrink need a fixed
// height. A per-cell background takes priority over the row's.
type Row struct {
	Cells      []Cell
	Background *Color
	Height     float64
}

// Table holds column widths and visual configuration; it stores no row
// data. Callers feed rows to FitRow one at a time, so a dataset can
// stream through without being buffered.
type Table struct {
	Columns      []float64
	DefaultStyle CellStyle
	BorderColor  Color
	// BorderWidth 0 disables borders.
	BorderWidth float64
}

// NewTable returns a table layout with black half-point borders.
func NewTable(columns []float64, style CellStyle) *Table {
	return &Table{
		Columns:      columns,
		DefaultStyle: style,
		BorderWidth:  0.5,
	}
}

// Width returns the total width of all columns.
func (t *Table) Width() float64 {
	total := 0.0
	for _, w := range t.Columns {
		total += w
	}
	return total
}

// TableCursor tracks where the next row lands inside a page's table
// area. Create one per table area, Reset it when a new page starts,
// and use IsFirstRow to decide whether to repeat a header row.
type TableCursor struct {
	rect     Rect
	currentY float64
	firstRow bool
}

// NewTableCursor returns a cursor at the top of rect.
func NewTableCursor(rect Rect) *TableCursor {
	return &TableCursor{rect: rect, currentY: rect.Y, firstRow: true}
}

// Reset moves the cursor to the top of a new rect.
func (c *TableCursor) Reset(rect Rect) {
	c.rect = rect
	c.currentY = rect.Y
	c.firstRow = true
}

// IsFirstRow reports whether nothing has been placed on this page yet.
func (c *TableCursor) IsFirstRow() bool { return c.firstRow }

// CurrentY returns where the next row's top edge would be. After the
// last row it is the table's bottom edge, which is where following
// content (a totals block, say) belongs.
func (c *TableCursor) CurrentY() float64 { return c.currentY }

// FitRow lays out a single row at the cursor and returns the content
// stream operators, the outcome and the fonts used. Stop means the row
// was placed and the cursor advanced. BoxFull means the page is full;
// re-issue the same row on the next page. BoxEmpty means the row can
// never fit this rect even on a fresh page.
func (t *Table) FitRow(row Row, cursor *TableCursor, m Metrics) ([]byte, FitResult, []fonts.FontRef) {
	rowHeight := t.measureRowHeight(row, m)

	if cursor.currentY-rowHeight < cursor.rect.Bottom() {
		if cursor.firstRow {
			return nil, BoxEmpty, nil
		}
		return nil, BoxFull, nil
	}

	cs := contentstream.New()
	var usedOrder []fonts.FontRef
	usedSet := make(map[fonts.FontRef]struct{})
	recordUse := func(ref fonts.FontRef) {
		if _, ok := usedSet[ref]; !ok {
			usedSet[ref] = struct{}{}
			usedOrder = append(usedOrder, ref)
		}
	}

	t.drawRowBackgrounds(cs, row, cursor.rect.X, cursor.currentY, rowHeight)

	colX := cursor.rect.X
	for colIdx, colWidth := range t.Columns {
		if colIdx < len(row.Cells) {
			t.renderCell(cs, row.Cells[colIdx], colX, cursor.currentY, colWidth, rowHeight, m, recordUse)
		}
		colX += colWidth
	}

	if t.BorderWidth > 0 {
		t.drawRowBorders(cs, cursor.rect.X, cursor.currentY, rowHeight)
	}

	cursor.currentY -= rowHeight
	cursor.firstRow = false
	return cs.Bytes(), Stop, usedOrder
}

// measureRowHeight returns the fixed height when set, otherwise the
// tallest cell. Columns with no cell contribute one default line plus
// padding.
func (t *Table) measureRowHeight(row Row, m Metrics) float64 {
	if row.Height > 0 {
		return row.Height
	}
	max := 0.0
	for colIdx, colWidth := range t.Columns {
		var h float64
		if colIdx < len(row.Cells) {
			cell := row.Cells[colIdx]
			h = measureCellHeight(cell.Text, cell.Style, colWidth, m)
		} else {
			h = m.LineHeight(t.DefaultStyle.Font, t.DefaultStyle.Size) + 2*t.DefaultStyle.Padding
		}
		if h > max {
			max = h
		}
	}
	return max
}

func measureCellHeight(text string, style CellStyle, colWidth float64, m Metrics) float64 {
	availWidth := colWidth - 2*style.Padding
	ts := TextStyle{Font: style.Font, Size: style.Size}
	lh := m.LineHeight(ts.Font, ts.Size)
	lines := countLines(text, availWidth, ts, style.WordBreak, m)
	return float64(lines)*lh + 2*style.Padding
}

// countLines computes how many wrapped lines text occupies.
func countLines(text string, availWidth float64, style TextStyle, mode WordBreak, m Metrics) int {
	if text == "" {
		return 1
	}
	total := 0
	for _, para := range strings.Split(text, "\n") {
		total += countParagraphLines(para, availWidth, style, mode, m)
	}
	if total < 1 {
		return 1
	}
	return total
}

func countParagraphLines(text string, availWidth float64, style TextStyle, mode WordBreak, m Metrics) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 1
	}
	lines := 1
	lineWidth := 0.0

	for _, w := range strings.Fields(text) {
		wordW := m.Measure(style.Font, w, style.Size)
		spaceW := 0.0
		if lineWidth > 0 {
			spaceW = m.Measure(style.Font, " ", style.Size)
		}
		needed := lineWidth + spaceW + wordW

		switch {
		case needed > availWidth && lineWidth > 0:
			lines++
			lineWidth = wordW
			if mode != Normal && wordW > availWidth {
				pieces := breakWord(w, availWidth, style, mode, m)
				lines += len(pieces) - 1
				lineWidth = m.Measure(style.Font, pieces[len(pieces)-1], style.Size)
			}
		case mode != Normal && wordW > availWidth:
			pieces := breakWord(w, availWidth, style, mode, m)
			lines += len(pieces) - 1
			lineWidth = m.Measure(style.Font, pieces[len(pieces)-1], style.Size)
		default:
			lineWidth = needed
		}
	}
	return lines
}

// wrapText word-wraps text into lines that fit availWidth.
func wrapText(text string, availWidth float64, style TextStyle, mode WordBreak, m Metrics) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = wrapParagraph(strings.TrimSpace(para), availWidth, style, mode, m, lines)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func wrapParagraph(text string, availWidth float64, style TextStyle, mode WordBreak, m Metrics, out []string) []string {
	if text == "" {
		return append(out, "")
	}
	currentLine := ""
	lineWidth := 0.0

	placeWord := func(w string) {
		wordW := m.Measure(style.Font, w, style.Size)
		if wordW <= availWidth || mode == Normal {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += w
			lineWidth += wordW
			return
		}
		pieces := breakWord(w, availWidth, style, mode, m)
		for i, piece := range pieces {
			if i < len(pieces)-1 {
				out = append(out, piece)
			} else {
				currentLine = piece
				lineWidth = m.Measure(style.Font, piece, style.Size)
			}
		}
	}

	for _, w := range strings.Fields(text) {
		wordW := m.Measure(style.Font, w, style.Size)
		spaceW := 0.0
		if currentLine != "" {
			spaceW = m.Measure(style.Font, " ", style.Size)
		}
		needed := lineWidth + spaceW + wordW

		switch {
		case needed > availWidth && currentLine != "":
			out = append(out, currentLine)
			currentLine = ""
			lineWidth = 0
			placeWord(w)
		case wordW > availWidth && mode != Normal && currentLine == "":
			placeWord(w)
		default:
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += w
			lineWidth = needed
		}
	}
	if currentLine != "" {
		out = append(out, currentLine)
	}
	return out
}

func (t *Table) drawRowBackgrounds(cs *contentstream.Writer, row Row, rowX, rowTop, rowHeight float64) {
	rowBottom := rowTop - rowHeight

	if row.Background != nil {
		bg := *row.Background
		cs.SetFillRGB(bg.R, bg.G, bg.B)
		cs.Rect(rowX, rowBottom, t.Width(), rowHeight)
		cs.Fill()
	}

	colX := rowX
	for colIdx, colWidth := range t.Columns {
		if colIdx < len(row.Cells) {
			if bg := row.Cells[colIdx].Style.Background; bg != nil {
				cs.SetFillRGB(bg.R, bg.G, bg.B)
				cs.Rect(colX, rowBottom, colWidth, rowHeight)
				cs.Fill()
			}
		}
		colX += colWidth
	}
}

// drawRowBorders strokes the outer rectangle and the interior column
// dividers inside a saved graphics state.
func (t *Table) drawRowBorders(cs *contentstream.Writer, rowX, rowTop, rowHeight float64) {
	rowBottom := rowTop - rowHeight

	cs.Save()
	cs.SetStrokeRGB(t.BorderColor.R, t.BorderColor.G, t.BorderColor.B)
	cs.SetLineWidth(t.BorderWidth)
	cs.Rect(rowX, rowBottom, t.Width(), rowHeight)
	cs.Stroke()

	colX := rowX
	for i := 0; i < len(t.Columns)-1; i++ {
		colX += t.Columns[i]
		cs.MoveTo(colX, rowTop)
		cs.LineTo(colX, rowBottom)
		cs.Stroke()
	}
	cs.Restore()
}

// renderCell emits one cell's text inside its own q/Q pair so clip
// regions and color changes stay contained. The fill color is always
// set explicitly; without that, the color left over from background
// fills would bleed into the glyphs.
func (t *Table) renderCell(cs *contentstream.Writer, cell Cell, cellX, rowTop, colWidth, rowHeight float64, m Metrics, recordUse func(fonts.FontRef)) {
	style := cell.Style
	availWidth := colWidth - 2*style.Padding
	if availWidth < 0 {
		availWidth = 0
	}
	availHeight := rowHeight - 2*style.Padding
	if availHeight < 0 {
		availHeight = 0
	}

	size := style.Size
	if style.Overflow == Shrink {
		size = shrinkFontSize(cell.Text, style, availWidth, availHeight, m)
	}
	ts := TextStyle{Font: style.Font, Size: size}
	lh := m.LineHeight(ts.Font, ts.Size)
	lines := wrapText(cell.Text, availWidth, ts, style.WordBreak, m)

	cs.Save()
	if style.Overflow == Clip {
		cs.ClipRect(cellX, rowTop-rowHeight, colWidth, rowHeight)
	}

	textX := cellX + style.Padding
	firstLineY := rowTop - style.Padding - size

	cs.BeginText()

	textColor := Color{}
	if style.TextColor != nil {
		textColor = *style.TextColor
	}
	cs.SetFillRGB(textColor.R, textColor.G, textColor.B)
	cs.SetFont(m.ResourceName(ts.Font), size)
	recordUse(ts.Font)

	prevOffset := 0.0
	for i, line := range lines {
		offset := t.alignOffset(line, ts, style.Align, availWidth, m)
		if i == 0 {
			cs.Td(textX+offset, firstLineY)
		} else {
			cs.Td(offset-prevOffset, -lh)
		}
		prevOffset = offset
		if line != "" {
			showText(cs, m, ts.Font, line)
		}
	}

	cs.EndText()
	cs.Restore()
}

func (t *Table) alignOffset(line string, ts TextStyle, align HAlign, availWidth float64, m Metrics) float64 {
	if align == AlignLeft || line == "" {
		return 0
	}
	slack := availWidth - m.Measure(ts.Font, line, ts.Size)
	if slack <= 0 {
		return 0
	}
	if align == AlignCenter {
		return slack / 2
	}
	return slack
}

// shrinkFontSize reduces the size in half-point steps until the text
// fits the available box, stopping at the floor. Width only constrains
// the search when words cannot be broken; otherwise any word can wrap.
func shrinkFontSize(text string, style CellStyle, availWidth, availHeight float64, m Metrics) float64 {
	size := style.Size
	for {
		ts := TextStyle{Font: style.Font, Size: size}
		lh := m.LineHeight(ts.Font, ts.Size)
		lines := countLines(text, availWidth, ts, style.WordBreak, m)
		fitsHeight := float64(lines)*lh <= availHeight
		fitsWidth := true
		if style.WordBreak == Normal {
			for _, w := range strings.Fields(text) {
				if m.Measure(ts.Font, w, ts.Size) > availWidth {
					fitsWidth = false
					break
				}
			}
		}
		if (fitsHeight && fitsWidth) || size <= minFontSize {
			return size
		}
		size -= shrinkStep
		if size < minFontSize {
			size = minFontSize
		}
	}
}
