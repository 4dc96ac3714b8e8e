package document

import (
	"fmt"

	"github.com/pivotpdftools/pivot-pdf/fonts"
	"github.com/pivotpdftools/pivot-pdf/layout"
)

// PlaceText places a single line of text at (x, y) in 12pt Helvetica.
// Coordinates use PDF's bottom-left origin; y is the baseline.
func (d *Document) PlaceText(text string, x, y float64) error {
	style := layout.TextStyle{Font: d.fonts.Standard(fonts.Helvetica), Size: 12}
	return d.PlaceTextStyled(text, x, y, style)
}

// PlaceTextStyled places a single line of text at (x, y) with the
// given style. No wrapping happens; use a TextFlow for that.
func (d *Document) PlaceTextStyled(text string, x, y float64, style layout.TextStyle) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	if err := d.useFont(style.Font); err != nil {
		return fmt.Errorf("place text: %w", err)
	}
	cs := page.cs
	cs.BeginText()
	cs.SetFont(d.fonts.ResourceName(style.Font), style.Size)
	cs.Td(x, y)
	enc := d.fonts.Encode(style.Font, text)
	if enc.Hex {
		cs.ShowHex(enc.Bytes)
	} else {
		cs.ShowLiteral(enc.Bytes)
	}
	cs.EndText()
	return nil
}

// FitTextFlow flows as much of the remaining flow content as fits
// into rect on the open page. The flow's cursor advances, so the next
// call (usually on the next page) resumes where this one stopped.
func (d *Document) FitTextFlow(flow *layout.TextFlow, rect layout.Rect) (layout.FitResult, error) {
	page, err := d.openPage()
	if err != nil {
		return layout.BoxEmpty, err
	}
	ops, result, used := flow.Fit(rect, d.fonts)
	return result, d.appendOps(page, ops, used)
}

// FitTextBox fits the flow into a single box under an overflow
// policy: flow on, clip the remainder, or shrink until it fits.
func (d *Document) FitTextBox(flow *layout.TextFlow, rect layout.Rect, policy layout.Overflow) (layout.FitResult, error) {
	page, err := d.openPage()
	if err != nil {
		return layout.BoxEmpty, err
	}
	ops, result, used := flow.FitBox(rect, d.fonts, policy)
	return result, d.appendOps(page, ops, used)
}

// FitRow lays out one table row at the cursor on the open page. See
// layout.Table.FitRow for the outcome contract.
func (d *Document) FitRow(table *layout.Table, row layout.Row, cursor *layout.TableCursor) (layout.FitResult, error) {
	page, err := d.openPage()
	if err != nil {
		return layout.BoxEmpty, err
	}
	ops, result, used := table.FitRow(row, cursor, d.fonts)
	return result, d.appendOps(page, ops, used)
}

func (d *Document) appendOps(page *pageBuilder, ops []byte, used []fonts.FontRef) error {
	for _, ref := range used {
		if err := d.useFont(ref); err != nil {
			return err
		}
	}
	page.cs.Append(ops)
	return nil
}
