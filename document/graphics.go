package document

import "github.com/pivotpdftools/pivot-pdf/layout"

// Drawing primitives. All of them require an open page and use PDF's
// bottom-left origin.

// SaveState pushes the graphics state.
func (d *Document) SaveState() error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Save()
	return nil
}

// RestoreState pops the graphics state.
func (d *Document) RestoreState() error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Restore()
	return nil
}

// SetFillColor sets the nonstroking color.
func (d *Document) SetFillColor(c layout.Color) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.SetFillRGB(c.R, c.G, c.B)
	return nil
}

// SetStrokeColor sets the stroking color.
func (d *Document) SetStrokeColor(c layout.Color) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.SetStrokeRGB(c.R, c.G, c.B)
	return nil
}

// SetLineWidth sets the stroke width in points.
func (d *Document) SetLineWidth(width float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.SetLineWidth(width)
	return nil
}

// DrawLine strokes a line between two points.
func (d *Document) DrawLine(x1, y1, x2, y2 float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.MoveTo(x1, y1)
	page.cs.LineTo(x2, y2)
	page.cs.Stroke()
	return nil
}

// StrokeRect strokes a rectangle outline.
func (d *Document) StrokeRect(x, y, width, height float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Rect(x, y, width, height)
	page.cs.Stroke()
	return nil
}

// FillRect fills a rectangle with the current fill color.
func (d *Document) FillRect(x, y, width, height float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Rect(x, y, width, height)
	page.cs.Fill()
	return nil
}

// MoveTo starts a new subpath at (x, y).
func (d *Document) MoveTo(x, y float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.MoveTo(x, y)
	return nil
}

// LineTo appends a line segment to the current subpath.
func (d *Document) LineTo(x, y float64) error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.LineTo(x, y)
	return nil
}

// ClosePath closes the current subpath.
func (d *Document) ClosePath() error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.ClosePath()
	return nil
}

// StrokePath strokes the current path.
func (d *Document) StrokePath() error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Stroke()
	return nil
}

// FillPath fills the current path.
func (d *Document) FillPath() error {
	page, err := d.openPage()
	if err != nil {
		return err
	}
	page.cs.Fill()
	return nil
}
