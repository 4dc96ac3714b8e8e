package fonts

// StandardFont selects one of the built-in Type1 fonts every viewer
// ships. Widths come from the Adobe AFM data for the printable ASCII
// range; everything else falls back to a default advance.
type StandardFont int

const (
	Helvetica StandardFont = iota
	HelveticaBold
	Courier
	CourierBold
)

// BaseName returns the PDF /BaseFont name.
func (f StandardFont) BaseName() string {
	switch f {
	case HelveticaBold:
		return "Helvetica-Bold"
	case Courier:
		return "Courier"
	case CourierBold:
		return "Courier-Bold"
	default:
		return "Helvetica"
	}
}

// defaultWidth is used for characters outside the mapped range, in
// 1/1000 em.
const defaultWidth = 278

// courierWidth is the fixed advance of the Courier faces.
const courierWidth = 600

// charWidth returns the advance of ch in 1/1000 em.
func (f StandardFont) charWidth(ch rune) int {
	if f == Courier || f == CourierBold {
		return courierWidth
	}
	if ch < 32 || ch > 126 {
		return defaultWidth
	}
	switch f {
	case HelveticaBold:
		return int(helveticaBoldWidths[ch-32])
	default:
		return int(helveticaWidths[ch-32])
	}
}

func (f StandardFont) measure(text string, size float64) float64 {
	total := 0
	for _, ch := range text {
		total += f.charWidth(ch)
	}
	return float64(total) * size / 1000.0
}

// Adobe Helvetica AFM widths, ASCII 32..126, in 1/1000 em.
var helveticaWidths = [95]uint16{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278,
	333, 278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	278, 278, 584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611,
	778, 722, 278, 500, 667, 556, 833, 722, 778, 667, 778, 722, 667,
	611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556, 333,
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833,
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500,
	334, 260, 334, 584,
}

// Adobe Helvetica-Bold AFM widths, ASCII 32..126, in 1/1000 em.
var helveticaBoldWidths = [95]uint16{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278,
	333, 278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	333, 333, 584, 584, 584, 611, 975, 722, 722, 722, 722, 667, 611,
	778, 722, 278, 556, 722, 611, 833, 722, 778, 667, 778, 722, 667,
	611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556, 333,
	556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889,
	611, 611, 611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500,
	389, 280, 389, 584,
}
