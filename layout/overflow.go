package layout

import "github.com/pivotpdftools/pivot-pdf/fonts"

// Overflow selects what happens when a flow is fitted to a single box
// rather than flowed across pages.
type Overflow int

const (
	// OverflowFlow leaves the remainder for the next fit call.
	OverflowFlow Overflow = iota
	// OverflowClip drops whatever does not fit.
	OverflowClip
	// OverflowShrink reduces every span's font size in half-point
	// steps until the whole flow fits, down to a floor.
	OverflowShrink
)

const (
	minFontSize = 4.0
	shrinkStep  = 0.5
)

// FitBox fits the flow into a single box under an overflow policy.
// With OverflowFlow it behaves exactly like Fit. With OverflowClip a
// BoxFull outcome consumes the remainder and reports Stop. With
// OverflowShrink span sizes are reduced first until the remaining
// content fits or the size floor is reached, then the (possibly still
// overfull) flow is placed.
func (f *TextFlow) FitBox(rect Rect, m Metrics, policy Overflow) ([]byte, FitResult, []fonts.FontRef) {
	if policy == OverflowShrink {
		for !f.wholeFits(rect, m) && f.maxSize() > minFontSize {
			f.shrinkSpans()
		}
	}
	ops, result, used := f.Fit(rect, m)
	if policy == OverflowClip && result == BoxFull {
		f.cursor = len(extractWords(f.spans))
		result = Stop
	}
	return ops, result, used
}

// wholeFits dry-runs the remaining content against rect on a copy.
func (f *TextFlow) wholeFits(rect Rect, m Metrics) bool {
	clone := &TextFlow{
		spans:     append([]span(nil), f.spans...),
		cursor:    f.cursor,
		WordBreak: f.WordBreak,
	}
	_, result, _ := clone.Fit(rect, m)
	return result == Stop
}

func (f *TextFlow) maxSize() float64 {
	max := 0.0
	for _, sp := range f.spans {
		if sp.style.Size > max {
			max = sp.style.Size
		}
	}
	return max
}

func (f *TextFlow) shrinkSpans() {
	for i := range f.spans {
		size := f.spans[i].style.Size - shrinkStep
		if size < minFontSize {
			size = minFontSize
		}
		f.spans[i].style.Size = size
	}
}
