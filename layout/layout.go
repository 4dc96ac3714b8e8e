// Package layout flows styled text into bounding boxes and lays out
// tables one row at a time. Both engines share the same word
// extraction and breaking primitives, emit content stream operators,
// and leave pagination decisions to the caller.
package layout

import (
	"github.com/pivotpdftools/pivot-pdf/contentstream"
	"github.com/pivotpdftools/pivot-pdf/fonts"
)

// WordBreak controls how words wider than the box are handled.
type WordBreak int

const (
	// BreakAll breaks wide words at a character boundary. Default.
	BreakAll WordBreak = iota
	// Hyphenate breaks wide words and inserts a hyphen.
	Hyphenate
	// Normal never breaks words; wide words overflow the box.
	Normal
)

// FitResult reports the outcome of a fit call.
type FitResult int

const (
	// Stop means all content has been placed.
	Stop FitResult = iota
	// BoxFull means the box filled up with content remaining.
	BoxFull
	// BoxEmpty means the box is too small to place anything.
	BoxEmpty
)

// Rect is a bounding box. (X, Y) is the upper-left corner in page
// coordinates; content flows downward from it.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Bottom returns the Y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y - r.Height }

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// TextStyle selects a font and size for a span of text.
type TextStyle struct {
	Font fonts.FontRef
	Size float64
}

type span struct {
	text  string
	style TextStyle
}

// TextFlow accumulates styled text and flows it into one box per fit
// call, resuming where the previous call stopped. The word list is
// derived from the spans on every call; the cursor stays valid across
// calls as long as the box width does not change between them.
type TextFlow struct {
	spans  []span
	cursor int

	// WordBreak applies to every word in the flow.
	WordBreak WordBreak
}

// NewTextFlow returns an empty flow with BreakAll word breaking.
func NewTextFlow() *TextFlow { return &TextFlow{} }

// AddText appends styled text to the flow.
func (f *TextFlow) AddText(text string, style TextStyle) {
	f.spans = append(f.spans, span{text: text, style: style})
}

// IsFinished reports whether every word has been placed.
func (f *TextFlow) IsFinished() bool {
	return f.cursor >= len(extractWords(f.spans))
}

// Fit places as much remaining text as fits into rect and returns the
// content stream operators, the outcome, and the fonts the operators
// reference. On BoxEmpty nothing is returned and the cursor does not
// move; a later call with a larger box picks up exactly where this one
// left off.
func (f *TextFlow) Fit(rect Rect, m Metrics) ([]byte, FitResult, []fonts.FontRef) {
	words := extractWords(f.spans)
	if f.WordBreak != Normal {
		words = breakWideWords(words, rect.Width, f.WordBreak, m)
	}
	if f.cursor >= len(words) {
		return nil, Stop, nil
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

	firstWord := words[f.cursor]
	firstLineHeight := m.LineHeight(firstWord.style.Font, firstWord.style.Size)
	if firstLineHeight > rect.Height {
		return nil, BoxEmpty, nil
	}

	cs.BeginText()

	// First baseline sits one font size below the top edge, a close
	// stand-in for the ascent.
	firstBaselineY := rect.Y - firstWord.style.Size
	currentY := firstBaselineY
	isFirstLine := true
	anyTextPlaced := false

	var activeStyle TextStyle
	haveActive := false

	for f.cursor < len(words) {
		lineHeight := m.LineHeight(words[f.cursor].style.Font, words[f.cursor].style.Size)

		if !isFirstLine {
			if currentY-lineHeight < rect.Bottom() {
				cs.EndText()
				return cs.Bytes(), BoxFull, usedOrder
			}
		}

		lineStart := f.cursor
		lineWidth := 0.0
		lineEnd := f.cursor

		for lineEnd < len(words) {
			w := words[lineEnd]
			if w.text == "\n" {
				lineEnd++
				break
			}
			wordWidth := m.Measure(w.style.Font, w.text, w.style.Size)
			spaceWidth := 0.0
			if w.leadingSpace {
				spaceWidth = m.Measure(w.style.Font, " ", w.style.Size)
			}
			total := lineWidth + spaceWidth + wordWidth
			if total > rect.Width && lineEnd > lineStart {
				break
			}
			if total > rect.Width && lineEnd == lineStart {
				if !anyTextPlaced {
					return nil, BoxEmpty, nil
				}
				// A single overlong word with text already placed:
				// put it on its own line and let it overflow.
				lineEnd++
				break
			}
			lineWidth = total
			lineEnd++
		}

		if lineEnd == lineStart {
			break
		}

		if isFirstLine {
			cs.Td(rect.X, firstBaselineY)
			isFirstLine = false
		} else {
			cs.Td(0, -lineHeight)
			currentY -= lineHeight
		}

		for i := lineStart; i < lineEnd; i++ {
			w := words[i]
			if w.text == "\n" {
				continue
			}
			if !haveActive || activeStyle != w.style {
				cs.SetFont(m.ResourceName(w.style.Font), w.style.Size)
				activeStyle = w.style
				haveActive = true
				recordUse(w.style.Font)
			}
			display := w.text
			if w.leadingSpace && i != lineStart {
				display = " " + display
			}
			showText(cs, m, w.style.Font, display)
		}

		anyTextPlaced = true
		f.cursor = lineEnd
	}

	cs.EndText()

	result := BoxFull
	if f.cursor >= len(words) {
		result = Stop
	}
	return cs.Bytes(), result, usedOrder
}

// showText emits one run of text with the encoding the font requires.
func showText(cs *contentstream.Writer, m Metrics, ref fonts.FontRef, text string) {
	enc := m.Encode(ref, text)
	if enc.Hex {
		cs.ShowHex(enc.Bytes)
	} else {
		cs.ShowLiteral(enc.Bytes)
	}
}
