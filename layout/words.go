package layout

import "github.com/pivotpdftools/pivot-pdf/fonts"

// Metrics provides the font measurements and encodings layout needs.
// *fonts.Registry satisfies it.
type Metrics interface {
	Measure(ref fonts.FontRef, text string, size float64) float64
	LineHeight(ref fonts.FontRef, size float64) float64
	Encode(ref fonts.FontRef, text string) fonts.Encoded
	ResourceName(ref fonts.FontRef) string
}

// word is a layout unit extracted from styled spans. A text of "\n"
// marks a forced line break.
type word struct {
	text         string
	style        TextStyle
	leadingSpace bool
}

// extractWords splits spans on spaces, preserving newlines as their
// own entries. The output is a pure function of the spans, which is
// what keeps the flow cursor valid across fit calls.
func extractWords(spans []span) []word {
	var words []word
	hadSpace := false
	for _, sp := range spans {
		runes := []rune(sp.text)
		i := 0
		for i < len(runes) {
			for i < len(runes) && runes[i] == ' ' {
				hadSpace = true
				i++
			}
			if i < len(runes) && runes[i] == '\n' {
				i++
				words = append(words, word{text: "\n", style: sp.style})
				hadSpace = false
				continue
			}
			start := i
			for i < len(runes) && runes[i] != ' ' && runes[i] != '\n' {
				i++
			}
			if i > start {
				words = append(words, word{
					text:         string(runes[start:i]),
					style:        sp.style,
					leadingSpace: hadSpace && len(words) > 0,
				})
				hadSpace = false
			}
		}
	}
	return words
}

// breakWideWords splits any word wider than maxWidth into pieces that
// fit. Words that fit pass through unchanged. Deterministic for a
// given maxWidth, so cursor indexes stay valid across calls as long as
// the caller keeps the box width stable.
func breakWideWords(words []word, maxWidth float64, mode WordBreak, m Metrics) []word {
	result := make([]word, 0, len(words))
	for _, w := range words {
		if w.text == "\n" {
			result = append(result, w)
			continue
		}
		if m.Measure(w.style.Font, w.text, w.style.Size) <= maxWidth {
			result = append(result, w)
			continue
		}
		pieces := breakWord(w.text, maxWidth, w.style, mode, m)
		for i, piece := range pieces {
			result = append(result, word{
				text:         piece,
				style:        w.style,
				leadingSpace: i == 0 && w.leadingSpace,
			})
		}
	}
	return result
}

// breakWord splits a single word into pieces that each fit within
// availWidth. At least one piece is returned and every iteration
// consumes at least one rune, so progress is guaranteed even in a
// pathologically narrow box. Hyphenate mode appends '-' to every
// piece except the last and reserves its width up front.
func breakWord(text string, availWidth float64, style TextStyle, mode WordBreak, m Metrics) []string {
	hyphenW := 0.0
	if mode == Hyphenate {
		hyphenW = m.Measure(style.Font, "-", style.Size)
	}
	var pieces []string
	remaining := []rune(text)

	for len(remaining) > 0 {
		budget := availWidth - hyphenW
		prefixEnd := 0
		prefixWidth := 0.0

		for i := range remaining {
			chW := m.Measure(style.Font, string(remaining[:i+1]), style.Size) - prefixWidth
			if prefixWidth+chW > budget && prefixEnd > 0 {
				break
			}
			prefixWidth += chW
			prefixEnd = i + 1
			if prefixWidth >= budget {
				break
			}
		}
		if prefixEnd == 0 {
			prefixEnd = 1
		}

		isLast := prefixEnd >= len(remaining)
		piece := string(remaining[:prefixEnd])
		if !isLast && mode == Hyphenate {
			piece += "-"
		}
		pieces = append(pieces, piece)
		remaining = remaining[prefixEnd:]
	}
	return pieces
}
