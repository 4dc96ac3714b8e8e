package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pivotpdftools/pivot-pdf/fonts"
)

func TestFitPlacesAllTextInLargeBox(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	flow.AddText("a handful of words that fit comfortably", style)

	rect := Rect{X: 72, Y: 700, Width: 400, Height: 600}
	ops, result, used := flow.Fit(rect, r)
	if result != Stop {
		t.Fatalf("result = %v, want Stop", result)
	}
	if !flow.IsFinished() {
		t.Fatal("flow not finished after Stop")
	}
	if len(used) != 1 {
		t.Fatalf("used fonts = %d, want 1", len(used))
	}
	out := string(ops)
	if !strings.HasPrefix(out, "BT\n") || !strings.HasSuffix(out, "ET\n") {
		t.Fatalf("ops not wrapped in text object: %q", out)
	}
	if !strings.Contains(out, "(a handful of words that fit comfortably) Tj") {
		t.Fatalf("single-line text split unexpectedly: %q", out)
	}
}

func TestFitBoxEmptyDoesNotAdvance(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	flow.AddText("content", style)

	// Too short for even one line.
	rect := Rect{X: 0, Y: 100, Width: 200, Height: 5}
	ops, result, _ := flow.Fit(rect, r)
	if result != BoxEmpty {
		t.Fatalf("result = %v, want BoxEmpty", result)
	}
	if len(ops) != 0 {
		t.Fatalf("BoxEmpty emitted %d bytes of ops", len(ops))
	}
	if flow.cursor != 0 {
		t.Fatalf("cursor moved to %d on BoxEmpty", flow.cursor)
	}

	// The same flow placed into an adequate box starts from the top.
	_, result, _ = flow.Fit(Rect{X: 0, Y: 100, Width: 200, Height: 50}, r)
	if result != Stop {
		t.Fatalf("retry result = %v, want Stop", result)
	}
}

func TestFitResumesAcrossBoxes(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("lorem ipsum dolor sit amet ")
	}
	flow.AddText(b.String(), style)

	rect := Rect{X: 72, Y: 700, Width: 300, Height: 100}
	var pages int
	for !flow.IsFinished() {
		_, result, _ := flow.Fit(rect, r)
		pages++
		if result == BoxEmpty {
			t.Fatal("unexpected BoxEmpty")
		}
		if pages > 100 {
			t.Fatal("flow did not terminate")
		}
	}
	if pages < 2 {
		t.Fatalf("expected multi-box flow, got %d boxes", pages)
	}
}

// The words that come out of a paginated flow must be exactly the
// words of a single-box flow: pagination must not change content.
func TestPaginationInvariance(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	text := "one two three four five six seven eight nine ten " +
		"eleven twelve thirteen fourteen fifteen sixteen"

	collect := func(height float64) string {
		flow := NewTextFlow()
		flow.AddText(text, style)
		var all bytes.Buffer
		rect := Rect{X: 0, Y: 700, Width: 150, Height: height}
		for i := 0; !flow.IsFinished(); i++ {
			ops, result, _ := flow.Fit(rect, r)
			all.Write(ops)
			if result == BoxEmpty || i > 50 {
				t.Fatalf("flow stuck (result %v)", result)
			}
		}
		return extractShownText(all.String())
	}

	onePass := collect(1000)
	paged := collect(40)
	if onePass != paged {
		t.Fatalf("pagination changed content:\n one-pass: %q\n paged:    %q", onePass, paged)
	}
}

// extractShownText pulls the literal strings out of Tj operators.
func extractShownText(ops string) string {
	var b strings.Builder
	for _, line := range strings.Split(ops, "\n") {
		if strings.HasSuffix(line, " Tj") && strings.HasPrefix(line, "(") {
			b.WriteString(strings.TrimSuffix(strings.TrimPrefix(line, "("), ") Tj"))
		}
	}
	return b.String()
}

func TestFitNewlineForcesBreak(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	flow.AddText("first\nsecond", style)

	ops, result, _ := flow.Fit(Rect{X: 0, Y: 700, Width: 400, Height: 200}, r)
	if result != Stop {
		t.Fatalf("result = %v, want Stop", result)
	}
	out := string(ops)
	if !strings.Contains(out, "(first) Tj") || !strings.Contains(out, "(second) Tj") {
		t.Fatalf("lines not split at newline: %q", out)
	}
	if n := strings.Count(out, " Td\n"); n != 2 {
		t.Fatalf("Td count = %d, want 2 (one per line)", n)
	}
}

func TestFitMidLineStyleChangeOnlySwitchesFont(t *testing.T) {
	r := fonts.NewRegistry()
	regular := testStyle(r)
	bold := TextStyle{Font: r.Standard(fonts.HelveticaBold), Size: 12}

	flow := NewTextFlow()
	flow.AddText("this is bold ", bold)
	flow.AddText("and this is not", regular)

	ops, result, used := flow.Fit(Rect{X: 0, Y: 700, Width: 500, Height: 100}, r)
	if result != Stop {
		t.Fatalf("result = %v, want Stop", result)
	}
	out := string(ops)
	if n := strings.Count(out, " Td\n"); n != 1 {
		t.Fatalf("Td count = %d, want 1 (single line)", n)
	}
	if n := strings.Count(out, " Tf\n"); n != 2 {
		t.Fatalf("Tf count = %d, want 2 (style change mid-line)", n)
	}
	// The separating space must survive the span boundary.
	if !strings.Contains(out, "( and) Tj") {
		t.Fatalf("lost inter-span space: %q", out)
	}
	if len(used) != 2 {
		t.Fatalf("used fonts = %d, want 2", len(used))
	}
}

func TestFitWordBreakNormalOverflows(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	flow.WordBreak = Normal
	flow.AddText("tiny incomprehensibilities end", style)

	wide := r.Measure(style.Font, "incomprehensibilities", style.Size)
	ops, result, _ := flow.Fit(Rect{X: 0, Y: 700, Width: wide - 20, Height: 200}, r)
	if result != Stop {
		t.Fatalf("result = %v, want Stop", result)
	}
	// Word must be emitted whole, overflowing its line.
	if !strings.Contains(string(ops), "(incomprehensibilities) Tj") {
		t.Fatalf("wide word was altered: %q", ops)
	}
}

func TestFitBoxClipConsumesRemainder(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("overflowing content ")
	}
	flow.AddText(b.String(), style)

	rect := Rect{X: 0, Y: 700, Width: 200, Height: 40}
	_, result, _ := flow.FitBox(rect, r, OverflowClip)
	if result != Stop {
		t.Fatalf("result = %v, want Stop after clip", result)
	}
	if !flow.IsFinished() {
		t.Fatal("clipped flow still has content")
	}
}

func TestFitBoxShrinkReducesSize(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("squeeze this text down ")
	}
	flow.AddText(b.String(), style)

	rect := Rect{X: 0, Y: 700, Width: 200, Height: 120}
	ops, result, _ := flow.FitBox(rect, r, OverflowShrink)
	if result != Stop {
		t.Fatalf("result = %v, want Stop after shrink", result)
	}
	out := string(ops)
	if strings.Contains(out, " 12 Tf") {
		t.Fatalf("font size did not shrink: %q", out)
	}
}

func TestFitBoxShrinkRespectsFloor(t *testing.T) {
	r := fonts.NewRegistry()
	style := testStyle(r)
	flow := NewTextFlow()
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("far too much text ")
	}
	flow.AddText(b.String(), style)

	rect := Rect{X: 0, Y: 700, Width: 100, Height: 50}
	flow.FitBox(rect, r, OverflowShrink)
	for _, sp := range flow.spans {
		if sp.style.Size < minFontSize {
			t.Fatalf("span shrunk below floor: %v", sp.style.Size)
		}
	}
}
