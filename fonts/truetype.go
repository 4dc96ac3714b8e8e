package fonts

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	gofont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/pivotpdftools/pivot-pdf/ir/raw"
	"github.com/pivotpdftools/pivot-pdf/writer"
)

// trueTypeFont is a parsed embedded font. Metrics are extracted once
// at load; glyph usage accumulates as text is encoded and drives the
// deferred width array and ToUnicode map.
type trueTypeFont struct {
	data   []byte
	face   *gofont.Face
	psName string
	upem   uint16

	// Descriptor values in 1/1000 em.
	ascent      float64
	descent     float64
	capHeight   float64
	bbox        [4]float64
	italicAngle float64
	flags       int
	stemV       int

	defaultWidth int
	widthCache   map[uint16]int

	used      map[uint16]struct{}
	toUnicode map[uint16]rune

	name string        // content-stream resource name
	obj  raw.ObjectRef // pre-allocated Type0 identity
}

func parseTrueType(data []byte) (*trueTypeFont, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse sfnt: %w", err)
	}
	upem := sf.UnitsPerEm()
	if upem == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse glyph tables: %w", err)
	}

	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(upem << 6)

	psName, _ := sf.Name(buf, sfnt.NameIDPostScript)
	if psName == "" {
		if family, _ := sf.Name(buf, sfnt.NameIDFamily); family != "" {
			psName = strings.ReplaceAll(family, " ", "")
		} else {
			psName = "Embedded"
		}
	}

	metrics, err := sf.Metrics(buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	bounds, err := sf.Bounds(buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font bounds: %w", err)
	}

	tt := &trueTypeFont{
		data:       data,
		face:       face,
		psName:     psName,
		upem:       uint16(upem),
		ascent:     scaleFixed(metrics.Ascent, upem),
		// x/image metrics report descent as a positive distance below
		// the baseline; kept positive here, negated in the descriptor.
		descent:    scaleFixed(metrics.Descent, upem),
		capHeight:  scaleFixed(metrics.CapHeight, upem),
		widthCache: make(map[uint16]int),
		used:       make(map[uint16]struct{}),
		toUnicode:  make(map[uint16]rune),
		bbox: [4]float64{
			scaleFixed(bounds.Min.X, upem),
			-scaleFixed(bounds.Max.Y, upem),
			scaleFixed(bounds.Max.X, upem),
			-scaleFixed(bounds.Min.Y, upem),
		},
	}
	if tt.capHeight == 0 {
		tt.capHeight = tt.ascent
	}

	if post := sf.PostTable(); post != nil {
		tt.italicAngle = post.ItalicAngle
		if post.IsFixedPitch {
			tt.flags |= 1
		}
	}
	tt.flags |= 32 // nonsymbolic
	if tt.italicAngle != 0 {
		tt.flags |= 64
	}
	tt.stemV = estimateStemV(psName)
	tt.defaultWidth = tt.glyphWidth(0)
	return tt, nil
}

// glyphWidth returns the advance of a glyph in 1/1000 em.
func (tt *trueTypeFont) glyphWidth(gid uint16) int {
	if w, ok := tt.widthCache[gid]; ok {
		return w
	}
	adv := tt.face.HorizontalAdvance(gofont.GID(gid))
	w := int(math.Round(float64(adv) * 1000.0 / float64(tt.upem)))
	tt.widthCache[gid] = w
	return w
}

func (tt *trueTypeFont) glyphID(r rune) uint16 {
	if gid, ok := tt.face.NominalGlyph(r); ok {
		return uint16(gid)
	}
	return 0
}

func (tt *trueTypeFont) measure(text string, size float64) float64 {
	total := 0
	for _, r := range text {
		total += tt.glyphWidth(tt.glyphID(r))
	}
	return float64(total) * size / 1000.0
}

func (tt *trueTypeFont) lineHeight(size float64) float64 {
	return (tt.ascent + tt.descent) / 1000.0 * size
}

// encode maps text to two-byte glyph ids, recording usage for the
// deferred width array and ToUnicode map.
func (tt *trueTypeFont) encode(text string) []byte {
	out := make([]byte, 0, len(text)*2)
	for _, r := range text {
		gid := tt.glyphID(r)
		tt.used[gid] = struct{}{}
		if _, ok := tt.toUnicode[gid]; !ok {
			tt.toUnicode[gid] = r
		}
		out = append(out, byte(gid>>8), byte(gid))
	}
	return out
}

func (tt *trueTypeFont) usedGlyphs() []uint16 {
	gids := make([]uint16, 0, len(tt.used))
	for gid := range tt.used {
		gids = append(gids, gid)
	}
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	return gids
}

// wArray builds the /W width array as runs of consecutive glyph ids:
// [start [w1 w2 ...] start [w1 ...]].
func (tt *trueTypeFont) wArray() *raw.ArrayObj {
	gids := tt.usedGlyphs()
	result := raw.Array()
	for i := 0; i < len(gids); {
		start := gids[i]
		run := raw.Array()
		j := i
		for j < len(gids) && gids[j] == start+uint16(j-i) {
			run.Append(raw.Int(int64(tt.glyphWidth(gids[j]))))
			j++
		}
		result.Append(raw.Int(int64(start)))
		result.Append(run)
		i = j
	}
	return result
}

// toUnicodeCMap renders the ToUnicode CMap stream body, bfchar entries
// in chunks of 100.
func (tt *trueTypeFont) toUnicodeCMap() []byte {
	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n" +
		"12 dict begin\n" +
		"begincmap\n" +
		"/CIDSystemInfo\n" +
		"<< /Registry (Adobe)\n" +
		"/Ordering (UCS)\n" +
		"/Supplement 0\n" +
		">> def\n" +
		"/CMapName /Adobe-Identity-UCS def\n" +
		"/CMapType 2 def\n" +
		"1 begincodespacerange\n" +
		"<0000> <FFFF>\n" +
		"endcodespacerange\n")

	gids := tt.usedGlyphs()
	type mapping struct {
		gid uint16
		cp  rune
	}
	mappings := make([]mapping, 0, len(gids))
	for _, gid := range gids {
		if cp, ok := tt.toUnicode[gid]; ok {
			mappings = append(mappings, mapping{gid: gid, cp: cp})
		}
	}
	for len(mappings) > 0 {
		chunk := mappings
		if len(chunk) > 100 {
			chunk = chunk[:100]
		}
		fmt.Fprintf(&b, "%d beginbfchar\n", len(chunk))
		for _, m := range chunk {
			fmt.Fprintf(&b, "<%04X> <%04X>\n", m.gid, m.cp)
		}
		b.WriteString("endbfchar\n")
		mappings = mappings[len(chunk):]
	}

	b.WriteString("endcmap\n" +
		"CMapName currentdict /CMap defineresource pop\n" +
		"end\n" +
		"end\n")
	return b.Bytes()
}

// writeObjects emits the composite font cluster: font program,
// descriptor, CIDFont, ToUnicode and finally the Type0 dictionary
// under the identity pages already reference.
func (tt *trueTypeFont) writeObjects(g *writer.Graph) error {
	fileDict := raw.Dict()
	fileDict.Set("Length1", raw.Int(int64(len(tt.data))))
	fileRef, err := g.MakeStream(tt.data, fileDict)
	if err != nil {
		return err
	}

	descRef := g.AllocateRef()
	desc := raw.Dict()
	desc.Set("Type", raw.Name("FontDescriptor"))
	desc.Set("FontName", raw.Name(tt.psName))
	desc.Set("Flags", raw.Int(int64(tt.flags)))
	desc.Set("FontBBox", raw.Array(
		raw.Real(tt.bbox[0]), raw.Real(tt.bbox[1]),
		raw.Real(tt.bbox[2]), raw.Real(tt.bbox[3]),
	))
	desc.Set("ItalicAngle", raw.Real(tt.italicAngle))
	desc.Set("Ascent", raw.Real(tt.ascent))
	desc.Set("Descent", raw.Real(-tt.descent))
	desc.Set("CapHeight", raw.Real(tt.capHeight))
	desc.Set("StemV", raw.Int(int64(tt.stemV)))
	desc.Set("FontFile2", raw.Ref(fileRef))
	if err := g.WriteObject(descRef, desc); err != nil {
		return err
	}

	cidRef := g.AllocateRef()
	cid := raw.Dict()
	cid.Set("Type", raw.Name("Font"))
	cid.Set("Subtype", raw.Name("CIDFontType2"))
	cid.Set("BaseFont", raw.Name(tt.psName))
	sysInfo := raw.Dict()
	sysInfo.Set("Registry", raw.Text("Adobe"))
	sysInfo.Set("Ordering", raw.Text("Identity"))
	sysInfo.Set("Supplement", raw.Int(0))
	cid.Set("CIDSystemInfo", sysInfo)
	cid.Set("FontDescriptor", raw.Ref(descRef))
	cid.Set("DW", raw.Int(int64(tt.defaultWidth)))
	cid.Set("W", tt.wArray())
	cid.Set("CIDToGIDMap", raw.Name("Identity"))
	if err := g.WriteObject(cidRef, cid); err != nil {
		return err
	}

	toUniRef, err := g.MakeStream(tt.toUnicodeCMap(), nil)
	if err != nil {
		return err
	}

	font := raw.Dict()
	font.Set("Type", raw.Name("Font"))
	font.Set("Subtype", raw.Name("Type0"))
	font.Set("BaseFont", raw.Name(tt.psName))
	font.Set("Encoding", raw.Name("Identity-H"))
	font.Set("DescendantFonts", raw.Array(raw.Ref(cidRef)))
	font.Set("ToUnicode", raw.Ref(toUniRef))
	return g.WriteObject(tt.obj, font)
}

func scaleFixed(val fixed.Int26_6, upem sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(upem))
}

// estimateStemV approximates stem width from the face's weight, read
// off the name since sfnt does not expose the OS/2 weight class.
func estimateStemV(psName string) int {
	weight := 400.0
	lower := strings.ToLower(psName)
	switch {
	case strings.Contains(lower, "black"), strings.Contains(lower, "heavy"):
		weight = 900
	case strings.Contains(lower, "bold"):
		weight = 700
	case strings.Contains(lower, "light"):
		weight = 300
	case strings.Contains(lower, "thin"):
		weight = 100
	}
	w := weight / 1000.0
	return int(10.0 + 220.0*w*w)
}
