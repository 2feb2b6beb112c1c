package fontgen

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"sort"
	"strings"
	"unicode/utf16"
)

// macEpochOffset is the number of seconds between 1904-01-01 (the sfnt
// epoch) and the Unix epoch.
const macEpochOffset = 2082844800

// font is the in-memory glyph set being encoded.
type font struct {
	name   string
	req    Request
	glyphs []outline // ordered by codepoint, glyph id = index + 1
}

type sfntTable struct {
	tag      string
	data     []byte
	checksum uint32
}

var be = binary.BigEndian

// encodeTTF writes a TrueType font. Glyph 0 is an empty .notdef.
func (f *font) encodeTTF() ([]byte, error) {
	glyf, loca := f.glyfLoca()
	tables := []sfntTable{
		{tag: "OS/2", data: f.os2()},
		{tag: "cmap", data: f.cmap()},
		{tag: "glyf", data: glyf},
		{tag: "head", data: f.head()},
		{tag: "hhea", data: f.hhea()},
		{tag: "hmtx", data: f.hmtx()},
		{tag: "loca", data: loca},
		{tag: "maxp", data: f.maxp()},
		{tag: "name", data: f.nameTable()},
		{tag: "post", data: f.post()},
	}
	if len(f.glyphs)+1 > math.MaxUint16 {
		return nil, fmt.Errorf("too many glyphs: %d", len(f.glyphs))
	}
	return assembleSFNT(tables), nil
}

// assembleSFNT lays out tables behind an sfnt offset table and fixes up
// head.checkSumAdjustment.
func assembleSFNT(tables []sfntTable) []byte {
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	n := len(tables)
	searchRange, entrySelector, rangeShift := binarySearchParams(n, 16)

	headerLen := 12 + 16*n
	out := make([]byte, 0, headerLen)
	out = be.AppendUint32(out, 0x00010000)
	out = be.AppendUint16(out, uint16(n))
	out = be.AppendUint16(out, searchRange)
	out = be.AppendUint16(out, entrySelector)
	out = be.AppendUint16(out, rangeShift)

	offset := headerLen
	headOffset := -1
	for i := range tables {
		t := &tables[i]
		if t.tag == "head" {
			be.PutUint32(t.data[8:], 0)
			headOffset = offset
		}
		t.checksum = checksum(t.data)
		out = append(out, t.tag...)
		out = be.AppendUint32(out, t.checksum)
		out = be.AppendUint32(out, uint32(offset))
		out = be.AppendUint32(out, uint32(len(t.data)))
		offset += pad4(len(t.data))
	}
	for _, t := range tables {
		out = append(out, t.data...)
		out = append(out, make([]byte, pad4(len(t.data))-len(t.data))...)
	}
	if headOffset >= 0 {
		be.PutUint32(out[headOffset+8:], 0xB1B0AFBA-checksum(out))
	}
	return out
}

// =============================================================================
// Tables
// =============================================================================

func (f *font) unitsPerEm() int { return f.req.FontHeight }
func (f *font) ascent() int { return f.req.FontHeight - f.req.Descent }
func (f *font) descent() int { return f.req.Descent }

func (f *font) notdefAdvance() int {
	if f.req.FixedWidth > 0 {
		return f.req.FixedWidth
	}
	return f.req.FontHeight / 2
}

func (f *font) advances() []int {
	adv := []int{f.notdefAdvance()}
	for _, g := range f.glyphs {
		adv = append(adv, g.advance)
	}
	return adv
}

func (f *font) bounds() (xMin, yMin, xMax, yMax int16) {
	first := true
	for _, g := range f.glyphs {
		if g.empty() {
			continue
		}
		if first {
			xMin, yMin, xMax, yMax = g.xMin, g.yMin, g.xMax, g.yMax
			first = false
			continue
		}
		xMin, yMin = min(xMin, g.xMin), min(yMin, g.yMin)
		xMax, yMax = max(xMax, g.xMax), max(yMax, g.yMax)
	}
	return
}

func (f *font) head() []byte {
	xMin, yMin, xMax, yMax := f.bounds()
	// Timestamps are pinned to the Unix epoch so output is reproducible.
	ts := uint64(macEpochOffset)

	b := make([]byte, 0, 54)
	b = be.AppendUint32(b, 0x00010000) // version
	b = be.AppendUint32(b, 0x00010000) // fontRevision
	b = be.AppendUint32(b, 0)          // checkSumAdjustment
	b = be.AppendUint32(b, 0x5F0F3CF5) // magicNumber
	b = be.AppendUint16(b, 0x000B)     // flags: baseline at 0, lsb at 0, integer ppem
	b = be.AppendUint16(b, uint16(f.unitsPerEm()))
	b = be.AppendUint64(b, ts) // created
	b = be.AppendUint64(b, ts) // modified
	b = be.AppendUint16(b, uint16(xMin))
	b = be.AppendUint16(b, uint16(yMin))
	b = be.AppendUint16(b, uint16(xMax))
	b = be.AppendUint16(b, uint16(yMax))
	b = be.AppendUint16(b, 0) // macStyle
	b = be.AppendUint16(b, 8) // lowestRecPPEM
	b = be.AppendUint16(b, 2) // fontDirectionHint
	b = be.AppendUint16(b, 1) // indexToLocFormat: long
	b = be.AppendUint16(b, 0) // glyphDataFormat
	return b
}

func (f *font) hhea() []byte {
	adv := f.advances()
	maxAdv, minLSB, minRSB, maxExtent := 0, math.MaxInt16, math.MaxInt16, math.MinInt16
	for i, a := range adv {
		maxAdv = max(maxAdv, a)
		if i == 0 || f.glyphs[i-1].empty() {
			continue
		}
		g := f.glyphs[i-1]
		minLSB = min(minLSB, int(g.xMin))
		minRSB = min(minRSB, a-int(g.xMax))
		maxExtent = max(maxExtent, int(g.xMax))
	}
	if maxExtent == math.MinInt16 {
		minLSB, minRSB, maxExtent = 0, 0, 0
	}

	b := make([]byte, 0, 36)
	b = be.AppendUint32(b, 0x00010000)
	b = be.AppendUint16(b, uint16(int16(f.ascent())))
	b = be.AppendUint16(b, uint16(int16(-f.descent())))
	b = be.AppendUint16(b, 0) // lineGap
	b = be.AppendUint16(b, uint16(maxAdv))
	b = be.AppendUint16(b, uint16(int16(minLSB)))
	b = be.AppendUint16(b, uint16(int16(minRSB)))
	b = be.AppendUint16(b, uint16(int16(maxExtent)))
	b = be.AppendUint16(b, 1) // caretSlopeRise
	b = be.AppendUint16(b, 0) // caretSlopeRun
	b = be.AppendUint16(b, 0) // caretOffset
	b = append(b, make([]byte, 8)...)
	b = be.AppendUint16(b, 0) // metricDataFormat
	b = be.AppendUint16(b, uint16(len(adv)))
	return b
}

func (f *font) hmtx() []byte {
	adv := f.advances()
	b := make([]byte, 0, 4*len(adv))
	for i, a := range adv {
		lsb := int16(0)
		if i > 0 {
			lsb = f.glyphs[i-1].xMin
		}
		b = be.AppendUint16(b, uint16(a))
		b = be.AppendUint16(b, uint16(lsb))
	}
	return b
}

func (f *font) maxp() []byte {
	maxPoints, maxContours := 0, 0
	for _, g := range f.glyphs {
		maxPoints = max(maxPoints, g.numPoints())
		maxContours = max(maxContours, len(g.points))
	}

	b := make([]byte, 0, 32)
	b = be.AppendUint32(b, 0x00010000)
	b = be.AppendUint16(b, uint16(len(f.glyphs)+1))
	b = be.AppendUint16(b, uint16(maxPoints))
	b = be.AppendUint16(b, uint16(maxContours))
	b = be.AppendUint16(b, 0) // maxCompositePoints
	b = be.AppendUint16(b, 0) // maxCompositeContours
	b = be.AppendUint16(b, 2) // maxZones
	b = append(b, make([]byte, 16)...)
	return b
}

func (f *font) os2() []byte {
	adv := f.advances()
	sum := 0
	for _, a := range adv {
		sum += a
	}
	first, last := uint16(0xFFFF), uint16(0)
	for _, g := range f.glyphs {
		cp := uint16(min(g.codepoint, 0xFFFF))
		first, last = min(first, cp), max(last, cp)
	}
	if len(f.glyphs) == 0 {
		first = 0
	}
	em := f.unitsPerEm()

	b := make([]byte, 0, 96)
	b = be.AppendUint16(b, 4) // version
	b = be.AppendUint16(b, uint16(sum/len(adv)))
	b = be.AppendUint16(b, 400) // usWeightClass
	b = be.AppendUint16(b, 5)   // usWidthClass
	b = be.AppendUint16(b, 0)   // fsType: installable
	// Sub- and superscript size and offsets.
	for _, v := range []int{em * 65 / 100, em * 60 / 100, 0, em * 7 / 100, em * 65 / 100, em * 60 / 100, 0, em * 35 / 100} {
		b = be.AppendUint16(b, uint16(int16(v)))
	}
	b = be.AppendUint16(b, uint16(em*5/100))  // yStrikeoutSize
	b = be.AppendUint16(b, uint16(em*25/100)) // yStrikeoutPosition
	b = be.AppendUint16(b, 0)                 // sFamilyClass
	b = append(b, make([]byte, 10)...)        // panose
	b = be.AppendUint32(b, 0)                 // ulUnicodeRange1
	b = be.AppendUint32(b, 1<<28)             // ulUnicodeRange2: private use area
	b = be.AppendUint32(b, 0)
	b = be.AppendUint32(b, 0)
	b = append(b, "ICFT"...)       // achVendID
	b = be.AppendUint16(b, 0x0040) // fsSelection: regular
	b = be.AppendUint16(b, first)  // usFirstCharIndex
	b = be.AppendUint16(b, last)   // usLastCharIndex

	// Typographic and Windows metrics.
	b = be.AppendUint16(b, uint16(f.ascent()))
	b = be.AppendUint16(b, uint16(int16(-f.descent())))
	b = be.AppendUint16(b, 0)
	b = be.AppendUint16(b, uint16(f.ascent()))
	b = be.AppendUint16(b, uint16(f.descent()))

	b = be.AppendUint32(b, 1) // ulCodePageRange1: latin 1
	b = be.AppendUint32(b, 0)
	b = be.AppendUint16(b, 0)  // sxHeight
	b = be.AppendUint16(b, 0)  // sCapHeight
	b = be.AppendUint16(b, 0)  // usDefaultChar
	b = be.AppendUint16(b, 32) // usBreakChar
	b = be.AppendUint16(b, 1)  // usMaxContext
	return b
}

// cmap writes a (3,1) format 4 subtable for the BMP and a (3,10) format 12
// subtable covering every codepoint.
func (f *font) cmap() []byte {
	type group struct {
		start, end rune
		gid        int
	}
	var groups []group
	for i, g := range f.glyphs {
		gid := i + 1
		if n := len(groups); n > 0 && groups[n-1].end+1 == g.codepoint && groups[n-1].gid+int(groups[n-1].end-groups[n-1].start)+1 == gid {
			groups[n-1].end = g.codepoint
			continue
		}
		groups = append(groups, group{g.codepoint, g.codepoint, gid})
	}

	// Format 4.
	type seg struct{ start, end, delta uint16 }
	var segs []seg
	for _, g := range groups {
		if g.start > 0xFFFE {
			continue
		}
		end := min(g.end, 0xFFFE)
		segs = append(segs, seg{uint16(g.start), uint16(end), uint16(g.gid - int(g.start))})
	}
	segs = append(segs, seg{0xFFFF, 0xFFFF, 1})

	segCount := len(segs)
	searchRange, entrySelector, rangeShift := binarySearchParams(segCount, 2)
	f4 := make([]byte, 0, 16+8*segCount)
	f4 = be.AppendUint16(f4, 4)
	f4 = be.AppendUint16(f4, uint16(16+8*segCount))
	f4 = be.AppendUint16(f4, 0) // language
	f4 = be.AppendUint16(f4, uint16(2*segCount))
	f4 = be.AppendUint16(f4, searchRange)
	f4 = be.AppendUint16(f4, entrySelector)
	f4 = be.AppendUint16(f4, rangeShift)
	for _, s := range segs {
		f4 = be.AppendUint16(f4, s.end)
	}
	f4 = be.AppendUint16(f4, 0) // reservedPad
	for _, s := range segs {
		f4 = be.AppendUint16(f4, s.start)
	}
	for _, s := range segs {
		f4 = be.AppendUint16(f4, s.delta)
	}
	for range segs {
		f4 = be.AppendUint16(f4, 0) // idRangeOffset
	}

	// Format 12.
	f12 := make([]byte, 0, 16+12*len(groups))
	f12 = be.AppendUint16(f12, 12)
	f12 = be.AppendUint16(f12, 0)
	f12 = be.AppendUint32(f12, uint32(16+12*len(groups)))
	f12 = be.AppendUint32(f12, 0) // language
	f12 = be.AppendUint32(f12, uint32(len(groups)))
	for _, g := range groups {
		f12 = be.AppendUint32(f12, uint32(g.start))
		f12 = be.AppendUint32(f12, uint32(g.end))
		f12 = be.AppendUint32(f12, uint32(g.gid))
	}

	const headerLen = 4 + 2*8
	b := make([]byte, 0, headerLen+len(f4)+len(f12))
	b = be.AppendUint16(b, 0) // version
	b = be.AppendUint16(b, 2) // numTables
	b = be.AppendUint16(b, 3)
	b = be.AppendUint16(b, 1)
	b = be.AppendUint32(b, headerLen)
	b = be.AppendUint16(b, 3)
	b = be.AppendUint16(b, 10)
	b = be.AppendUint32(b, uint32(headerLen+len(f4)))
	b = append(b, f4...)
	b = append(b, f12...)
	return b
}

// glyfLoca encodes simple glyphs and the long loca offsets.
func (f *font) glyfLoca() (glyf, loca []byte) {
	loca = be.AppendUint32(loca, 0)
	loca = be.AppendUint32(loca, 0) // .notdef is empty
	for _, g := range f.glyphs {
		glyf = append(glyf, encodeGlyph(g)...)
		loca = be.AppendUint32(loca, uint32(len(glyf)))
	}
	return glyf, loca
}

const (
	flagOnCurve = 1 << 0
	flagXShort  = 1 << 1
	flagYShort  = 1 << 2
	flagXSame   = 1 << 4
	flagYSame   = 1 << 5
)

func encodeGlyph(g outline) []byte {
	if g.empty() {
		return nil
	}
	b := make([]byte, 0, 10+2*len(g.points)+5*g.numPoints())
	b = be.AppendUint16(b, uint16(len(g.points)))
	b = be.AppendUint16(b, uint16(g.xMin))
	b = be.AppendUint16(b, uint16(g.yMin))
	b = be.AppendUint16(b, uint16(g.xMax))
	b = be.AppendUint16(b, uint16(g.yMax))

	end := -1
	for _, c := range g.points {
		end += len(c)
		b = be.AppendUint16(b, uint16(end))
	}
	b = be.AppendUint16(b, 0) // instructionLength

	var flags, xs, ys []byte
	var px, py int
	for _, c := range g.points {
		for _, p := range c {
			var fl byte
			if p.On {
				fl |= flagOnCurve
			}
			dx, dy := int(p.X)-px, int(p.Y)-py
			px, py = int(p.X), int(p.Y)
			fl, xs = encodeDelta(fl, xs, dx, flagXShort, flagXSame)
			fl, ys = encodeDelta(fl, ys, dy, flagYShort, flagYSame)
			flags = append(flags, fl)
		}
	}
	b = append(b, flags...)
	b = append(b, xs...)
	b = append(b, ys...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func encodeDelta(fl byte, dst []byte, d int, short, same byte) (byte, []byte) {
	switch {
	case d == 0:
		return fl | same, dst
	case d > -256 && d < 256:
		fl |= short
		if d > 0 {
			fl |= same
		} else {
			d = -d
		}
		return fl, append(dst, byte(d))
	default:
		return fl, be.AppendUint16(dst, uint16(int16(d)))
	}
}

func (f *font) nameTable() []byte {
	family := f.name
	records := []struct {
		id    uint16
		value string
	}{
		{1, family},
		{2, "Regular"},
		{3, "iconfont:" + family},
		{4, family},
		{5, "Version 1.0"},
		{6, postScriptName(family)},
	}

	var strs []byte
	header := make([]byte, 0, 6+12*len(records))
	header = be.AppendUint16(header, 0)
	header = be.AppendUint16(header, uint16(len(records)))
	header = be.AppendUint16(header, uint16(6+12*len(records)))
	for _, r := range records {
		enc := utf16BE(r.value)
		header = be.AppendUint16(header, 3)      // platform: windows
		header = be.AppendUint16(header, 1)      // encoding: unicode BMP
		header = be.AppendUint16(header, 0x0409) // language: en-US
		header = be.AppendUint16(header, r.id)
		header = be.AppendUint16(header, uint16(len(enc)))
		header = be.AppendUint16(header, uint16(len(strs)))
		strs = append(strs, enc...)
	}
	return append(header, strs...)
}

// post writes a version 2 table so every glyph keeps its icon name.
func (f *font) post() []byte {
	b := make([]byte, 0, 34+2*(len(f.glyphs)+1))
	b = be.AppendUint32(b, 0x00020000)
	b = be.AppendUint32(b, 0) // italicAngle
	b = be.AppendUint16(b, uint16(int16(-f.descent()/2)))
	b = be.AppendUint16(b, uint16(max(f.unitsPerEm()/20, 1)))
	if f.req.FixedWidth > 0 {
		b = be.AppendUint32(b, 1)
	} else {
		b = be.AppendUint32(b, 0)
	}
	b = append(b, make([]byte, 16)...)
	b = be.AppendUint16(b, uint16(len(f.glyphs)+1))
	b = be.AppendUint16(b, 0) // .notdef is standard name 0
	for i := range f.glyphs {
		b = be.AppendUint16(b, uint16(258+i))
	}
	for _, g := range f.glyphs {
		n := postScriptName(g.name)
		b = append(b, byte(len(n)))
		b = append(b, n...)
	}
	return b
}

// =============================================================================
// Helpers
// =============================================================================

// postScriptName restricts s to printable ASCII without PostScript
// delimiters, at most 63 characters.
func postScriptName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 33 || r > 126 || strings.ContainsRune("[](){}<>/%", r) {
			r = '_'
		}
		b.WriteRune(r)
		if b.Len() == 63 {
			break
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func utf16BE(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2*len(u))
	for _, c := range u {
		b = be.AppendUint16(b, c)
	}
	return b
}

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		var w [4]byte
		copy(w[:], b[i:])
		sum += be.Uint32(w[:])
	}
	return sum
}

func pad4(n int) int { return (n + 3) &^ 3 }

// binarySearchParams returns searchRange, entrySelector and rangeShift for
// n items of the given size.
func binarySearchParams(n, size int) (uint16, uint16, uint16) {
	if n == 0 {
		return 0, 0, 0
	}
	exp := bits.Len(uint(n)) - 1
	searchRange := (1 << exp) * size
	return uint16(searchRange), uint16(exp), uint16(n*size - searchRange)
}
