package fontgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// encodeSVG writes an SVG font document. Glyph coordinates are in font
// units with y pointing up, as SVG fonts define them.
func (f *font) encodeSVG() []byte {
	adv := f.notdefAdvance()

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" standalone="no"?>` + "\n")
	buf.WriteString(`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" >` + "\n")
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg">` + "\n")
	buf.WriteString("<defs>\n")
	fmt.Fprintf(&buf, "  <font id=\"%s\" horiz-adv-x=\"%d\">\n", escapeAttr(f.name), adv)
	fmt.Fprintf(&buf, "    <font-face font-family=\"%s\"\n      units-per-em=\"%d\" ascent=\"%d\"\n      descent=\"%d\" />\n",
		escapeAttr(f.name), f.unitsPerEm(), f.ascent(), -f.descent())
	buf.WriteString("    <missing-glyph horiz-adv-x=\"0\" />\n")
	for _, g := range f.glyphs {
		fmt.Fprintf(&buf, "    <glyph glyph-name=\"%s\"\n      unicode=\"&#x%X;\"\n      horiz-adv-x=\"%d\" d=\"%s\" />\n",
			escapeAttr(g.name), g.codepoint, g.advance, g.pathData())
	}
	buf.WriteString("  </font>\n</defs>\n</svg>\n")
	return buf.Bytes()
}

func escapeAttr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
