// Package glyph defines the glyph descriptor shared by the font generator,
// the CSS generator and the codepoint module writers.
package glyph

import (
	"unicode/utf8"
)

// Glyph is a single named icon and the codepoint(s) assigned to it.
// Unicode is never empty for glyphs produced by the generator; the first rune
// of Unicode[0] is the codepoint used in CSS content declarations.
type Glyph struct {
	Name    string   `json:"name"`
	Unicode []string `json:"unicode"`

	// Path is the source SVG file. It is informational only.
	Path string `json:"path,omitempty"`
}

// Codepoint returns the first scalar value of Unicode[0].
// ok is false when the glyph has no usable codepoint.
func (g Glyph) Codepoint() (r rune, ok bool) {
	if len(g.Unicode) == 0 || g.Unicode[0] == "" {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(g.Unicode[0])
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, true
}

// New returns a glyph mapped to a single codepoint.
func New(name string, r rune) Glyph {
	return Glyph{Name: name, Unicode: []string{string(r)}}
}

// Codepoints returns name → codepoint for every glyph with a usable codepoint.
func Codepoints(glyphs []Glyph) map[string]rune {
	out := make(map[string]rune, len(glyphs))
	for _, g := range glyphs {
		if r, ok := g.Codepoint(); ok {
			out[g.Name] = r
		}
	}
	return out
}
