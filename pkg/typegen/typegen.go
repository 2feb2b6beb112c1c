// Package typegen writes codepoint modules for application code.
//
// Two shapes are supported: a TypeScript module exporting a union type of
// glyph names and a name → codepoint table, and a plain JSON manifest.
//
// For the font "AppIcons" with glyphs arrow-left and arrow-right the
// TypeScript output is:
//
//	export type AppIconsId =
//	  | "arrow-left"
//	  | "arrow-right";
//
//	export const APP_ICONS_CODEPOINTS: { [key in AppIconsId]: string } = {
//	  "arrow-left": "57345",
//	  "arrow-right": "57346",
//	};
//
// Codepoints are decimal strings.
package typegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/iconfont/pkg/glyph"
)

// TypeScript renders the codepoint module for fontName.
func TypeScript(fontName string, glyphs []glyph.Glyph) []byte {
	typeName := TypeName(fontName) + "Id"
	constName := ConstName(fontName) + "_CODEPOINTS"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "export type %s =\n", typeName)
	if len(glyphs) == 0 {
		buf.WriteString("  never;\n")
	}
	for i, g := range glyphs {
		buf.WriteString("  | ")
		buf.WriteString(strconv.Quote(g.Name))
		if i == len(glyphs)-1 {
			buf.WriteByte(';')
		}
		buf.WriteByte('\n')
	}

	fmt.Fprintf(&buf, "\nexport const %s: { [key in %s]: string } = {\n", constName, typeName)
	for _, g := range glyphs {
		r, _ := g.Codepoint()
		fmt.Fprintf(&buf, "  %s: %q,\n", strconv.Quote(g.Name), strconv.Itoa(int(r)))
	}
	buf.WriteString("};\n")
	return buf.Bytes()
}

// Manifest is the JSON codepoint manifest.
type Manifest struct {
	FontName string          `json:"fontName"`
	Glyphs   []ManifestGlyph `json:"glyphs"`
}

// ManifestGlyph is one manifest entry.
type ManifestGlyph struct {
	Name      string `json:"name"`
	Codepoint int    `json:"codepoint"`
	Hex       string `json:"hex"`
	Path      string `json:"path,omitempty"`
}

// JSON renders the manifest for fontName.
func JSON(fontName string, glyphs []glyph.Glyph) ([]byte, error) {
	m := Manifest{FontName: fontName, Glyphs: make([]ManifestGlyph, 0, len(glyphs))}
	for _, g := range glyphs {
		r, _ := g.Codepoint()
		m.Glyphs = append(m.Glyphs, ManifestGlyph{
			Name:      g.Name,
			Codepoint: int(r),
			Hex:       fmt.Sprintf("%04X", r),
			Path:      g.Path,
		})
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteFile writes data to path, creating parent directories. Files whose
// content is already identical are left alone so file watchers do not see a
// spurious change.
func WriteFile(path string, data []byte) error {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TypeName turns a font name into a PascalCase identifier.
// "app-icons" becomes "AppIcons"; "AppIcons" is unchanged.
func TypeName(fontName string) string {
	var b strings.Builder
	for _, w := range words(fontName) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return identStart(b.String())
}

// ConstName turns a font name into an UPPER_SNAKE_CASE identifier.
// "AppIcons" becomes "APP_ICONS".
func ConstName(fontName string) string {
	var parts []string
	for _, w := range words(fontName) {
		parts = append(parts, splitCamel(w)...)
	}
	return identStart(strings.ToUpper(strings.Join(parts, "_")))
}

// words splits on every rune that cannot appear in an identifier.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamel splits "AppIcons" into "App", "Icons" and keeps acronyms
// together ("SVGIcons" → "SVG", "Icons").
func splitCamel(w string) []string {
	r := []rune(w)
	var out []string
	start := 0
	for i := 1; i < len(r); i++ {
		lowerToUpper := unicode.IsLower(r[i-1]) && unicode.IsUpper(r[i])
		acronymEnd := i+1 < len(r) && unicode.IsUpper(r[i-1]) && unicode.IsUpper(r[i]) && unicode.IsLower(r[i+1])
		if lowerToUpper || acronymEnd {
			out = append(out, string(r[start:i]))
			start = i
		}
	}
	return append(out, string(r[start:]))
}

func identStart(s string) string {
	if s == "" {
		return "Icons"
	}
	if unicode.IsDigit([]rune(s)[0]) {
		return "_" + s
	}
	return s
}
