// Package css renders the stylesheet that binds icon glyphs to their
// codepoints in the generated web font.
//
// The document has three parts, always in this order:
//
//  1. an @font-face rule referencing every registered font asset,
//  2. a base rule for the configured selector,
//  3. one ::before rule per glyph.
//
// Output is a pure function of its inputs, so build and serve mode produce
// byte-identical CSS for the same glyph set.
package css

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/registry"
)

// srcOrder is the order of the second src declaration.
var srcOrder = []options.Format{
	options.FormatEOT,
	options.FormatWOFF2,
	options.FormatWOFF,
	options.FormatTTF,
	options.FormatSVG,
}

// Generate renders the stylesheet for glyphs. URLs are taken from reg; formats
// without a registry entry are left out of the src list.
func Generate(opts options.Options, reg *registry.Registry, glyphs []glyph.Glyph) (string, error) {
	var buf bytes.Buffer

	writeFontFace(&buf, opts, reg)
	writeBaseRule(&buf, opts)

	for _, g := range glyphs {
		r, ok := g.Codepoint()
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidGlyph, "glyph %q has no codepoint", g.Name)
		}
		fmt.Fprintf(&buf, "%s-%s::before { content: '%s';}\n", opts.Selector, EscapeIdent(g.Name), runeToCSS(r))
	}
	return buf.String(), nil
}

func writeFontFace(buf *bytes.Buffer, opts options.Options, reg *registry.Registry) {
	family := quote(opts.FontName)

	buf.WriteString("@font-face {\n")
	fmt.Fprintf(buf, "  font-family: %s;\n", family)

	if eot, ok := reg.Get(options.FormatEOT); ok {
		fmt.Fprintf(buf, "  src: url(%s);\n", quote(eot.URL))
	}

	var srcs []string
	for _, f := range srcOrder {
		a, ok := reg.Get(f)
		if !ok {
			continue
		}
		url := a.URL
		switch f {
		case options.FormatEOT:
			url += "?#iefix"
		case options.FormatSVG:
			url += "#" + opts.FontName
		}
		srcs = append(srcs, fmt.Sprintf("url(%s) format(%s)", quote(url), quote(f.CSSHint())))
	}
	if len(srcs) > 0 {
		fmt.Fprintf(buf, "  src: %s;\n", strings.Join(srcs, ",\n    "))
	}

	buf.WriteString("  font-weight: normal;\n")
	buf.WriteString("  font-style: normal;\n")
	buf.WriteString("}\n\n")
}

func writeBaseRule(buf *bytes.Buffer, opts options.Options) {
	fmt.Fprintf(buf, "%s, %s:before {\n", opts.Selector, opts.Selector)
	buf.WriteString("  display: inline-block;\n")
	fmt.Fprintf(buf, "  font: normal normal normal 24px/1 %s;\n", quote(opts.FontName))
	buf.WriteString("  text-transform: none;\n")
	buf.WriteString("  text-rendering: auto;\n")
	buf.WriteString("  -webkit-font-smoothing: antialiased;\n")
	buf.WriteString("  -moz-osx-font-smoothing: grayscale;\n")
	buf.WriteString("}\n\n")
}

// UnicodeToCSS returns the CSS escape of the first scalar value of s:
// a backslash followed by the lowercase hex value without padding.
// It returns "" for an empty string.
func UnicodeToCSS(s string) string {
	g := glyph.Glyph{Unicode: []string{s}}
	r, ok := g.Codepoint()
	if !ok {
		return ""
	}
	return runeToCSS(r)
}

func runeToCSS(r rune) string {
	return `\` + strconv.FormatInt(int64(r), 16)
}

// EscapeIdent escapes s for use inside a CSS class selector. Letters, digits,
// '-', '_' and non-ASCII characters pass through unchanged.
func EscapeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r >= 0x80:
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quote wraps s in double quotes, escaping quotes and backslashes.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
