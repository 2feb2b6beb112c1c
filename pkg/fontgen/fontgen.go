// Package fontgen turns a set of SVG icons into web font payloads.
//
// # Overview
//
// Generate is the glyph-to-font step of the build: it names every icon after
// its file, assigns codepoints, converts the SVG outlines to TrueType
// quadratic contours and encodes the requested containers:
//
//   - ttf: a plain TrueType sfnt with cmap format 4 and 12 subtables
//   - woff: the sfnt tables zlib-compressed per table
//   - woff2: the sfnt tables brotli-compressed as one stream
//   - eot: the sfnt behind an Embedded OpenType 2.1 header
//   - svg: an SVG font document with one <glyph> per icon
//
// Output is deterministic: the same sources and request always produce the
// same bytes, which is what makes build caching and byte-identical CSS
// across build and serve possible.
//
// # Codepoints
//
// A file may pin its codepoint with a "uXXXX-" prefix (for example
// "uE010-home.svg" becomes glyph "home" at U+E010). All other glyphs get
// sequential codepoints starting at Request.StartCodepoint, skipping pinned
// values. With Request.Sort set, allocation runs in glyph-name order so the
// mapping is stable for an unchanged input set.
package fontgen

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFontHeight is the units-per-em of generated fonts.
	DefaultFontHeight = 1000

	// DefaultDescent is the distance below the baseline, in font units.
	DefaultDescent = 64

	// DefaultFixedWidth is the advance width of every glyph.
	DefaultFixedWidth = 600

	// CurveTolerance is the maximum deviation, in font units, allowed when
	// approximating cubic curves with quadratics.
	CurveTolerance = 1.0
)

// Source is one SVG input file.
type Source struct {
	Path string
	Data []byte
}

// Request describes one font generation run.
type Request struct {
	Sources        []Source
	FontName       string
	Formats        []options.Format
	StartCodepoint rune

	// Sort allocates codepoints in glyph-name order.
	Sort bool

	// CenterHorizontally centres every outline inside its advance width.
	CenterHorizontally bool

	// Normalize scales every icon so its viewBox height equals FontHeight.
	Normalize bool

	// FixedWidth is the advance width of every glyph. Zero uses the scaled
	// viewBox width instead.
	FixedWidth int

	Descent    int
	FontHeight int
}

// Result holds the encoded fonts and the glyph table.
type Result struct {
	// Payloads has an entry for every requested format.
	Payloads map[options.Format][]byte

	// Glyphs is ordered by codepoint.
	Glyphs []glyph.Glyph
}

// Generator produces fonts from SVG sources.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (*Result, error)

// Generate calls f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Default is the built-in generator.
var Default Generator = GeneratorFunc(Generate)

func (r Request) withDefaults() Request {
	if r.FontHeight <= 0 {
		r.FontHeight = DefaultFontHeight
	}
	if r.Descent < 0 {
		r.Descent = 0
	}
	if r.StartCodepoint <= 0 {
		r.StartCodepoint = options.DefaultStartCodepoint
	}
	if r.FontName == "" {
		r.FontName = options.DefaultFontName
	}
	if len(r.Formats) == 0 {
		r.Formats = options.DefaultFormats()
	}
	return r
}

// Generate builds every requested format from req.Sources.
func Generate(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()
	if len(req.Sources) == 0 {
		return nil, errors.New(errors.ErrCodeNoInput, "no SVG sources")
	}

	entries, err := allocate(req.Sources, req.StartCodepoint, req.Sort)
	if err != nil {
		return nil, err
	}

	outlines := make([]outline, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o, err := buildOutline(e, req)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "glyph %q (%s)", e.name, e.path)
		}
		outlines = append(outlines, o)
	}

	f := &font{name: req.FontName, req: req, glyphs: outlines}
	ttf, err := f.encodeTTF()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontBuild, err, "encode ttf")
	}
	if err := validateTTF(ttf, len(outlines)+1); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontBuild, err, "generated ttf is invalid")
	}

	payloads, err := encodeFormats(ctx, f, ttf, req.Formats)
	if err != nil {
		return nil, err
	}

	glyphs := make([]glyph.Glyph, len(entries))
	for i, e := range entries {
		g := glyph.New(e.name, e.codepoint)
		g.Path = e.path
		glyphs[i] = g
	}
	return &Result{Payloads: payloads, Glyphs: glyphs}, nil
}

// encodeFormats derives every requested container from the TTF concurrently.
func encodeFormats(ctx context.Context, f *font, ttf []byte, formats []options.Format) (map[options.Format][]byte, error) {
	out := make([][]byte, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var data []byte
			var err error
			switch format {
			case options.FormatTTF:
				data = ttf
			case options.FormatWOFF:
				data, err = EncodeWOFF(ttf)
			case options.FormatWOFF2:
				data, err = EncodeWOFF2(ttf)
			case options.FormatEOT:
				data, err = EncodeEOT(ttf)
			case options.FormatSVG:
				data = f.encodeSVG()
			default:
				return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeFontBuild, err, "encode %s", format)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payloads := make(map[options.Format][]byte, len(formats))
	for i, format := range formats {
		payloads[format] = out[i]
	}
	return payloads, nil
}

// validateTTF re-parses the font with an independent sfnt reader.
func validateTTF(ttf []byte, wantGlyphs int) error {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		return err
	}
	if n := f.NumGlyphs(); n != wantGlyphs {
		return fmt.Errorf("font has %d glyphs, want %d", n, wantGlyphs)
	}
	var buf sfnt.Buffer
	for i := 0; i < wantGlyphs; i++ {
		if _, err := f.LoadGlyph(&buf, sfnt.GlyphIndex(i), fixed.I(16), nil); err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
	}
	return nil
}

// Sniff reports the container format of a font file from its magic bytes.
func Sniff(data []byte) (options.Format, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("wOF2")):
		return options.FormatWOFF2, true
	case bytes.HasPrefix(data, []byte("wOFF")):
		return options.FormatWOFF, true
	case bytes.HasPrefix(data, []byte{0, 1, 0, 0}), bytes.HasPrefix(data, []byte("true")), bytes.HasPrefix(data, []byte("OTTO")):
		return options.FormatTTF, true
	case len(data) > 35 && data[34] == 0x4C && data[35] == 0x50:
		return options.FormatEOT, true
	case bytes.Contains(data[:min(len(data), 512)], []byte("<svg")):
		return options.FormatSVG, true
	}
	return "", false
}
