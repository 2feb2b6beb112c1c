// Package options resolves user-supplied icon font configuration into a fully
// populated, immutable Options record.
//
// Resolution never fails: missing fields take their defaults, unknown formats
// are dropped and every input directory is normalised into a forward-slash
// glob ending in "/**/*.svg". Strict checking of user input (for config files
// and CLI flags) is available separately through Config.Validate.
//
// # Usage
//
//	opts := options.Resolve(options.Config{FontName: "MyIcons"})
//	opts.Dirs     // ["./icons/**/*.svg"]
//	opts.Formats  // [woff2 woff ttf eot svg]
package options

import (
	"strings"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDir is the icon directory used when none is configured.
	DefaultDir = "./icons/"

	// DefaultFontName is the font family name.
	DefaultFontName = "AppIcons"

	// DefaultSelector is the CSS base class selector.
	DefaultSelector = ".icon"

	// DefaultFontPath is the path fragment under /assets/ where fonts live.
	DefaultFontPath = "fonts"

	// DefaultStartCodepoint is the first private-use-area codepoint handed out.
	DefaultStartCodepoint rune = 0xE001

	// GlobSuffix is appended to every configured directory.
	GlobSuffix = "/**/*.svg"
)

// DefaultFormats is the format list used when none is configured.
// The order is the emission order of assets.
func DefaultFormats() []Format {
	return []Format{FormatWOFF2, FormatWOFF, FormatTTF, FormatEOT, FormatSVG}
}

// =============================================================================
// Config - user supplied, possibly partial
// =============================================================================

// Config is the possibly-partial configuration supplied by the user.
// Zero values mean "use the default".
type Config struct {
	Dirs     []string `json:"dirs,omitempty" toml:"dirs" yaml:"dirs"`
	FontName string   `json:"fontName,omitempty" toml:"font_name" yaml:"fontName"`
	Formats  []string `json:"formats,omitempty" toml:"formats" yaml:"formats"`
	Selector string   `json:"selector,omitempty" toml:"selector" yaml:"selector"`
	FontPath string   `json:"fontPath,omitempty" toml:"font_path" yaml:"fontPath"`

	// StartCodepoint is the first codepoint assigned to glyphs without a
	// pinned codepoint. Zero means DefaultStartCodepoint.
	StartCodepoint rune `json:"startCodepoint,omitempty" toml:"start_codepoint" yaml:"startCodepoint"`

	// Types is an optional output path for a TypeScript codepoint module.
	Types string `json:"types,omitempty" toml:"types" yaml:"types"`

	// Manifest is an optional output path for a JSON codepoint manifest.
	Manifest string `json:"manifest,omitempty" toml:"manifest" yaml:"manifest"`
}

// =============================================================================
// Options - fully resolved
// =============================================================================

// Options is the fully populated configuration of one plugin instance.
// It is created once by Resolve and must be treated as immutable.
type Options struct {
	Dirs           []string
	FontName       string
	Formats        []Format
	Selector       string
	FontPath       string
	StartCodepoint rune
	Types          string
	Manifest       string
}

// Resolve normalises a partial Config into a fully populated Options record.
func Resolve(c Config) Options {
	o := Options{
		FontName:       c.FontName,
		Selector:       c.Selector,
		FontPath:       c.FontPath,
		StartCodepoint: c.StartCodepoint,
		Types:          c.Types,
		Manifest:       c.Manifest,
	}

	dirs := c.Dirs
	if len(dirs) == 0 {
		dirs = []string{DefaultDir}
	}
	for _, d := range dirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		o.Dirs = append(o.Dirs, NormalizeDir(d))
	}
	if len(o.Dirs) == 0 {
		o.Dirs = []string{NormalizeDir(DefaultDir)}
	}

	o.Formats = resolveFormats(c.Formats)

	if o.FontName == "" {
		o.FontName = DefaultFontName
	}
	if o.Selector == "" {
		o.Selector = DefaultSelector
	}
	o.FontPath = strings.Trim(strings.ReplaceAll(o.FontPath, `\`, "/"), "/")
	if o.FontPath == "" {
		o.FontPath = DefaultFontPath
	}
	if o.StartCodepoint <= 0 {
		o.StartCodepoint = DefaultStartCodepoint
	}
	return o
}

// NormalizeDir turns a directory into a forward-slash glob matching every SVG
// below it. Directories that already carry the glob suffix are returned as-is.
func NormalizeDir(dir string) string {
	d := strings.ReplaceAll(strings.TrimSpace(dir), `\`, "/")
	if strings.HasSuffix(d, GlobSuffix) {
		return d
	}
	trimmed := strings.TrimRight(d, "/")
	if trimmed == "" && strings.HasPrefix(d, "/") {
		return GlobSuffix
	}
	if trimmed == "" {
		trimmed = "."
	}
	return trimmed + GlobSuffix
}

func resolveFormats(names []string) []Format {
	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		f, ok := ParseFormat(n)
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return DefaultFormats()
	}
	return out
}

// =============================================================================
// Derived values
// =============================================================================

// AssetFileName returns the emitted file name of a format,
// e.g. "assets/fonts/AppIcons.woff2".
func (o Options) AssetFileName(f Format) string {
	return "assets/" + o.FontPath + "/" + o.FontName + "." + string(f)
}

// AssetURL returns the URL a format is served and referenced under,
// e.g. "/assets/fonts/AppIcons.woff2". It is identical in build and serve mode.
func (o Options) AssetURL(f Format) string {
	return "/" + o.AssetFileName(f)
}

// AssetPrefix returns the URL prefix shared by every asset of this font.
func (o Options) AssetPrefix() string {
	return "/assets/" + o.FontPath + "/"
}

// HasFormat reports whether f was requested.
func (o Options) HasFormat(f Format) bool {
	for _, have := range o.Formats {
		if have == f {
			return true
		}
	}
	return false
}

// FormatNames returns the requested formats as strings.
func (o Options) FormatNames() []string {
	names := make([]string, len(o.Formats))
	for i, f := range o.Formats {
		names[i] = string(f)
	}
	return names
}
