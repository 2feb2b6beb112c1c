package options

import "strings"

// Format identifies one font container format.
type Format string

// Supported font formats.
const (
	FormatSVG   Format = "svg"
	FormatTTF   Format = "ttf"
	FormatWOFF  Format = "woff"
	FormatWOFF2 Format = "woff2"
	FormatEOT   Format = "eot"
)

// mimeTypes is the fixed mime table used for dev-server responses.
var mimeTypes = map[Format]string{
	FormatEOT:   "application/vnd.ms-fontobject",
	FormatWOFF2: "font/woff2",
	FormatWOFF:  "font/woff",
	FormatTTF:   "font/ttf",
	FormatSVG:   "image/svg+xml",
}

// cssFormatHints maps a format to its @font-face format() hint.
var cssFormatHints = map[Format]string{
	FormatEOT:   "embedded-opentype",
	FormatWOFF2: "woff2",
	FormatWOFF:  "woff",
	FormatTTF:   "truetype",
	FormatSVG:   "svg",
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	_, ok := mimeTypes[f]
	return f, ok
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	_, ok := mimeTypes[f]
	return ok
}

// MimeType returns the format's mime type, or "" for unknown formats.
func (f Format) MimeType() string {
	return mimeTypes[f]
}

// CSSHint returns the value used inside format(...) in an @font-face src list.
func (f Format) CSSHint() string {
	return cssFormatHints[f]
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}
