package cli

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "glyph"); got != "1 glyph" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(0, "glyph"); got != "0 glyphs" {
		t.Errorf("plural(0) = %q", got)
	}
}

func TestFormatCodepoint(t *testing.T) {
	if got := formatCodepoint(0xE001); got != "U+E001" {
		t.Errorf("formatCodepoint = %q", got)
	}
	if got := formatCodepoint(0x1F600); got != "U+1F600" {
		t.Errorf("formatCodepoint = %q", got)
	}
}
