package errors

import (
	"testing"
)

func TestValidateFontName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "AppIcons", false},
		{"with dash", "my-icons", false},
		{"with underscore", "my_icons", false},
		{"with digits", "Icons2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 64)), true},
		{"space", "App Icons", true},
		{"slash", "App/Icons", true},
		{"quote", `App"Icons`, true},
		{"non-ascii", "Ícones", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFontName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFontName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSelector(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"class", ".icon", false},
		{"nested", ".app .icon", false},

		{"empty", "", true},
		{"brace", ".icon{", true},
		{"semicolon", ".icon;", true},
		{"newline", ".icon\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelector(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSelector(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "fonts", false},
		{"valid nested", "static/webfonts", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/fonts", true},
		{"path traversal", "../fonts", true},
		{"null byte", "fo\x00nts", true},
		{"backslash", "static\\fonts", true},
		{"newline", "fonts\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidSVG,
		ErrCodeInvalidGlyph,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeAssetMissing,
		ErrCodeNoInput,
		ErrCodeDuplicateGlyph,
		ErrCodeFontBuild,
		ErrCodeCache,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
