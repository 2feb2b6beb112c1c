package errors

import (
	"strings"
	"unicode"
)

// ValidateFontName validates a font family name.
// The name ends up in file names, URLs and CSS strings, so it is restricted to
// a conservative character set.
func ValidateFontName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "font name cannot be empty")
	}
	if len(name) > 63 {
		return New(ErrCodeInvalidConfig, "font name too long (max 63 characters)")
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidConfig, "font name contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateSelector validates a CSS class selector used as the icon base class.
func ValidateSelector(selector string) error {
	if selector == "" {
		return New(ErrCodeInvalidConfig, "selector cannot be empty")
	}
	if strings.ContainsAny(selector, "{};\n\r") {
		return New(ErrCodeInvalidConfig, "selector contains invalid characters: %q", selector)
	}
	return nil
}

// ValidatePath validates a relative URL path fragment such as the font path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
