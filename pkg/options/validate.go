package options

import (
	"strings"

	"github.com/matzehuels/iconfont/pkg/errors"
)

// Validate checks user-supplied values strictly. Resolve itself never fails;
// Validate is for front ends (config files, flags) that want to tell the user
// about typos instead of silently falling back to defaults.
func (c Config) Validate() error {
	for _, name := range c.Formats {
		if _, ok := ParseFormat(name); !ok {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %q (must be one of: svg, ttf, woff, woff2, eot)", name)
		}
	}
	if c.FontName != "" {
		if err := errors.ValidateFontName(c.FontName); err != nil {
			return err
		}
	}
	if c.Selector != "" {
		if err := errors.ValidateSelector(c.Selector); err != nil {
			return err
		}
	}
	if c.FontPath != "" {
		if err := errors.ValidatePath(strings.Trim(c.FontPath, "/")); err != nil {
			return err
		}
	}
	if c.StartCodepoint < 0 || c.StartCodepoint > 0x10FFFF {
		return errors.New(errors.ErrCodeInvalidConfig, "start codepoint out of range: %#x", c.StartCodepoint)
	}
	return nil
}

// Merge returns c with every non-zero field of override applied on top.
// It is used to layer CLI flags over config file values.
func (c Config) Merge(override Config) Config {
	out := c
	if len(override.Dirs) > 0 {
		out.Dirs = override.Dirs
	}
	if override.FontName != "" {
		out.FontName = override.FontName
	}
	if len(override.Formats) > 0 {
		out.Formats = override.Formats
	}
	if override.Selector != "" {
		out.Selector = override.Selector
	}
	if override.FontPath != "" {
		out.FontPath = override.FontPath
	}
	if override.StartCodepoint != 0 {
		out.StartCodepoint = override.StartCodepoint
	}
	if override.Types != "" {
		out.Types = override.Types
	}
	if override.Manifest != "" {
		out.Manifest = override.Manifest
	}
	return out
}
