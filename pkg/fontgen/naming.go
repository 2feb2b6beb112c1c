package fontgen

import (
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/iconfont/pkg/errors"
)

// pinnedName matches "uE001-name" and "uE001,E002-name".
var pinnedName = regexp.MustCompile(`^u([0-9A-Fa-f]{4,6})(?:,[0-9A-Fa-f]{4,6})*-(.+)$`)

// entry is a named source with its final codepoint.
type entry struct {
	name      string
	path      string
	data      []byte
	codepoint rune
	pinned    bool
}

// GlyphName derives the glyph name and optional pinned codepoint from a
// source path.
func GlyphName(p string) (name string, pinned rune, ok bool) {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if ext := path.Ext(base); strings.EqualFold(ext, ".svg") {
		base = base[:len(base)-len(ext)]
	}
	m := pinnedName.FindStringSubmatch(base)
	if m == nil {
		return base, 0, false
	}
	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil || v > 0x10FFFF {
		return base, 0, false
	}
	return m[2], rune(v), true
}

// allocate names every source and assigns codepoints. The result is ordered
// by codepoint.
func allocate(sources []Source, start rune, sortByName bool) ([]entry, error) {
	entries := make([]entry, 0, len(sources))
	names := make(map[string]string, len(sources))
	used := make(map[rune]string)

	for _, s := range sources {
		name, cp, pinned := GlyphName(s.Path)
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidGlyph, "cannot derive a glyph name from %q", s.Path)
		}
		if prev, dup := names[name]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateGlyph,
				"glyph %q defined by both %s and %s", name, prev, s.Path)
		}
		names[name] = s.Path

		e := entry{name: name, path: s.Path, data: s.Data}
		if pinned {
			if !assignable(cp) {
				return nil, errors.New(errors.ErrCodeInvalidGlyph,
					"glyph %q pins U+%04X, which is a control or surrogate codepoint", name, cp)
			}
			if prev, taken := used[cp]; taken {
				return nil, errors.New(errors.ErrCodeDuplicateGlyph,
					"codepoint U+%04X pinned by both %q and %q", cp, prev, name)
			}
			used[cp] = name
			e.codepoint, e.pinned = cp, true
		}
		entries = append(entries, e)
	}

	if sortByName {
		slices.SortStableFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })
	}

	next := start
	for i := range entries {
		if entries[i].pinned {
			continue
		}
		for next <= 0x10FFFF && (used[next] != "" || !assignable(next)) {
			next++
		}
		if next > 0x10FFFF {
			return nil, errors.New(errors.ErrCodeFontBuild, "ran out of codepoints")
		}
		entries[i].codepoint = next
		used[next] = entries[i].name
		next++
	}

	slices.SortStableFunc(entries, func(a, b entry) int { return int(a.codepoint - b.codepoint) })
	return entries, nil
}

// assignable reports whether r can carry a glyph: a Unicode scalar value
// that is neither a C0/C1 control nor a surrogate.
func assignable(r rune) bool {
	switch {
	case r < 0x20, r >= 0x7F && r <= 0x9F:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	}
	return r <= 0x10FFFF
}
