package fontgen

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/iconfont/pkg/errors"
)

// Expand resolves forward-slash globs (with "**" support) to a sorted,
// de-duplicated list of forward-slash file paths.
func Expand(globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, g := range globs {
		matches, err := doublestar.FilepathGlob(filepath.FromSlash(g), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "bad glob %q", g)
		}
		for _, m := range matches {
			m = filepath.ToSlash(m)
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// LoadSources expands globs and reads every matching file. It fails with
// NO_INPUT when nothing matches.
func LoadSources(globs []string) ([]Source, error) {
	paths, err := Expand(globs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeNoInput, "no SVG files match %v", globs)
	}

	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.FromSlash(p))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", p)
		}
		sources = append(sources, Source{Path: p, Data: data})
	}
	return sources, nil
}
