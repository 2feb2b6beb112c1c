// Package samples provides embedded SVG icons for scaffolding new projects
// and for tests.
//
// The icons are embedded directly into the binary using go:embed, so
// `iconfont init` works without network access.
package samples

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed icons/*.svg
var icons embed.FS

// Names returns the file names of all sample icons, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(icons, "icons")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Icon returns the content of a sample icon by file name.
func Icon(name string) ([]byte, error) {
	return icons.ReadFile(path.Join("icons", name))
}

// MustIcon is like Icon but panics on unknown names. It is meant for tests.
func MustIcon(name string) []byte {
	data, err := Icon(name)
	if err != nil {
		panic(err)
	}
	return data
}

// WriteTo copies the named sample icons (all of them when names is empty)
// into dir, creating it if needed. Existing files are left untouched unless
// overwrite is set. It returns the paths written.
func WriteTo(dir string, overwrite bool, names ...string) ([]string, error) {
	if len(names) == 0 {
		names = Names()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, name := range names {
		data, err := Icon(name)
		if err != nil {
			return written, err
		}
		dst := filepath.Join(dir, name)
		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				continue
			}
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	return written, nil
}
