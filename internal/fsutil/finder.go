// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths, sorted so
// callers observe a deterministic order regardless of directory iteration quirks.
// Dotfiles and fixture-style files (test/spec infixes) are skipped; route configs
// must never be shadowed by editor droppings or test scaffolding left on disk.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), extension) {
			return nil
		}
		if Excluded(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Excluded reports whether a file name is scaffolding rather than a real
// definition: dotfiles, and names carrying a test/spec infix or suffix
// before the extension (for example "ban_test.hcl" or "ban.spec.hcl").
func Excluded(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	base := name
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[:idx]
	}
	if strings.HasSuffix(base, "_test") || strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec") {
		return true
	}
	return false
}
