// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension returns the regular files directly inside dir whose
// names end with extension, sorted by path. Subdirectories are not searched.
func FindFilesByExtension(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// HasFiles reports whether dir is a directory containing at least one file
// with the given extension.
func HasFiles(dir string, extension string) bool {
	if !IsDir(dir) {
		return false
	}
	files, err := FindFilesByExtension(dir, extension)
	return err == nil && len(files) > 0
}

// RemoveDir removes dir and everything below it and reports whether there
// was anything to remove. A missing dir is not an error.
func RemoveDir(dir string) (bool, error) {
	if dir == "" || !IsDir(dir) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	return true, nil
}
