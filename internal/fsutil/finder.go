// Package fsutil provides file system lookup helpers for script discovery.
package fsutil

import (
	"os"
	"path/filepath"
)

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FindWithExtension returns the first dir/name+ext that exists, trying the
// extensions in order.
func FindWithExtension(dir, name string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if FileExists(path) {
			return path, true
		}
	}
	return "", false
}
