// Package fsutil provides the managed directory layout and small file system helpers.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parent directories with default permissions if they don't exist.
// It uses DirModeDefault (0755) permissions for the created directories.
// Returns an error if the directory cannot be created or if the path exists but is not a directory.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return EnsureDir(dir)
}

// RecreateDir removes path recursively if it exists and creates it again empty.
func RecreateDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return EnsureDir(path)
}
