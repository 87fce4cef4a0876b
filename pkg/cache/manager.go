// Package cache inspects and cleans the download directory, which keeps every
// fetched release tarball and its unpacked sources after an install.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultManager implements the Manager interface for the download directory.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager for directory.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// Clean removes cached files according to the specified options. Installed
// launchers do not depend on anything in the download directory.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	result := &CleanResult{}

	// Default to cleaning all if no specific flags are set
	if !options.Archives && !options.Sources {
		options.All = true
	}

	entries, err := cm.entries()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheClean, err)
	}

	for _, entry := range entries {
		path := filepath.Join(cm.directory, entry.Name())
		switch {
		case entry.IsDir() && (options.All || options.Sources):
			size, _, err := getDirSizeAndFiles(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCacheClean, err)
			}
			if err := os.RemoveAll(path); err != nil {
				return nil, fmt.Errorf("%w: failed to remove directory %s: %w", ErrCacheClean, path, err)
			}
			result.SourceFreed += size
		case isArchive(entry) && (options.All || options.Archives):
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCacheClean, err)
			}
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("%w: failed to remove %s: %w", ErrCacheClean, path, err)
			}
			result.ArchiveFreed += info.Size()
		}
	}

	result.TotalFreed = result.ArchiveFreed + result.SourceFreed
	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	entries, err := cm.entries()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheInfo, err)
	}

	for _, entry := range entries {
		switch {
		case entry.IsDir():
			size, _, err := getDirSizeAndFiles(filepath.Join(cm.directory, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCacheInfo, err)
			}
			info.SourceSize += size
			info.SourceDirs++
		case isArchive(entry):
			fi, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCacheInfo, err)
			}
			info.ArchiveSize += fi.Size()
			info.ArchiveFiles++
		}
	}

	info.TotalSize = info.ArchiveSize + info.SourceSize
	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

func (cm *DefaultManager) entries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(cm.directory)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cm.directory, err)
	}
	return entries, nil
}

func isArchive(entry os.DirEntry) bool {
	return entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".tar")
}

// getDirSizeAndFiles calculates directory size and file count.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("error walking directory %s: %w", dir, err)
	}
	return size, count, err
}

// FormatBytes converts bytes to a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
