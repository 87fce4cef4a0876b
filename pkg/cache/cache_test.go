package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/gleam-pkg/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate creates two downloaded releases, one of them unpacked.
func populate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]int{
		"demo-1.2.0.tar":                  100,
		"other-0.1.0.tar":                 50,
		"demo-1.2.0/VERSION":              1,
		"demo-1.2.0/contents/gleam.toml":  20,
		"demo-1.2.0/contents/src/a.gleam": 30,
		"notes.txt":                       7,
	}
	for name, size := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	}
	return dir
}

func TestGetInfo(t *testing.T) {
	dir := populate(t)

	info, err := cache.NewManager(dir).GetInfo()
	require.NoError(t, err)

	assert.Equal(t, dir, info.Directory)
	assert.Equal(t, int64(150), info.ArchiveSize)
	assert.Equal(t, 2, info.ArchiveFiles)
	assert.Equal(t, int64(51), info.SourceSize)
	assert.Equal(t, 1, info.SourceDirs)
	assert.Equal(t, int64(201), info.TotalSize)
}

func TestGetInfo_MissingDirectory(t *testing.T) {
	info, err := cache.NewManager(filepath.Join(t.TempDir(), "missing")).GetInfo()
	require.NoError(t, err)
	assert.Zero(t, info.TotalSize)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name         string
		options      cache.CleanOptions
		archiveFreed int64
		sourceFreed  int64
		remaining    []string
	}{
		{
			name:         "default cleans everything",
			options:      cache.CleanOptions{},
			archiveFreed: 150,
			sourceFreed:  51,
			remaining:    []string{"notes.txt"},
		},
		{
			name:         "archives only",
			options:      cache.CleanOptions{Archives: true},
			archiveFreed: 150,
			remaining:    []string{"demo-1.2.0", "notes.txt"},
		},
		{
			name:        "sources only",
			options:     cache.CleanOptions{Sources: true},
			sourceFreed: 51,
			remaining:   []string{"demo-1.2.0.tar", "notes.txt", "other-0.1.0.tar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := populate(t)

			result, err := cache.NewManager(dir).Clean(tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.archiveFreed, result.ArchiveFreed)
			assert.Equal(t, tt.sourceFreed, result.SourceFreed)
			assert.Equal(t, tt.archiveFreed+tt.sourceFreed, result.TotalFreed)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, tt.remaining, names)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cache.FormatBytes(tt.bytes))
	}
}
