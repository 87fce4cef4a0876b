package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRelease creates a release tarball the way the registry serves it:
// a plain tar holding metadata files and contents.tar.gz.
func buildRelease(t *testing.T, dir string, sources map[string]string) string {
	t.Helper()
	am := NewManager()
	ctx := context.Background()

	srcDir := filepath.Join(dir, "src-tree")
	writeTree(t, srcDir, sources)

	outerDir := filepath.Join(dir, "outer")
	require.NoError(t, os.MkdirAll(outerDir, 0o755))
	require.NoError(t, am.Create(ctx, srcDir, filepath.Join(outerDir, InnerArchiveName), true))
	writeTree(t, outerDir, map[string]string{"VERSION": "3", "CHECKSUM": "abc", "metadata.config": "{}"})

	release := filepath.Join(dir, "demo-1.2.0.tar")
	require.NoError(t, am.Create(ctx, outerDir, release, false))
	return release
}

func TestUnpacker_Unpack(t *testing.T) {
	tempDir := t.TempDir()
	release := buildRelease(t, tempDir, map[string]string{
		"gleam.toml":     "name = \"demo\"\n",
		"src/demo.gleam": "pub fn main() { Nil }\n",
	})

	dest := filepath.Join(tempDir, "download", "demo-1.2.0")
	bundle, err := NewUnpacker().Unpack(context.Background(), release, dest)
	require.NoError(t, err)

	assert.Equal(t, dest, bundle.Root)
	assert.Equal(t, filepath.Join(dest, "contents"), bundle.Contents)
	assert.FileExists(t, filepath.Join(dest, "VERSION"))
	assert.FileExists(t, filepath.Join(dest, InnerArchiveName))
	assert.FileExists(t, filepath.Join(bundle.Contents, "gleam.toml"))
	assert.FileExists(t, filepath.Join(bundle.Contents, "src", "demo.gleam"))
}

func TestUnpacker_CleanSlate(t *testing.T) {
	tempDir := t.TempDir()
	release := buildRelease(t, tempDir, map[string]string{"gleam.toml": "name = \"demo\"\n"})

	dest := filepath.Join(tempDir, "demo-1.2.0")
	stale := filepath.Join(dest, "contents", "stale.gleam")
	writeTree(t, dest, map[string]string{"contents/stale.gleam": "old"})
	require.FileExists(t, stale)

	_, err := NewUnpacker().Unpack(context.Background(), release, dest)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestUnpacker_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name: "missing tarball",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing.tar")
			},
		},
		{
			name: "malformed outer archive",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "bad.tar")
				require.NoError(t, os.WriteFile(path, []byte("this is not a tar archive"), 0o644))
				return path
			},
		},
		{
			name: "missing inner archive",
			setup: func(t *testing.T, dir string) string {
				outer := filepath.Join(dir, "outer")
				writeTree(t, outer, map[string]string{"VERSION": "3"})
				path := filepath.Join(dir, "noinner.tar")
				require.NoError(t, NewManager().Create(context.Background(), outer, path, false))
				return path
			},
		},
		{
			name: "inner archive is not gzip",
			setup: func(t *testing.T, dir string) string {
				outer := filepath.Join(dir, "outer")
				writeTree(t, outer, map[string]string{InnerArchiveName: "plain text"})
				path := filepath.Join(dir, "badinner.tar")
				require.NoError(t, NewManager().Create(context.Background(), outer, path, false))
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tarPath := tt.setup(t, dir)

			bundle, err := NewUnpacker().Unpack(context.Background(), tarPath, filepath.Join(dir, "dest"))
			require.Error(t, err)
			assert.Nil(t, bundle)
			assert.ErrorIs(t, err, pkgerrors.ErrExtraction)
		})
	}
}
