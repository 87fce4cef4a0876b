package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/gleam-pkg/pkg/archive"
	"github.com/stretchr/testify/require"
)

// WriteTree writes files (slash separated paths relative to dir) below dir.
func WriteTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// BuildRelease returns a release tarball in registry layout: an outer tar
// holding VERSION, metadata.config and contents.tar.gz with the sources.
func BuildRelease(t *testing.T, sources map[string]string) []byte {
	t.Helper()
	dir := t.TempDir()
	am := archive.NewManager()
	ctx := context.Background()

	srcDir := filepath.Join(dir, "src")
	WriteTree(t, srcDir, sources)

	outerDir := filepath.Join(dir, "outer")
	require.NoError(t, os.MkdirAll(outerDir, 0o755))
	require.NoError(t, am.Create(ctx, srcDir, filepath.Join(outerDir, archive.InnerArchiveName), true))
	WriteTree(t, outerDir, map[string]string{
		"VERSION":         "3",
		"CHECKSUM":        "0000000000000000000000000000000000000000000000000000000000000000",
		"metadata.config": "{<<\"name\">>,<<\"demo\">>}.\n",
	})

	release := filepath.Join(dir, "release.tar")
	require.NoError(t, am.Create(ctx, outerDir, release, false))

	data, err := os.ReadFile(release)
	require.NoError(t, err)
	return data
}

// GleamProject returns the sources of a minimal gleam project called name.
func GleamProject(name string) map[string]string {
	return map[string]string{
		"gleam.toml":            "name = \"" + name + "\"\nversion = \"1.0.0\"\n",
		"src/" + name + ".gleam": "pub fn main() { Nil }\n",
	}
}
