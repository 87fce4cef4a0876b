package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	l := NewLayout("/opt/gp")

	assert.Equal(t, "/opt/gp", l.Root)
	assert.Equal(t, filepath.Join("/opt/gp", "download"), l.Download)
	assert.Equal(t, filepath.Join("/opt/gp", "apps"), l.Apps)
	assert.Equal(t, filepath.Join("/opt/gp", "db"), l.DB)
	assert.Equal(t, filepath.Join("/opt/gp", "download", "demo-1.2.0"), l.ExtractDir("demo", "1.2.0"))
}

func TestResolveLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name     string
		root     string
		expected string
	}{
		{name: "default root", root: "", expected: filepath.Join(home, ".gleam_pkgs")},
		{name: "tilde root", root: "~/pkgs", expected: filepath.Join(home, "pkgs")},
		{name: "absolute root", root: "/var/tmp/gp", expected: "/var/tmp/gp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ResolveLayout(tt.root)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, l.Root)
		})
	}
}

func TestResolveLayout_NoHome(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("home lookup uses different variables on this platform")
	}
	t.Setenv("HOME", "")

	_, err := ResolveLayout("")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrDirectoryCreation)
}

func TestLayout_Ensure(t *testing.T) {
	l := NewLayout(filepath.Join(t.TempDir(), "root"))

	require.NoError(t, l.Ensure())
	for _, dir := range l.Dirs() {
		assert.DirExists(t, dir)
	}

	// Idempotent.
	require.NoError(t, l.Ensure())
}

func TestLayout_EnsureFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	parent := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(parent, 0o555))

	err := NewLayout(filepath.Join(parent, "root")).Ensure()
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrDirectoryCreation)
}
