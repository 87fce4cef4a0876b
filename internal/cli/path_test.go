package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Add it? [y/N] ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Add it? [y/N] "))
		})
	}
}

func newPathTestCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	return cmd, &out
}

func TestEnsurePath(t *testing.T) {
	home := t.TempDir()
	apps := filepath.Join(home, ".gleam_pkgs", "apps")
	profile := filepath.Join(home, ".zshrc")
	t.Setenv("HOME", home)
	t.Setenv("SHELL", "/usr/bin/zsh")
	t.Setenv("PATH", "/usr/bin:/bin")

	t.Run("declined", func(t *testing.T) {
		cmd, out := newPathTestCmd("n\n")
		require.NoError(t, ensurePath(cmd, apps, false))
		assert.Contains(t, out.String(), "Skipped.")
		assert.Contains(t, out.String(), `export PATH="$PATH:`+apps+`"`)
		assert.NoFileExists(t, profile)
	})

	t.Run("accepted", func(t *testing.T) {
		cmd, out := newPathTestCmd("y\n")
		require.NoError(t, ensurePath(cmd, apps, false))
		assert.Contains(t, out.String(), "Added "+apps+" to PATH in "+profile)

		content, err := os.ReadFile(profile)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(content), apps))
	})

	t.Run("yes flag is idempotent", func(t *testing.T) {
		cmd, out := newPathTestCmd("")
		require.NoError(t, ensurePath(cmd, apps, true))
		assert.NotContains(t, out.String(), "[y/N]")

		content, err := os.ReadFile(profile)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(content), apps))
	})

	t.Run("already on PATH", func(t *testing.T) {
		t.Setenv("PATH", "/usr/bin:"+apps)
		cmd, out := newPathTestCmd("")
		require.NoError(t, ensurePath(cmd, apps, false))
		assert.Contains(t, out.String(), "already on your PATH")
	})
}

func TestEnsurePath_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", "/usr/bin")

	t.Setenv("SHELL", "/usr/bin/fish")
	cmd, _ := newPathTestCmd("y\n")
	assert.ErrorIs(t, ensurePath(cmd, "/opt/apps", false), pkgerrors.ErrUnsupportedShell)

	t.Setenv("SHELL", "")
	cmd, _ = newPathTestCmd("y\n")
	assert.ErrorIs(t, ensurePath(cmd, "/opt/apps", false), pkgerrors.ErrPath)
}
