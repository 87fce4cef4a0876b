//go:build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall_EndToEnd(t *testing.T) {
	e := newEnv(t)
	e.registry.AddPackage("demo", []string{"1.2.0", "1.1.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))

	output, err := e.run(t, "n\n", "install", "demo")
	require.NoError(t, err)

	for _, phase := range []string{"resolving:", "downloading:", "extracting:", "building:", "packaging:", "installing:", "done:"} {
		assert.Contains(t, output, phase)
	}
	assert.Contains(t, output, "Installed demo@1.2.0")
	assert.Contains(t, output, "is not on your PATH")
	assert.Contains(t, output, "Skipped.")

	assert.FileExists(t, filepath.Join(e.root, "download", "demo-1.2.0.tar"))
	assert.FileExists(t, filepath.Join(e.root, "download", "demo-1.2.0", "contents", "gleam.toml"))
	assert.DirExists(t, filepath.Join(e.root, "db"))

	launcher := filepath.Join(e.apps(), "demo")
	info, err := os.Stat(launcher)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "launcher must be executable")

	run := exec.Command(launcher, "--help")
	run.Env = append(os.Environ(), "TMPDIR="+t.TempDir())
	got, err := run.CombinedOutput()
	require.NoError(t, err, string(got))
	assert.Equal(t, "demo: --help\n", string(got))

	calls, err := os.ReadFile(e.toolchain.CallLog)
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "add gleescript", "run -m gleescript -- --out=bin"},
		strings.Split(strings.TrimSpace(string(calls)), "\n"))

	_, err = os.Stat(filepath.Join(e.home, ".bashrc"))
	assert.True(t, os.IsNotExist(err), "declining the prompt leaves the profile alone")
}

func TestInstall_RuntimeMismatch(t *testing.T) {
	e := newEnv(t)
	e.registry.AddPackage("demo", []string{"1.2.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))

	_, err := e.run(t, "", "install", "demo")
	require.NoError(t, err)

	e.toolchain.SetRuntimeVersion(t, "28")
	out, err := exec.Command(filepath.Join(e.apps(), "demo")).CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(out), "built for 27, found 28")
}

func TestInstall_AcceptsPathPrompt(t *testing.T) {
	e := newEnv(t)
	e.registry.AddPackage("demo", []string{"1.2.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))

	output, err := e.run(t, "y\n", "install", "demo")
	require.NoError(t, err)
	assert.Contains(t, output, "Added "+e.apps()+" to PATH")

	profile, err := os.ReadFile(filepath.Join(e.home, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(profile), `export PATH="$PATH:`+e.apps()+`"`)
}

func TestInstall_PackageNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "install", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrRegistry)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(filepath.Join(e.root, "download"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	for _, path := range e.registry.Requests() {
		assert.NotContains(t, path, "/tarballs/", "no tarball is requested after a failed lookup")
	}
}

func TestInstall_BuildFailure(t *testing.T) {
	e := newEnv(t)
	e.toolchain = testutil.FakeToolchain(t, "27", "build")
	e = rewriteToolchain(t, e)
	e.registry.AddPackage("demo", []string{"1.2.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))

	output, err := e.run(t, "", "install", "demo")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrBuild)
	assert.Contains(t, output, "error: gleam build failed")
	assert.NoFileExists(t, filepath.Join(e.apps(), "demo"))
}

func TestInstall_DryRun(t *testing.T) {
	e := newEnv(t)
	e.registry.AddPackage("demo", []string{"1.2.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))

	output, err := e.run(t, "", "install", "--dry-run", "demo")
	require.NoError(t, err)
	assert.Contains(t, output, "dry-run: would install demo@1.2.0")
	assert.NoFileExists(t, filepath.Join(e.root, "download", "demo-1.2.0.tar"))
}

func TestInstall_Hooks(t *testing.T) {
	e := newEnv(t)
	e.registry.AddPackage("demo", []string{"1.2.0"}, testutil.BuildRelease(t, testutil.GleamProject("demo")))
	testutil.WriteTree(t, e.hooksDir, map[string]string{
		"pre-install.tengo": `if packageName == "demo" { err = "demo is blocked" }`,
	})

	_, err := e.run(t, "", "install", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo is blocked")
	assert.NoFileExists(t, filepath.Join(e.apps(), "demo"))

	_, err = e.run(t, "", "install", "--skip-hooks", "demo")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.apps(), "demo"))
}

// rewriteToolchain points the config of e at e.toolchain.
func rewriteToolchain(t *testing.T, e *env) *env {
	t.Helper()
	data, err := os.ReadFile(e.cfgPath)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "  gleam: "):
			lines[i] = "  gleam: " + e.toolchain.Gleam
		case strings.HasPrefix(line, "  version_query: "):
			lines[i] = "  version_query: [" + strings.Join(e.toolchain.VersionQuery, ", ") + "]"
		}
	}
	require.NoError(t, os.WriteFile(e.cfgPath, []byte(strings.Join(lines, "\n")), 0o600))
	return e
}
