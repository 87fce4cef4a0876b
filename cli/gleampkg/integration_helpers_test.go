//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/gleam-pkg/test/testutil"
	"github.com/stretchr/testify/require"
)

type env struct {
	root      string
	cfgPath   string
	hooksDir  string
	home      string
	registry  *testutil.Registry
	toolchain *testutil.Toolchain
}

// newEnv writes a config pointing at a fake registry and toolchain. HOME and
// SHELL are redirected so PATH registration never touches the real profile.
func newEnv(t *testing.T) *env {
	t.Helper()
	tempDir := t.TempDir()
	e := &env{
		root:      filepath.Join(tempDir, ".gleam_pkgs"),
		cfgPath:   filepath.Join(tempDir, "config", "config.yaml"),
		hooksDir:  filepath.Join(tempDir, "hooks"),
		home:      filepath.Join(tempDir, "home"),
		registry:  testutil.NewRegistry(t),
		toolchain: testutil.FakeToolchain(t, "27", "none"),
	}
	require.NoError(t, os.MkdirAll(e.home, 0o755))
	t.Setenv("HOME", e.home)
	t.Setenv("SHELL", "/bin/bash")

	yamlContent := "registry:\n" +
		"  api_base: " + e.registry.APIBase() + "\n" +
		"  repository_base: " + e.registry.RepositoryBase() + "\n" +
		"  http_timeout: 10s\n" +
		"toolchain:\n" +
		"  gleam: " + e.toolchain.Gleam + "\n" +
		"  version_query: [" + strings.Join(e.toolchain.VersionQuery, ", ") + "]\n" +
		"settings:\n" +
		"  root_dir: " + e.root + "\n" +
		"  hooks_dir: " + e.hooksDir + "\n" +
		"  log_level: warn\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(e.cfgPath), 0o755))
	require.NoError(t, os.WriteFile(e.cfgPath, []byte(yamlContent), 0o600))
	return e
}

func (e *env) apps() string {
	return filepath.Join(e.root, "apps")
}

// run executes the CLI with the given stdin and returns stdout.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
