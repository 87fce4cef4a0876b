package hooks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/gleam-pkg/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHookManager(t *testing.T) {
	manager := hooks.NewHookManager()
	assert.NotNil(t, manager, "NewHookManager should return a non-nil manager")
}

func TestAddAndExecuteHook(t *testing.T) {
	manager := hooks.NewHookManager()
	hctx := hooks.HookContext{
		PackageName:    "demo",
		PackageVersion: "1.2.0",
		Vars: map[string]interface{}{
			"testVar": "testValue",
		},
	}

	err := manager.AddHook(hooks.Hook{
		Type:    hooks.PreInstall,
		Content: `if testVar != "testValue" { err = "unexpected testVar" }`,
	})
	require.NoError(t, err, "AddHook should not return an error for valid hooks")

	err = manager.Execute(context.Background(), hooks.PreInstall, hctx)
	require.NoError(t, err, "Execute should not return an error for valid hooks")
}

func TestExecuteWithoutHook(t *testing.T) {
	manager := hooks.NewHookManager()
	err := manager.Execute(context.Background(), hooks.PostInstall, hooks.HookContext{PackageName: "demo"})
	assert.NoError(t, err)
}

func TestAddHookEmptyType(t *testing.T) {
	manager := hooks.NewHookManager()
	err := manager.AddHook(hooks.Hook{Content: `x := 1`})
	assert.ErrorIs(t, err, hooks.ErrHookTypeEmpty)
	assert.ErrorIs(t, manager.RemoveHook(""), hooks.ErrHookTypeEmpty)
}

func TestHasHook(t *testing.T) {
	manager := hooks.NewHookManager()

	assert.False(t, manager.HasHook(hooks.PreInstall), "Should not have hooks before adding")

	err := manager.AddHook(hooks.Hook{
		Type:    hooks.PreInstall,
		Content: `// Test hooks`,
	})
	require.NoError(t, err)

	assert.True(t, manager.HasHook(hooks.PreInstall), "Should have hooks after adding")
}

func TestRemoveHook(t *testing.T) {
	manager := hooks.NewHookManager()

	err := manager.AddHook(hooks.Hook{
		Type:    hooks.PreInstall,
		Content: `// Test hooks`,
	})
	require.NoError(t, err)

	err = manager.RemoveHook(hooks.PreInstall)
	require.NoError(t, err, "RemoveHook should not return an error for existing hooks")

	assert.False(t, manager.HasHook(hooks.PreInstall), "Should not have hooks after removal")
}

func TestLoadHooksFromDir(t *testing.T) {
	hooksDir := t.TempDir()

	files := map[string]string{
		"pre-install.tengo":  `x := 1`,
		"post-install.tengo": `y := 2`,
		"unknown.tengo":      `z := 3`,
		"pre-remove.txt":     `ignored`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(hooksDir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(hooksDir, "post-remove.tengo"), 0o755))

	manager := hooks.NewHookManager()
	require.NoError(t, hooks.LoadHooksFromDir(manager, hooksDir))

	assert.True(t, manager.HasHook(hooks.PreInstall))
	assert.True(t, manager.HasHook(hooks.PostInstall))
	assert.False(t, manager.HasHook(hooks.PreRemove))
	assert.False(t, manager.HasHook(hooks.PostRemove))
}

func TestLoadHooksFromMissingDir(t *testing.T) {
	manager := hooks.NewHookManager()
	assert.NoError(t, hooks.LoadHooksFromDir(manager, filepath.Join(t.TempDir(), "missing")))
	assert.NoError(t, hooks.LoadHooksFromDir(manager, ""))
	assert.False(t, manager.HasHook(hooks.PreInstall))
}

func TestWriteTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")

	path, err := hooks.WriteTemplate(dir, hooks.PreInstall)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pre-install.tengo"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Pre-install hooks")

	_, err = hooks.WriteTemplate(dir, hooks.PreInstall)
	assert.ErrorIs(t, err, hooks.ErrHookLoad, "existing scripts are never overwritten")

	_, err = hooks.WriteTemplate(dir, hooks.HookType("on-build"))
	assert.ErrorIs(t, err, hooks.ErrHookLoad)

	// The template is all comments, so it loads and runs cleanly.
	manager := hooks.NewHookManager()
	require.NoError(t, hooks.LoadHooksFromDir(manager, dir))
	assert.NoError(t, manager.Execute(context.Background(), hooks.PreInstall, hooks.HookContext{PackageName: "demo"}))
}

func TestHookTemplate(t *testing.T) {
	tests := []struct {
		hookType hooks.HookType
		contains string
	}{
		{hooks.PreInstall, "Pre-install hooks"},
		{hooks.PostInstall, "Post-install hooks"},
		{hooks.PreRemove, "Pre-remove hooks"},
		{hooks.PostRemove, "Post-remove hooks"},
		{"invalid", "Unknown hooks type"},
	}

	for _, tt := range tests {
		t.Run(string(tt.hookType), func(t *testing.T) {
			assert.Contains(t, hooks.HookTemplate(tt.hookType), tt.contains)
		})
	}
}
