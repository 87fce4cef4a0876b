package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/gleam-pkg/pkg/errors"
)

// HookFileExtension is the extension of hooks scripts in the hooks directory.
const HookFileExtension = ".tengo"

// HookFileName returns the file name a hooks of the given type is loaded from.
func HookFileName(hookType HookType) string {
	return string(hookType) + HookFileExtension
}

// LoadHooksFromDir loads <hooks-type>.tengo scripts from dir into manager.
// A missing directory is not an error; unknown file names are skipped.
func LoadHooksFromDir(manager HookManager, dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(ErrHookLoad, "error reading hooks file %s: %v", hookPath, err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return errors.Wrapf(err, "error adding hooks %s", hookType)
		}
	}

	return nil
}

// WriteTemplate writes HookTemplate(hookType) to dir unless a script of that
// type already exists. It returns the script path.
func WriteTemplate(dir string, hookType HookType) (string, error) {
	if !hookType.Valid() {
		return "", ErrUnsupportedHookType(string(hookType))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(ErrHookLoad, "failed to create hooks directory %s: %v", dir, err)
	}

	path := filepath.Join(dir, HookFileName(hookType))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrapf(ErrHookLoad, "failed to create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(HookTemplate(hookType) + "\n"); err != nil {
		return "", errors.Wrapf(ErrHookLoad, "failed to write %s: %v", path, err)
	}
	return path, nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreInstall:
		return `// Pre-install hooks
// This script runs after the package sources are unpacked and before
// the gleam build starts.
// Available variables:
// - packageName: string - name of the package being installed
// - packageVersion: string - resolved version
// - sourcePath: string - unpacked contents/ directory
// - installPath: string - path the launcher will be written to
// Assign a non-empty string to err to abort the install.

// Example: refuse packages without a gleam.toml
/*
os := import("os")
if is_error(os.stat(sourcePath + "/gleam.toml")) {
    err = "gleam.toml not found in " + sourcePath
}
*/`

	case PostInstall:
		return `// Post-install hooks
// This script runs after the launcher is registered.
// Available variables: same as pre-install hooks

// Example: announce the new launcher
/*
fmt := import("fmt")
fmt.println("installed " + packageName + " at " + installPath)
*/`

	case PreRemove:
		return `// Pre-remove hooks
// This script runs before a launcher is uninstalled.
// Available variables: packageName, installPath

// Example: keep a package from being removed
/*
if packageName == "pinned" {
    err = "refusing to remove " + packageName
}
*/`

	case PostRemove:
		return `// Post-remove hooks
// This script runs after a launcher is uninstalled.
// Available variables: packageName, installPath

// Example: clean up a cache directory
/*
os := import("os")
os.remove_all("/tmp/" + packageName)
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
