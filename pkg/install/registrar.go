// Package install registers launchers in the flat apps/ directory. The
// directory listing is the only record of what is installed.
package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
)

// Registrar manages the launchers in one apps directory.
type Registrar struct {
	appsDir string
}

// NewRegistrar creates a Registrar for appsDir.
func NewRegistrar(appsDir string) *Registrar {
	return &Registrar{appsDir: appsDir}
}

// Path returns the launcher path for name.
func (r *Registrar) Path(name string) string {
	return filepath.Join(r.appsDir, name)
}

// Install replaces whatever is installed under ref.Name with launcher.
// The previous launcher and any versioned {name}-* directories are removed
// first, so a failed write leaves the package uninstalled.
func (r *Registrar) Install(ref model.PackageRef, launcher []byte) (string, error) {
	if err := model.ValidateName(ref.Name); err != nil {
		return "", err
	}
	if err := r.clear(ref.Name); err != nil {
		return "", err
	}

	path := r.Path(ref.Name)
	if err := fsutil.WriteFileAtomic(path, launcher, fsutil.FileModeExec); err != nil {
		return "", pkgerrors.Kind(pkgerrors.ErrPackaging, err, "failed to write launcher %s", path)
	}
	logger.DebugfWithFields(logger.Fields{"version": ref.Version}, "Installed launcher %s", path)
	return path, nil
}

// Remove uninstalls name.
func (r *Registrar) Remove(name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if _, err := os.Lstat(r.Path(name)); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", pkgerrors.ErrPackageNotInstalled, name)
	}
	return r.clear(name)
}

// List returns the installed launchers sorted by name.
func (r *Registrar) List() ([]model.InstalledApp, error) {
	entries, err := os.ReadDir(r.appsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.appsDir, err)
	}

	apps := make([]model.InstalledApp, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		apps = append(apps, model.InstalledApp{
			Name:    entry.Name(),
			Path:    filepath.Join(r.appsDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}

// clear removes the launcher of name and its versioned directories.
func (r *Registrar) clear(name string) error {
	path := r.Path(name)
	if err := os.RemoveAll(path); err != nil {
		return pkgerrors.Kind(pkgerrors.ErrPackaging, err, "failed to remove previous launcher %s", path)
	}

	matches, err := filepath.Glob(filepath.Join(r.appsDir, name+"-*"))
	if err != nil {
		return pkgerrors.Kind(pkgerrors.ErrPackaging, err, "failed to list previous installs of %s", name)
	}
	for _, match := range matches {
		info, err := os.Lstat(match)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(match); err != nil {
			return pkgerrors.Kind(pkgerrors.ErrPackaging, err, "failed to remove previous install %s", match)
		}
		logger.Debugf("Removed previous install %s", match)
	}
	return nil
}
