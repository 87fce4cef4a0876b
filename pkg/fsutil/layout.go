package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
)

// Names of the managed directories below the root.
const (
	RootDirName     = ".gleam_pkgs"
	DownloadDirName = "download"
	AppsDirName     = "apps"
	DBDirName       = "db"
)

// Layout is the managed directory tree. All four directories share one root.
type Layout struct {
	Root     string
	Download string
	Apps     string
	DB       string
}

// NewLayout returns the layout rooted at root without touching the file system.
func NewLayout(root string) Layout {
	return Layout{
		Root:     root,
		Download: filepath.Join(root, DownloadDirName),
		Apps:     filepath.Join(root, AppsDirName),
		DB:       filepath.Join(root, DBDirName),
	}
}

// DefaultRoot returns ~/.gleam_pkgs for the current user.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", pkgerrors.Kind(pkgerrors.ErrDirectoryCreation, err, "unable to locate home directory")
	}
	return filepath.Join(home, RootDirName), nil
}

// ResolveLayout returns the layout for root, falling back to DefaultRoot when
// root is empty. A leading "~/" is expanded against the home directory.
func ResolveLayout(root string) (Layout, error) {
	switch {
	case root == "":
		def, err := DefaultRoot()
		if err != nil {
			return Layout{}, err
		}
		root = def
	case root == "~" || len(root) > 1 && root[:2] == "~/":
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return Layout{}, pkgerrors.Kind(pkgerrors.ErrDirectoryCreation, err, "unable to locate home directory")
		}
		root = filepath.Join(home, root[1:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, pkgerrors.Kind(pkgerrors.ErrDirectoryCreation, err, "invalid root directory %q", root)
	}
	return NewLayout(abs), nil
}

// Dirs returns the managed directories, root first.
func (l Layout) Dirs() []string {
	return []string{l.Root, l.Download, l.Apps, l.DB}
}

// Ensure creates every managed directory that does not exist yet.
func (l Layout) Ensure() error {
	for _, dir := range l.Dirs() {
		if dir == "" {
			return fmt.Errorf("%w: empty directory in layout", pkgerrors.ErrDirectoryCreation)
		}
		if err := EnsureDir(dir); err != nil {
			return pkgerrors.Kind(pkgerrors.ErrDirectoryCreation, err, "%s", dir)
		}
	}
	return nil
}

// ExtractDir returns download/{name}-{version}/.
func (l Layout) ExtractDir(name, version string) string {
	return filepath.Join(l.Download, name+"-"+version)
}
