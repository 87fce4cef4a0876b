// Package model provides the data structures shared by the gleam-pkg install
// pipeline: the resolved package reference and the installed application view.
package model

import (
	"fmt"
	"regexp"
	"time"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
)

var (
	// Hex package names are lowercase and start with a letter.
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	// Versions end up in file names below download/, so separators are never allowed.
	versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.+_-]*$`)
)

// PackageRef identifies one release of a registry package. Version is always
// the resolved one, never user input.
type PackageRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ID returns "{name}-{version}", the stem used for download artifacts.
func (p PackageRef) ID() string {
	return p.Name + "-" + p.Version
}

// String implements fmt.Stringer.
func (p PackageRef) String() string {
	return fmt.Sprintf("%s@%s", p.Name, p.Version)
}

// ValidateName checks that name can be used both as a registry path segment
// and as a file name below the managed root.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", pkgerrors.ErrInvalidPackageName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidPackageName, name)
	}
	return nil
}

// ValidateVersion checks that a registry supplied version is safe to use as
// part of a file name.
func ValidateVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: version cannot be empty", pkgerrors.ErrInvalidVersion)
	}
	if !versionPattern.MatchString(v) {
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidVersion, v)
	}
	return nil
}

// InstalledApp is an entry of the flat apps directory.
type InstalledApp struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
