package registry

import (
	"fmt"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
	"github.com/hashicorp/go-version"
)

// Metadata is the subset of the registry package document gleam-pkg reads.
type Metadata struct {
	Name     string    `json:"name"`
	Releases []Release `json:"releases"`
}

// Release is one published version of a package.
type Release struct {
	Version    string `json:"version"`
	InsertedAt string `json:"inserted_at,omitempty"`
	URL        string `json:"url,omitempty"`
}

// SelectVersion returns the version of the first listed release. The registry
// order is trusted as is; versions are not compared.
func SelectVersion(meta *Metadata) (string, error) {
	if meta == nil || len(meta.Releases) == 0 {
		return "", &pkgerrors.RegistryError{Op: pkgerrors.OpResolve, Msg: "no releases found in metadata"}
	}
	v := meta.Releases[0].Version
	if v == "" {
		return "", &pkgerrors.RegistryError{Op: pkgerrors.OpResolve, Msg: "no version found in metadata"}
	}
	if err := model.ValidateVersion(v); err != nil {
		return "", &pkgerrors.RegistryError{Op: pkgerrors.OpResolve, Msg: "registry returned an unusable version", Err: err}
	}
	return v, nil
}

// SelectHighestVersion returns the highest release version that parses as a
// semantic version. Versions that are not safe file name parts are skipped.
// Pre-releases are only chosen when nothing else is published.
func SelectHighestVersion(meta *Metadata) (string, error) {
	if meta == nil || len(meta.Releases) == 0 {
		return "", &pkgerrors.RegistryError{Op: pkgerrors.OpResolve, Msg: "no releases found in metadata"}
	}

	var best, bestPre *version.Version
	var bestRaw, bestPreRaw string
	for _, r := range meta.Releases {
		if model.ValidateVersion(r.Version) != nil {
			continue
		}
		v, err := version.NewVersion(r.Version)
		if err != nil {
			continue
		}
		if v.Prerelease() != "" {
			if bestPre == nil || v.GreaterThan(bestPre) {
				bestPre, bestPreRaw = v, r.Version
			}
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, r.Version
		}
	}

	switch {
	case best != nil:
		return bestRaw, nil
	case bestPre != nil:
		return bestPreRaw, nil
	default:
		return "", &pkgerrors.RegistryError{
			Op:  pkgerrors.OpResolve,
			Msg: fmt.Sprintf("none of the %d releases has a valid version", len(meta.Releases)),
		}
	}
}
