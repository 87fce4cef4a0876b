package archive

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
)

// Names inside a release tarball.
const (
	InnerArchiveName = "contents.tar.gz"
	ContentsDirName  = "contents"
)

// Bundle is an unpacked release: Root holds the outer tarball entries and
// Contents the extracted package sources.
type Bundle struct {
	Root     string
	Contents string
}

// Unpacker turns a downloaded release tarball into a Bundle.
type Unpacker struct {
	manager *Manager
}

// NewUnpacker creates an Unpacker.
func NewUnpacker() *Unpacker {
	return &Unpacker{manager: NewManager()}
}

// Unpack extracts tarPath into destDir in three steps: any previous destDir is
// removed, the outer tar is extracted, then contents.tar.gz is extracted into
// destDir/contents. Every failure is an extraction error.
func (u *Unpacker) Unpack(ctx context.Context, tarPath, destDir string) (*Bundle, error) {
	if err := fsutil.RecreateDir(destDir); err != nil {
		return nil, pkgerrors.Kind(pkgerrors.ErrExtraction, err, "failed to prepare %s", destDir)
	}

	logger.Debugf("Extracting %s to %s", tarPath, destDir)
	if err := u.manager.ExtractTar(ctx, tarPath, destDir); err != nil {
		return nil, pkgerrors.Kind(pkgerrors.ErrExtraction, err, "failed to unpack %s", filepath.Base(tarPath))
	}

	inner := filepath.Join(destDir, InnerArchiveName)
	info, err := os.Stat(inner)
	if err != nil || !info.Mode().IsRegular() {
		return nil, pkgerrors.Kind(pkgerrors.ErrExtraction, nil, "%s not found in %s", InnerArchiveName, filepath.Base(tarPath))
	}

	contents := filepath.Join(destDir, ContentsDirName)
	logger.Debugf("Decompressing %s to %s", inner, contents)
	if err := u.manager.ExtractTarGz(ctx, inner, contents); err != nil {
		return nil, pkgerrors.Kind(pkgerrors.ErrExtraction, err, "failed to unpack %s", InnerArchiveName)
	}

	return &Bundle{Root: destDir, Contents: contents}, nil
}
