// Package archive extracts and creates the tar archives handled by gleam-pkg:
// the plain outer release tarball and the gzip-compressed source tarball
// nested inside it.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/mholt/archives"
)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

var (
	tarFormat   = archives.Tar{}
	gzFormat    = archives.Gz{}
	tarGzFormat = archives.CompressedArchive{
		Compression: gzFormat,
		Archival:    tarFormat,
	}
)

// ExtractTar extracts an uncompressed tar archive into destDir.
func (am *Manager) ExtractTar(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return am.Extract(ctx, file, destDir)
}

// ExtractTarGz extracts a gzip-compressed tar archive into destDir.
func (am *Manager) ExtractTarGz(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	rc, err := gzFormat.OpenReader(file)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = rc.Close() }()

	return am.Extract(ctx, rc, destDir)
}

// Extract reads a tar stream from r into destDir.
// Entries that would be written outside destDir fail with a PathTraversalError.
func (am *Manager) Extract(ctx context.Context, r io.Reader, destDir string) error {
	if err := fsutil.EnsureDir(destDir); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	root, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	return tarFormat.Extract(ctx, r, func(ctx context.Context, f archives.FileInfo) error {
		return am.extractEntry(root, f)
	})
}

// Create writes the contents of sourceDir to archivePath as a tar archive,
// gzip-compressed when compressed is set. Paths inside the archive are
// relative to sourceDir.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string, compressed bool) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	var format archives.Archiver = tarFormat
	if compressed {
		format = tarGzFormat
	}

	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// targetPath maps an entry name to a path below root.
func targetPath(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", &pkgerrors.PathTraversalError{Path: name}
	}
	return filepath.Join(root, clean), nil
}

// extractEntry processes a single archive entry and writes it below root.
func (am *Manager) extractEntry(root string, f archives.FileInfo) error {
	target, err := targetPath(root, f.NameInArchive)
	if err != nil {
		return err
	}
	if target == root {
		return nil
	}

	switch {
	case f.IsDir():
		return os.MkdirAll(target, fsutil.DirModeDefault)
	case f.Mode()&os.ModeSymlink != 0:
		return am.writeSymlink(root, target, f)
	case f.Mode().IsRegular():
		return am.writeRegularFile(target, f)
	default:
		// Devices, fifos and hard links are not part of source packages.
		return nil
	}
}

// writeSymlink creates a symlink at target. Links may only point inside root.
func (am *Manager) writeSymlink(root, target string, f archives.FileInfo) error {
	link := f.LinkTarget
	resolved := link
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), link)
	}
	if rel, err := filepath.Rel(root, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return &pkgerrors.PathTraversalError{Path: f.NameInArchive + " -> " + link}
	}

	if err := os.MkdirAll(filepath.Dir(target), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", f.NameInArchive, err)
	}
	_ = os.Remove(target)
	return os.Symlink(link, target)
}

// writeRegularFile writes a regular file entry to target and preserves its metadata.
func (am *Manager) writeRegularFile(target string, f archives.FileInfo) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(target), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", f.NameInArchive, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dst, err := fsutil.CreateFilePerm(target, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", target, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", f.NameInArchive, err)
	}

	if err := os.Chmod(target, perm); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", target, err)
	}
	if err := os.Chtimes(target, f.ModTime(), f.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", target, err)
	}
	return nil
}
