// Package shellpath answers whether the apps directory is on the user's PATH
// and, if not, which shell profile an export line belongs in. It never
// prompts; the confirmation lives in the CLI.
package shellpath

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"mvdan.cc/sh/v3/syntax"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Status describes the PATH registration state of the apps directory.
type Status struct {
	Dir    string
	OnPath bool
	// Shell and Profile are only set when OnPath is false.
	Shell   string
	Profile string
}

// profiles maps supported shells to their profile file below $HOME.
var profiles = map[string]string{
	"bash": ".bashrc",
	"zsh":  ".zshrc",
}

// Inspect checks PATH for dir. When dir is missing from PATH it detects the
// login shell from SHELL and returns the profile to extend.
func Inspect(dir string, env LookupFunc) (Status, error) {
	st := Status{Dir: dir}

	pathVar, ok := env("PATH")
	if !ok {
		return st, fmt.Errorf("%w: PATH is not set", pkgerrors.ErrPath)
	}
	st.OnPath = Contains(pathVar, dir)
	if st.OnPath {
		return st, nil
	}

	shellVar, ok := env("SHELL")
	if !ok || shellVar == "" {
		return st, fmt.Errorf("%w: SHELL is not set", pkgerrors.ErrPath)
	}
	st.Shell = filepath.Base(shellVar)
	profile, ok := profiles[st.Shell]
	if !ok {
		return st, fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedShell, st.Shell)
	}

	home, ok := env("HOME")
	if !ok || home == "" {
		return st, fmt.Errorf("%w: HOME is not set", pkgerrors.ErrPath)
	}
	st.Profile = filepath.Join(home, profile)
	return st, nil
}

// Contains reports whether dir is one of the entries of pathVar.
func Contains(pathVar, dir string) bool {
	want := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathVar) {
		if entry != "" && filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}

// ExportLine returns the profile line that appends dir to PATH. Directories
// with shell metacharacters are quoted so the profile never expands them.
func ExportLine(dir string) (string, error) {
	q, err := syntax.Quote(dir, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("%w: cannot quote %q for a shell profile: %w", pkgerrors.ErrPath, dir, err)
	}
	if q == dir {
		return fmt.Sprintf("export PATH=\"$PATH:%s\"", dir), nil
	}
	return fmt.Sprintf("export PATH=\"$PATH\":%s", q), nil
}

// AppendExport appends the export line for dir to profile unless it is
// already present. The profile is created if it does not exist.
func AppendExport(profile, dir string) error {
	line, err := ExportLine(dir)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(profile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to read %s: %w", pkgerrors.ErrPath, profile, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(existing))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == line {
			return nil
		}
	}

	f, err := os.OpenFile(profile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %w", pkgerrors.ErrPath, profile, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		b.WriteString("\n")
	}
	b.WriteString("\n# Added by gleam-pkg\n")
	b.WriteString(line)
	b.WriteString("\n")
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", pkgerrors.ErrPath, profile, err)
	}
	return nil
}
