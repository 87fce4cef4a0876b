// Package errors defines the error kinds surfaced by gleam-pkg.
//
// Every install stage reports failures with one of the sentinel kinds below so
// callers can classify them with errors.Is. None of the kinds is retryable; each
// one terminates the current install.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error kinds of the install pipeline.
var (
	ErrDirectoryCreation = fmt.Errorf("failed to create directories")
	ErrRegistry          = fmt.Errorf("failed to download package")
	ErrExtraction        = fmt.Errorf("failed to extract package")
	ErrBuild             = fmt.Errorf("package build error")
	ErrPackaging         = fmt.Errorf("failed to package executable")
	ErrPath              = fmt.Errorf("error inspecting PATH environment variable")
	ErrUnsupportedShell  = fmt.Errorf("%w: unsupported shell", ErrPath)
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrInvalidResolution = fmt.Errorf("invalid version resolution strategy")
)

// Package errors.
var (
	ErrInvalidPackageName  = fmt.Errorf("invalid package name")
	ErrPackageNotInstalled = fmt.Errorf("package is not installed")
	ErrInvalidVersion      = fmt.Errorf("invalid package version")
)

// Registry operations recorded on RegistryError.Op.
const (
	OpFetch   = "fetch"
	OpStatus  = "status"
	OpDecode  = "decode"
	OpEmpty   = "empty"
	OpResolve = "resolve"
	OpPersist = "persist"
)

// RegistryError describes a failure talking to the package registry or
// persisting what it returned. Op distinguishes connectivity problems from
// disk problems (OpPersist).
type RegistryError struct {
	Op         string
	URL        string
	StatusCode int
	Msg        string
	Err        error
}

// Error implements the error interface for RegistryError.
func (e *RegistryError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRegistry.Error())
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.URL != "" {
		b.WriteString(" [")
		b.WriteString(e.URL)
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for RegistryError.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Is reports RegistryError as ErrRegistry.
func (e *RegistryError) Is(target error) bool {
	return target == ErrRegistry
}

// IsPersist reports whether err is a registry error caused by a local write.
func IsPersist(err error) bool {
	var re *RegistryError
	return stderrors.As(err, &re) && re.Op == OpPersist
}

// BuildError carries a failed toolchain invocation with its captured stderr.
type BuildError struct {
	Command  []string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	cmd := strings.Join(e.Command, " ")
	switch {
	case e.ExitCode > 0 && e.Stderr != "":
		return fmt.Sprintf("%s: `%s` exited with status %d:\n%s", ErrBuild, cmd, e.ExitCode, strings.TrimRight(e.Stderr, "\n"))
	case e.ExitCode > 0:
		return fmt.Sprintf("%s: `%s` exited with status %d", ErrBuild, cmd, e.ExitCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: `%s`: %v", ErrBuild, cmd, e.Err)
	default:
		return fmt.Sprintf("%s: `%s` failed", ErrBuild, cmd)
	}
}

// Unwrap returns the underlying error for BuildError.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is reports BuildError as ErrBuild.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}

// PathTraversalError is returned when an archive entry would land outside
// the extraction directory.
type PathTraversalError struct {
	Path string
}

// Error implements the error interface for PathTraversalError.
func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("%s: path traversal attempt detected: %s", ErrExtraction, e.Path)
}

// Is reports PathTraversalError as ErrExtraction.
func (e *PathTraversalError) Is(target error) bool {
	return target == ErrExtraction
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Kind wraps cause under the given error kind, keeping both in the chain.
func Kind(kind error, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, cause)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidResolutionWithDetails is a helper to create a wrapped error with the invalid strategy.
func ErrInvalidResolutionWithDetails(strategy string) error {
	return fmt.Errorf("%w: '%s', must be one of: first, highest", ErrInvalidResolution, strategy)
}
