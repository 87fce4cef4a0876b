// Package config provides configuration management for gleam-pkg.
// It handles loading, validating, and saving the registry endpoints, the
// toolchain invocation, and the local directory layout. Configuration is read
// from a YAML file; missing files and missing keys fall back to defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// AppName is the directory name used below the user config directory.
const AppName = "gleam-pkg"

// Config represents the application configuration.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Settings  Settings        `yaml:"settings"`
}

// RegistryConfig describes the package registry endpoints.
type RegistryConfig struct {
	// APIBase is prefixed to "packages/{name}" for metadata lookups.
	APIBase string `yaml:"api_base"`
	// RepositoryBase is prefixed to "tarballs/{name}-{version}.tar".
	RepositoryBase string `yaml:"repository_base"`
	UserAgent      string `yaml:"user_agent"`
	// HTTPTimeout of zero disables the client timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// Resolution selects the release to install: "first" or "highest".
	Resolution string `yaml:"resolution"`
}

// ToolchainConfig describes how packages are built.
type ToolchainConfig struct {
	Gleam        string   `yaml:"gleam"`
	Plugin       string   `yaml:"plugin"`
	OutputDir    string   `yaml:"output_dir"`
	VersionQuery []string `yaml:"version_query,flow"`
}

// Settings represents general application settings.
type Settings struct {
	// RootDir holds download/, apps/ and db/. Empty means ~/.gleam_pkgs.
	RootDir  string `yaml:"root_dir,omitempty"`
	HooksDir string `yaml:"hooks_dir,omitempty"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text, json
}

// Version resolution strategies.
const (
	ResolutionFirst   = "first"
	ResolutionHighest = "highest"
)

// Default configuration values.
const (
	DefaultAPIBase        = "https://hex.pm/api/"
	DefaultRepositoryBase = "https://repo.hex.pm/"
	DefaultUserAgent      = "gleam-pkg"
	DefaultGleam          = "gleam"
	DefaultPlugin         = "gleescript"
	DefaultOutputDir      = "bin"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultVersionQuery prints the OTP release of the local Erlang runtime.
func DefaultVersionQuery() []string {
	return []string{"erl", "-noshell", "-eval", `io:format("~s", [erlang:system_info(otp_release)]), halt().`}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			APIBase:        DefaultAPIBase,
			RepositoryBase: DefaultRepositoryBase,
			UserAgent:      DefaultUserAgent,
			Resolution:     ResolutionFirst,
		},
		Toolchain: ToolchainConfig{
			Gleam:        DefaultGleam,
			Plugin:       DefaultPlugin,
			OutputDir:    DefaultOutputDir,
			VersionQuery: DefaultVersionQuery(),
		},
		Settings: Settings{
			LogLevel:  DefaultLogLevel,
			LogFormat: DefaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %s", errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %s", errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateRegistry(c.Registry); err != nil {
		return err
	}
	if err := validateToolchain(c.Toolchain); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateRegistry(r RegistryConfig) error {
	if !strings.HasSuffix(r.APIBase, "/") {
		return fmt.Errorf("%w: registry.api_base must end with '/': %q", errors.ErrConfigValidation, r.APIBase)
	}
	if !strings.HasSuffix(r.RepositoryBase, "/") {
		return fmt.Errorf("%w: registry.repository_base must end with '/': %q", errors.ErrConfigValidation, r.RepositoryBase)
	}
	if r.HTTPTimeout < 0 {
		return fmt.Errorf("%w: registry.http_timeout cannot be negative", errors.ErrConfigValidation)
	}
	switch r.Resolution {
	case ResolutionFirst, ResolutionHighest:
	default:
		return errors.ErrInvalidResolutionWithDetails(r.Resolution)
	}
	return nil
}

func validateToolchain(t ToolchainConfig) error {
	if len(t.VersionQuery) == 0 || t.VersionQuery[0] == "" {
		return fmt.Errorf("%w: toolchain.version_query cannot be empty", errors.ErrConfigValidation)
	}
	if filepath.IsAbs(t.OutputDir) || strings.HasPrefix(filepath.Clean(t.OutputDir), "..") {
		return fmt.Errorf("%w: toolchain.output_dir must stay inside the package: %q", errors.ErrConfigValidation, t.OutputDir)
	}
	return nil
}

func validateSettings(s Settings) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("%w: settings.log_format must be text or json: %q", errors.ErrConfigValidation, s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, AppName, "config.yaml"), nil
}

// GetHooksDir returns the directory install hooks are loaded from.
// An empty setting resolves to a "hooks" directory next to the default config file.
func (c *Config) GetHooksDir() string {
	if c.Settings.HooksDir != "" {
		return c.Settings.HooksDir
	}
	path, err := GetDefaultConfigPath()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "hooks")
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Registry.APIBase == "" {
		c.Registry.APIBase = defaults.Registry.APIBase
	}
	if c.Registry.RepositoryBase == "" {
		c.Registry.RepositoryBase = defaults.Registry.RepositoryBase
	}
	if c.Registry.UserAgent == "" {
		c.Registry.UserAgent = defaults.Registry.UserAgent
	}
	if c.Registry.Resolution == "" {
		c.Registry.Resolution = defaults.Registry.Resolution
	}
	if c.Toolchain.Gleam == "" {
		c.Toolchain.Gleam = defaults.Toolchain.Gleam
	}
	if c.Toolchain.Plugin == "" {
		c.Toolchain.Plugin = defaults.Toolchain.Plugin
	}
	if c.Toolchain.OutputDir == "" {
		c.Toolchain.OutputDir = defaults.Toolchain.OutputDir
	}
	if len(c.Toolchain.VersionQuery) == 0 {
		c.Toolchain.VersionQuery = defaults.Toolchain.VersionQuery
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
