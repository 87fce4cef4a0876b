package cli

import (
	"fmt"
	"io"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/archive"
	"github.com/glorpus-work/gleam-pkg/pkg/build"
	"github.com/glorpus-work/gleam-pkg/pkg/config"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/glorpus-work/gleam-pkg/pkg/hooks"
	"github.com/glorpus-work/gleam-pkg/pkg/install"
	"github.com/glorpus-work/gleam-pkg/pkg/orchestrator"
	"github.com/glorpus-work/gleam-pkg/pkg/registry"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig/SaveConfig report ErrEmptyConfigPath.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// loadConfig loads the configuration and initializes the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitLogger(logLevel(cfg.Settings), logger.OutputFormat(cfg.Settings.LogFormat))
	logger.Debug("Configuration loaded", logger.Fields{"path": getConfigPath()})
	return cfg, nil
}

// logLevel returns the configured level; --verbose always wins.
func logLevel(s config.Settings) string {
	if Verbose != nil && *Verbose {
		return "debug"
	}
	return s.LogLevel
}

func loadLayout(cfg *config.Config) (fsutil.Layout, error) {
	return fsutil.ResolveLayout(cfg.Settings.RootDir)
}

func loadHookManager(cfg *config.Config) (*hooks.DefaultHookManager, error) {
	manager := hooks.NewHookManager()
	if err := hooks.LoadHooksFromDir(manager, cfg.GetHooksDir()); err != nil {
		return nil, err
	}
	return manager, nil
}

// eventPrinter writes progress events in a simple, human-friendly form.
func eventPrinter(w io.Writer) orchestrator.Hooks {
	return orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		_, _ = fmt.Fprintf(w, "%s: %s\n", e.Phase, e.Msg)
	}}
}

// loadOrchestrator wires the pipeline components from cfg. Toolchain output
// is streamed to stdout and stderr.
func loadOrchestrator(cfg *config.Config, layout fsutil.Layout, stdout, stderr io.Writer, skipHooks bool) (*orchestrator.Orchestrator, error) {
	var scripts orchestrator.HookRunner
	if !skipHooks {
		manager, err := loadHookManager(cfg)
		if err != nil {
			return nil, err
		}
		scripts = manager
	}

	client := registry.NewClient(cfg.Registry)
	builder := build.NewBuilder(cfg.Toolchain, build.WithOutput(stdout, stderr))

	return orchestrator.New(
		layout,
		client,
		client,
		archive.NewUnpacker(),
		builder,
		install.NewRegistrar(layout.Apps),
		scripts,
		cfg.Registry.Resolution,
		eventPrinter(stdout),
	), nil
}
