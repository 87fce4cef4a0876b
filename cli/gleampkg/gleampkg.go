package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/gleam-pkg/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gleam-pkg",
		Short: "Install Gleam packages as commands",
		Long: `gleam-pkg installs Gleam packages from the Hex registry as runnable
commands:
- install: resolve, download, build and register a package
- list, uninstall: manage the launchers in ~/.gleam_pkgs/apps
- path: put the apps directory on your PATH`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set up CLI package variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose

	cmd.AddCommand(
		cli.NewInstallCmd(),
		cli.NewUninstallCmd(),
		cli.NewListCmd(),
		cli.NewPathCmd(),
		cli.NewHooksCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
