package cli

import (
	"fmt"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var (
		dryRun    bool
		skipHooks bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "install PACKAGE",
		Short: "Install a package",
		Long: `Install a Gleam package from the Hex registry as a runnable command.

The latest release is downloaded, built with the gleam toolchain and
installed as a launcher under ~/.gleam_pkgs/apps. Afterwards you are
offered to add that directory to your PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], dryRun, skipHooks, yes)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the version and print it without installing")
	cmd.Flags().BoolVar(&skipHooks, "skip-hooks", false, "Do not run install hooks")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Add the apps directory to PATH without asking")

	return cmd
}

func runInstall(cmd *cobra.Command, name string, dryRun, skipHooks, yes bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := loadLayout(cfg)
	if err != nil {
		return err
	}

	orch, err := loadOrchestrator(cfg, layout, cmd.OutOrStdout(), cmd.ErrOrStderr(), skipHooks)
	if err != nil {
		return err
	}

	res, err := orch.Install(cmd.Context(), name, orchestrator.InstallOptions{DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", name, err)
	}
	if res.DryRun {
		return nil
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Installed %s to %s\n", res.Ref, res.LauncherPath)

	// The package is installed at this point; PATH problems are only reported.
	if err := ensurePath(cmd, layout.Apps, yes); err != nil {
		logger.Warn("Could not register the apps directory on PATH", logger.Fields{"error": err})
	}
	return nil
}
