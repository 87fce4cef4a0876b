package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	var skipHooks bool

	cmd := &cobra.Command{
		Use:   "uninstall PACKAGE...",
		Short: "Uninstall packages",
		Long: `Uninstall one or more installed packages.
By default, pre-remove and post-remove hooks will be executed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			for _, name := range args {
				if err := orch.Uninstall(cmd.Context(), name); err != nil {
					return fmt.Errorf("failed to uninstall %s: %w", name, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipHooks, "skip-hooks", false, "Skip running pre/post remove hooks")

	return cmd
}
