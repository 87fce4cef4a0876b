package cli

import (
	"fmt"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage install hooks",
		Long: `Manage the Tengo scripts run around installs and removals.

Scripts live in the hooks directory (settings.hooks_dir) and are named
after their type: pre-install.tengo, post-install.tengo, pre-remove.tengo
and post-remove.tengo.`,
	}

	cmd.AddCommand(
		newHooksListCmd(),
		newHooksInitCmd(),
	)

	return cmd
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which hooks are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			manager, err := loadHookManager(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Hooks directory: %s\n", cfg.GetHooksDir())
			for _, hookType := range hooks.AllTypes {
				status := "-"
				if manager.HasHook(hookType) {
					status = hooks.HookFileName(hookType)
				}
				_, _ = fmt.Fprintf(out, "  %-13s %s\n", hookType, status)
			}
			return nil
		},
	}
}

func newHooksInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init TYPE",
		Short: "Create a hooks script from a template",
		Long:  "Create a commented template for the given hooks type (pre-install, post-install, pre-remove, post-remove)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := hooks.WriteTemplate(cfg.GetHooksDir(), hooks.HookType(args[0]))
			if err != nil {
				return err
			}
			logger.Success("Hooks script created", logger.Fields{"path": path})
			return nil
		},
	}
}
