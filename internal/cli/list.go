package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/glorpus-work/gleam-pkg/pkg/install"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var nameFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List the launchers installed in the apps directory.

Use --name to filter packages by name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, nameFilter)
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name", "", "Filter packages by name (partial match)")

	return cmd
}

func runList(cmd *cobra.Command, nameFilter string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := loadLayout(cfg)
	if err != nil {
		return err
	}

	apps, err := install.NewRegistrar(layout.Apps).List()
	if err != nil {
		return fmt.Errorf("failed to list installed packages: %w", err)
	}

	out := cmd.OutOrStdout()
	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	count := 0
	for _, app := range apps {
		if nameFilter != "" && !strings.Contains(app.Name, nameFilter) {
			continue
		}
		if count == 0 {
			_, _ = fmt.Fprintln(tabWriter, "PACKAGE NAME\tSIZE\tINSTALLED")
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", app.Name, app.Size, app.ModTime.Format(DateFormat))
		count++
	}
	if count == 0 {
		_, _ = fmt.Fprintln(out, "No packages installed")
		return nil
	}
	return tabWriter.Flush()
}
