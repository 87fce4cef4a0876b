package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glorpus-work/gleam-pkg/pkg/shellpath"
	"github.com/spf13/cobra"
)

// NewPathCmd creates the path command.
func NewPathCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Add the apps directory to PATH",
		Long: `Check whether the apps directory is on PATH and offer to append an
export line to your shell profile (~/.bashrc or ~/.zshrc).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			layout, err := loadLayout(cfg)
			if err != nil {
				return err
			}
			return ensurePath(cmd, layout.Apps, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// ensurePath makes sure appsDir is reachable through PATH, asking before the
// shell profile is modified unless yes is set.
func ensurePath(cmd *cobra.Command, appsDir string, yes bool) error {
	out := cmd.OutOrStdout()

	st, err := shellpath.Inspect(appsDir, os.LookupEnv)
	if err != nil {
		return err
	}
	if st.OnPath {
		_, _ = fmt.Fprintf(out, "%s is already on your PATH\n", appsDir)
		return nil
	}

	if !yes {
		prompt := fmt.Sprintf("%s is not on your PATH. Add it to %s? [y/N] ", appsDir, st.Profile)
		ok, err := confirm(cmd.InOrStdin(), out, prompt)
		if err != nil {
			return err
		}
		if !ok {
			line, err := shellpath.ExportLine(appsDir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Skipped. To use installed packages, add this line to %s:\n  %s\n", st.Profile, line)
			return nil
		}
	}

	if err := shellpath.AppendExport(st.Profile, appsDir); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Added %s to PATH in %s. Restart your shell or run: source %s\n", appsDir, st.Profile, st.Profile)
	return nil
}

// confirm prints prompt and reads a yes/no answer. End of input means no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	_, _ = fmt.Fprint(out, prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && answer == "" {
		_, _ = fmt.Fprintln(out)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
