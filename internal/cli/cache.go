package cli

import (
	"fmt"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage downloaded packages",
		Long:  "Show information about and clean the download directory (~/.gleam_pkgs/download)",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		all      bool
		archives bool
		sources  bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the download directory",
		Long:  "Remove downloaded tarballs and unpacked sources. Installed packages keep working.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			manager, err := loadCacheManager()
			if err != nil {
				return err
			}
			result, err := manager.Clean(cache.CleanOptions{All: all, Archives: archives, Sources: sources})
			if err != nil {
				return err
			}

			if result.ArchiveFreed > 0 {
				logger.Info("Cleaned downloaded tarballs", logger.Fields{"size": cache.FormatBytes(result.ArchiveFreed)})
			}
			if result.SourceFreed > 0 {
				logger.Info("Cleaned unpacked sources", logger.Fields{"size": cache.FormatBytes(result.SourceFreed)})
			}
			logger.Success("Cache cleaning completed", logger.Fields{"total_freed": cache.FormatBytes(result.TotalFreed)})
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&archives, "archives", false, "Clean only downloaded tarballs")
	cmd.Flags().BoolVar(&sources, "sources", false, "Clean only unpacked sources")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := loadCacheManager()
			if err != nil {
				return err
			}
			info, err := manager.GetInfo()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Cache Directory: %s\n", info.Directory)
			_, _ = fmt.Fprintf(out, "Total Size: %s\n", cache.FormatBytes(info.TotalSize))
			_, _ = fmt.Fprintf(out, "Tarballs: %s (%d files)\n", cache.FormatBytes(info.ArchiveSize), info.ArchiveFiles)
			_, _ = fmt.Fprintf(out, "Sources: %s (%d packages)\n", cache.FormatBytes(info.SourceSize), info.SourceDirs)
			return nil
		},
	}
}

func loadCacheManager() (cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	layout, err := loadLayout(cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewManager(layout.Download), nil
}
