package cmd

import (
	"fmt"
	"os"

	"github.com/hbomb79/Cull/internal"
	"github.com/hbomb79/Cull/internal/selection"
	"github.com/hbomb79/Cull/pkg/logger"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move accepted files to the destination directory",
	Long: `Move sweeps the source directory and moves every file the criteria
accepts to the destination directory, preserving each file's position
relative to the source. Files already present at their destination are
skipped rather than overwritten.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSweep(cmd, selection.Move, false)
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy accepted files to the destination directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSweep(cmd, selection.Copy, false)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete accepted files from the source directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSweep(cmd, selection.Delete, false)
	},
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the path of each accepted file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSweep(cmd, selection.Print, false)
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(printCmd)
}

// runSweep validates the global flags, assembles the criteria, action and
// service configuration from them, and hands over to the orchestrator.
func runSweep(cmd *cobra.Command, aType selection.ActionType, watch bool) error {
	if verbose {
		logger.SetMinLoggingLevel(logger.VERBOSE.Level())
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.LogFilePath != "" {
		logger.SetLogFile(config.LogFilePath)
	}

	if sourcePath == "" {
		return fmt.Errorf("a source path must be provided with --src")
	}

	if info, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source path '%s' could not be accessed: %s", sourcePath, err.Error())
	} else if !info.IsDir() {
		return fmt.Errorf("source path '%s' is not a directory", sourcePath)
	}

	comp, err := selection.ParseComparison(comparison)
	if err != nil {
		return err
	}

	criteria := selection.Criteria{
		Threshold:  threshold,
		Comparison: comp,
		Label:      label,
		Inverse:    inverse,
	}
	if err := criteria.ValidateLegal(); err != nil {
		return err
	}

	action, err := selection.NewAction(aType, sourcePath, destPath)
	if err != nil {
		return err
	}

	selectionConfig := selection.Config{
		SourcePath:                sourcePath,
		ForceSyncSeconds:          config.Sweep.ForceSyncSeconds,
		ExcludedDirs:              excludedDirs,
		FlipExclusion:             flipExclusion,
		MatchRaws:                 matchRaws,
		IncludeVideos:             includeVideos,
		RequiredModTimeAgeSeconds: config.Sweep.RequiredModTimeAgeSeconds,
		Parallelism:               config.Sweep.Parallelism,
		Watch:                     watch,
	}

	// Flag errors are dealt with; anything beyond here is a runtime
	// failure and re-printing the usage text would just bury it
	cmd.SilenceUsage = true
	return internal.New(config, selectionConfig, criteria, action).Run(cmd.Context())
}
