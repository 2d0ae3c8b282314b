// Package cmd implements the Cull command line interface using the
// cobra framework.
package cmd

import (
	"os"

	"github.com/hbomb79/Cull/internal"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile    string
	sourcePath    string
	destPath      string
	threshold     int
	comparison    string
	label         string
	inverse       bool
	excludedDirs  []string
	flipExclusion bool
	includeVideos bool
	matchRaws     bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cull",
	Short: "Cull - select, relocate or discard media files by their embedded ratings",
	Long: `Cull sweeps a directory of media files, recovers the rating and label
embedded in each file's metadata packet, and applies an action (move,
copy, delete or print) to every file the selection criteria accepts.

The packet is located by scanning the raw bytes of the file, so files of
any size and container are supported without decoding them. Ratings are
read back from the same sidecar-free metadata photo editors write.

Examples:
  cull print -s ~/photos -t 3                   # list files rated 3 or higher
  cull move -s ~/photos -d ~/keepers -t 4       # move files rated 4 or higher
  cull delete -s ~/photos -t 1 -c less-equal    # delete files rated 1 or lower
  cull move -s ~/photos -d ~/keepers -l Keep -m # move labelled files and their raws`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&sourcePath, "src", "s", "",
		"source directory to sweep for rated media")
	rootCmd.PersistentFlags().StringVarP(&destPath, "dest", "d", "",
		"destination directory for the move/copy actions")
	rootCmd.PersistentFlags().IntVarP(&threshold, "threshold", "t", 5,
		"rating threshold each file is compared against")
	rootCmd.PersistentFlags().StringVarP(&comparison, "comparison", "c", "more-equal",
		"comparison applied to the rating (more-equal, less-equal, equal)")
	rootCmd.PersistentFlags().StringVarP(&label, "label", "l", "",
		"additionally require files to carry this label")
	rootCmd.PersistentFlags().BoolVarP(&inverse, "inverse", "i", false,
		"invert the criteria, acting on the files it would have rejected")
	rootCmd.PersistentFlags().StringArrayVarP(&excludedDirs, "exclude", "e", nil,
		"skip top-level directories whose name contains this fragment (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flipExclusion, "flip-exclusion", "f", false,
		"sweep ONLY the top-level directories matched by --exclude")
	rootCmd.PersistentFlags().BoolVarP(&includeVideos, "include-videos", "a", false,
		"sweep video files as well as images")
	rootCmd.PersistentFlags().BoolVarP(&matchRaws, "match-raws", "m", false,
		"apply the action to the .ARW sibling of each selected .jpg")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to a YAML config file (default ~/.config/cull/cull.yaml)")
}

// loadConfig builds the ambient configuration: an explicitly provided
// config file must load cleanly, the default config file is used when it
// exists, and otherwise the environment (plus defaults) is all we need.
func loadConfig() (internal.CullConfig, error) {
	config := internal.CullConfig{}
	if configFile != "" {
		err := config.LoadFromFile(configFile)
		return config, err
	}

	if path, err := homedir.Expand("~/.config/cull/cull.yaml"); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			err := config.LoadFromFile(path)
			return config, err
		}
	}

	err := config.LoadFromEnvironment()
	return config, err
}
