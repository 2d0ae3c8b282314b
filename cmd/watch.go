package cmd

import (
	"github.com/hbomb79/Cull/internal/selection"
	"github.com/spf13/cobra"
)

var watchAction string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously sweep the source directory as files arrive",
	Long: `Watch performs an initial sweep of the source directory and then stays
alive, re-sweeping whenever the file system reports changes (and on a
regular interval as a fallback). Newly modified files are held back
until their modtime is old enough, protecting in-flight transfers from
being acted on prematurely.

The sweep applies the action given by --action to accepted files, which
defaults to printing their paths.

Examples:
  cull watch -s ~/incoming -t 3                     # report rated arrivals
  cull watch -s ~/incoming -d ~/keepers -t 4 --action move`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		aType, err := selection.ParseActionType(watchAction)
		if err != nil {
			return err
		}

		return runSweep(cmd, aType, true)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAction, "action", "print",
		"action applied to accepted files (move, copy, delete, print)")
	rootCmd.AddCommand(watchCmd)
}
