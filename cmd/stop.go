package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/devtick/devtick/internal/tracker"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the current tracking session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		trk := tracker.New(st, nil, tracker.SystemClock(), tracker.Options{})

		if err := trk.Stop(); err != nil {
			if errors.Is(err, tracker.ErrNotTracking) {
				cmd.Println("tracking not active")
				return nil
			}
			return err
		}

		cmd.Printf("tracking stopped (total %s)\n", trk.Snapshot().TotalDuration)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
