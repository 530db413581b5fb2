package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/devtick/devtick/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a tracking session",
	Long: `Begin a tracking session: records the start instant in the tracking
document. Run 'devtick run' to keep the sampler ticking in the foreground.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		trk := tracker.New(st, nil, tracker.SystemClock(), tracker.Options{})
		defer trk.Shutdown()

		if err := trk.Start(); err != nil {
			if errors.Is(err, tracker.ErrAlreadyTracking) {
				cmd.Println("tracking already active")
				return nil
			}
			return err
		}

		cmd.Println("tracking started")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
