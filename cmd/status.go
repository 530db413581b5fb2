package cmd

import (
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/devtick/devtick/internal/tracker"
	"github.com/devtick/devtick/internal/tui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tracking session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		if statusWatch && term.IsTerminal(os.Stdout.Fd()) {
			return tui.Run(st)
		}

		doc := st.Read()
		if !doc.IsOpen {
			cmd.Println("tracking not active")
		} else {
			cmd.Printf("Started: %s\n", doc.EditTime)
			if start, perr := time.Parse(time.RFC3339, doc.EditTime); perr == nil {
				cmd.Printf("Elapsed: %s\n", tracker.Elapsed(start, time.Now()))
			}
		}
		cmd.Printf("Total duration: %s\n", doc.TotalDuration)
		cmd.Printf("Keystrokes: %d\n", doc.KeystrokeCount)
		cmd.Printf("Heartbeats: %d\n", len(doc.Heartbeats))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Render a live view (requires a terminal)")
	rootCmd.AddCommand(statusCmd)
}
