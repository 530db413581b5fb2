package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devtick/devtick/internal/host"
	"github.com/devtick/devtick/internal/lockfile"
	"github.com/devtick/devtick/internal/store"
	"github.com/devtick/devtick/internal/tracker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tracking engine in the foreground",
	Long: `Run the tracking engine: starts a session (or resumes one left open),
then keeps the duration, heartbeat, and keystroke ticks firing until
interrupted. Ctrl-C stops the session cleanly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		// One engine per data directory.
		lock, err := lockfile.Acquire(filepath.Dir(st.Path()))
		if err != nil {
			return err
		}
		defer lock.Release()

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		// Never treat our own files as workspace activity.
		ignore := append([]string{store.DataFileName, lockfile.LockFileName, "*.json.tmp"}, cfg.IgnorePatterns...)

		watcher, err := host.NewActiveFileWatcher(cwd, ignore)
		if err != nil {
			return err
		}
		defer watcher.Close()

		sampler := tracker.NewSampler(
			watcher,
			&host.ProcessTaskState{},
			host.ProcessDebugState{},
			st.Path(),
		)

		trk := tracker.New(st, sampler, tracker.SystemClock(), tracker.Options{
			DurationInterval:  time.Duration(cfg.DurationIntervalSec) * time.Second,
			HeartbeatInterval: time.Duration(cfg.HeartbeatIntervalSec) * time.Second,
			KeystrokeInterval: time.Duration(cfg.KeystrokeIntervalSec) * time.Second,
		})

		if err := trk.Start(); err != nil {
			if !errors.Is(err, tracker.ErrAlreadyTracking) {
				return err
			}
			// A session is already open on disk; keep its start instant.
			if err := trk.Resume(); err != nil {
				return err
			}
			cmd.Println("tracking already active, resuming")
		} else {
			cmd.Println("tracking started")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		if err := trk.Stop(); err != nil && !errors.Is(err, tracker.ErrNotTracking) {
			return err
		}
		cmd.Printf("tracking stopped (total %s)\n", trk.Snapshot().TotalDuration)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
