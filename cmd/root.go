package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/devtick/devtick/internal/config"
	"github.com/devtick/devtick/internal/logging"
	"github.com/devtick/devtick/internal/store"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "devtick",
	Short: "Record editing sessions and sample editor, build, and debug activity",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env in the working directory seeds the environment; absence is fine.
		_ = godotenv.Load()

		// Load and merge config files, then env overrides.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		config.ApplyEnv(&cfg)

		if err := logging.Init(cfg.LogLevel); err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// openStore resolves the data directory from config and opens the tracking
// document store.
func openStore() (store.Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		var err error
		dir, err = store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
	}
	return store.New(dir)
}
