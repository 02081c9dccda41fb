// ABOUTME: Root Cobra command for lift CLI.
// ABOUTME: Loads config, sets up logging, and handles store lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/adamsatar/lift/internal/config"
	"github.com/adamsatar/lift/internal/logging"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	catalogDBArg string
	logDBArg     string
	logLevelArg  string

	cfg    *config.Config
	logger *logrus.Logger
	stores *storage.Stores
	svc    *tracker.Service
)

var rootCmd = &cobra.Command{
	Use:   "lift",
	Short: "Strength training log with an exercise catalog",
	Long: `Lift is a CLI tool for logging strength training against an exercise catalog.

HOW IT IS ORGANIZED:

  Catalog    equipment, muscle groups and exercises (system.db)
  Log        workouts, exercise order and sets (user_log.db)

  A workout is every set logged on one calendar date. The first time an
  exercise is logged in a workout it gets the next position in that
  workout's sequence.

QUICK START:

  $ lift seed                                        # Load the default catalog
  $ lift log "Barbell Back Squat" -w 135 -r 5,5,5    # Log three sets today
  $ lift log Plank -d 60                             # Duration exercises take seconds
  $ lift sets list                                   # See recent sets
  $ lift workouts show 2024-03-01                    # One workout in order

BULK DATA:

  $ lift import history.csv         # Load sets from CSV
  $ lift export csv -o backup.csv   # CSV in the same layout
  $ lift export json -o backup.json
  $ lift restore backup.json        # Load a JSON or YAML export

MCP INTEGRATION:

  Run 'lift mcp' to start the Model Context Protocol server for use with
  MCP-compatible assistants:

  {
    "mcpServers": {
      "lift": { "command": "lift", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings are read from ~/.config/lift/config.yaml (or --config) and
  LIFT_* environment variables, e.g. LIFT_DATA_DIR or LIFT_LOG_LEVEL.
  Data is stored in ~/.local/share/lift by default.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if catalogDBArg != "" {
			cfg.CatalogDB = catalogDBArg
		}
		if logDBArg != "" {
			cfg.LogDB = logDBArg
		}
		if logLevelArg != "" {
			cfg.Log.Level = logLevelArg
		}

		logger = logging.Setup(logging.LoggerSetupParams{
			LogFileName:   config.ExpandPath(cfg.Log.File),
			LogToStderr:   true,
			LogLevel:      cfg.Log.Level,
			LogFormatJSON: cfg.Log.JSON,
		})

		// Skip store setup for commands that don't touch data
		if !needsStores(cmd) {
			return nil
		}

		stores, err = cfg.OpenStores()
		if err != nil {
			return fmt.Errorf("failed to open stores: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"catalog": stores.Catalog.Path(),
			"log":     stores.Log.Path(),
		}).Debug("opened stores")

		svc = tracker.New(stores.Catalog, stores.Log, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStores()
	},
}

func needsStores(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "install-skill", "completion":
		return false
	}
	return cmd.Runnable()
}

func closeStores() error {
	if stores == nil {
		return nil
	}
	err := stores.Close()
	stores = nil
	svc = nil
	return err
}

// Execute runs the root command and always releases the stores.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeStores(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/lift/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogDBArg, "catalog-db", "", "catalog store path (default <data_dir>/system.db)")
	rootCmd.PersistentFlags().StringVar(&logDBArg, "log-db", "", "log store path (default <data_dir>/user_log.db)")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "diagnostic log level (trace, debug, info, warn, error)")
}
