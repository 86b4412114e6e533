package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/iocache"
	"github.com/huangsam/podium/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads and validates the run history backend from config.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if b := viper.GetString("history-backend"); b != "" {
		backend = schema.DatabaseBackend(b)
	}
	connStr := viper.GetString("history-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no lap cache for history commands)
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on prediction run history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded prediction runs and exports",
	Long: `Manage the history of prediction runs.

When enabled with --history-backend, podium records every prediction run:
- Run metadata (timestamp, event, configuration, duration)
- Champion and model diagnostics
- Every entrant's predicted position, points and championship total

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run history statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check recorded runs
  podium history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  podium history export --history-backend sqlite --output-file runs`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded prediction runs",
	Long: `Delete all recorded runs and their entrant rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  podium history export --history-backend sqlite --output-file backup
  podium history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the store so the SQLite file can be removed
		iocache.CloseCaching()
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about recorded prediction runs.

Displays:
- Backend type and connection status
- Total number of runs and entrant rows
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run history status
  podium history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get run history status", fmt.Errorf("run history is disabled, set --history-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet format.

Exports two datasets next to --output-file:
- <output-file>.prediction_runs.parquet - one row per run
- <output-file>.predictions.parquet - one row per entrant per run

Requires: --output-file parameter

Examples:
  # Export all data
  podium history export --history-backend sqlite --output-file podium

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('podium.predictions.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  podium history migrate --history-backend sqlite

  # Migrate to specific version
  podium history migrate --history-backend sqlite --target-version 1

  # Rollback everything
  podium history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
