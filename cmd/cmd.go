// Package cmd defines the command-line interface for podium.
package cmd

import (
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(lapsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("event", "", "Path to an event tables YAML file (default: embedded 2025 Abu Dhabi)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline stages at debug level")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Lap cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("provider", string(schema.OpenF1Provider), "Historical lap source: openf1 or file")
	rootCmd.PersistentFlags().String("laps-file", "", "Lap records file (.json, .csv, .parquet) for the file provider")
	rootCmd.PersistentFlags().String("openf1-url", contract.DefaultOpenF1URL, "Base URL of an OpenF1-compatible API")
	rootCmd.PersistentFlags().String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout for each OpenF1 request")
	rootCmd.PersistentFlags().Int("history-season", 0, "Override the season of the historical session")
	rootCmd.PersistentFlags().String("history-event", "", "Override the event of the historical session")
	rootCmd.PersistentFlags().String("history-session", "", "Override the session name of the historical session")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of predictCmd to Viper
	predictCmd.Flags().Float64("quick-lap-threshold", 0, "Keep laps within this multiple of the fastest lap (default from event, 1.07)")
	predictCmd.Flags().String("calibration-offset", "", "Seconds subtracted from raw predictions (default from event, 1.5)")
	if err := viper.BindPFlags(predictCmd.Flags()); err != nil {
		contract.LogFatal("Error binding predict flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
