package cmd

import (
	"github.com/huangsam/podium/core"
	"github.com/huangsam/podium/internal/contract"
	"github.com/spf13/cobra"
)

// lapsCmd prints the laps of the historical session.
var lapsCmd = &cobra.Command{
	Use:   "laps",
	Short: "Fetch and show laps of the historical session.",
	Long: `Fetch the laps the prediction learns from, through the lap cache.

Useful for saving a session for offline runs with --provider file.

Examples:
  # Show laps of the event's historical session
  podium laps

  # Save a different session to Parquet
  podium laps --history-season 2023 --history-event Monza --output parquet --output-file monza.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLaps(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot fetch laps", err)
		}
	},
}
