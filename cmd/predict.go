package cmd

import (
	"github.com/huangsam/podium/core"
	"github.com/huangsam/podium/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd runs the full prediction pipeline.
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the finishing order, points and projected champion.",
	Long: `Predict one race from qualifying and a past session's laps.

The pipeline:
- Fetches laps of the historical session (OpenF1 or a local file)
- Keeps quick laps and takes per-driver medians
- Joins qualifying, team strength and history, imputing missing pace
- Fits monotone gradient-boosted trees and predicts race pace
- Ranks entrants, awards points and projects the champion

Examples:
  # Predict the embedded 2025 Abu Dhabi Grand Prix
  podium predict

  # Learn from a local laps file instead of OpenF1
  podium predict --provider file --laps-file laps.parquet

  # Use another event and record the run
  podium predict --event monza.yaml --history-backend sqlite

  # Export results as CSV
  podium predict --output csv --output-file prediction.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePrediction(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot predict race", err)
		}
	},
}
