package cmd

import (
	"github.com/huangsam/podium/core"
	"github.com/huangsam/podium/internal/contract"
	"github.com/spf13/cobra"
)

// eventCmd prints the event tables.
var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Show the entrants, teams and standings of an event.",
	Long: `Print the static tables the prediction is built on.

Examples:
  # Show the embedded event
  podium event

  # Check a custom event file before predicting
  podium event --event monza.yaml --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvent(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show event", err)
		}
	},
}
