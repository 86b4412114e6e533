// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WritePrediction prints a prediction using the configured output format.
func (ow *OutWriter) WritePrediction(result schema.PredictionResult, cfg *contract.Config, duration time.Duration) error {
	return WritePredictionResults(result, cfg, duration)
}

// WriteEvent prints the event tables using the configured output format.
func (ow *OutWriter) WriteEvent(event schema.EventConfig, cfg *contract.Config) error {
	return WriteEventTables(event, cfg)
}

// WriteLaps prints historical laps using the configured output format.
func (ow *OutWriter) WriteLaps(laps []schema.LapRecord, cfg *contract.Config) error {
	return WriteLapRecords(laps, cfg)
}

// GetMaxTableNameWidth calculates the maximum width for driver names in table output
// based on terminal width and the fixed columns around it.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Pos + Code + Team + Grid + Time + Pts + Total with borders and padding
	available := termWidth - 85
	if available < 10 {
		return 10
	}
	if available > 24 {
		return 24
	}
	return available
}
