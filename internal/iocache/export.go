package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/parquet"
)

// ExecuteHistoryExport writes the run history to two Parquet files derived from outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized. Set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no prediction runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total prediction runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total prediction records: %d\n", status.TotalPredictions)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve prediction runs: %w", err)
	}
	entries, err := store.GetAllPredictions()
	if err != nil {
		return fmt.Errorf("failed to retrieve predictions: %w", err)
	}

	runsFile := outputFile + ".prediction_runs.parquet"
	if err := parquet.WritePredictionRunsParquet(parquet.ConvertPredictionRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write prediction runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d prediction runs to: %s\n", len(runs), runsFile)

	entriesFile := outputFile + ".predictions.parquet"
	if err := parquet.WritePredictionEntriesParquet(parquet.ConvertPredictionEntryRecords(entries), entriesFile); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d prediction records to: %s\n", len(entries), entriesFile)

	return nil
}
