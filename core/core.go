// Package core has the prediction pipeline and the entry points behind each command.
package core

import (
	"context"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/outwriter"
	"github.com/huangsam/podium/internal/provider"
	"github.com/huangsam/podium/schema"
	"github.com/sirupsen/logrus"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecutePrediction runs the pipeline for the configured event, records the run
// when history tracking is enabled, and writes the result.
func ExecutePrediction(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetPredictionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePrediction(result, cfg, duration)
}

// GetPredictionResults runs the pipeline and records the run without writing any output.
func GetPredictionResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.PredictionResult, time.Duration, error) {
	start := time.Now()
	laps, err := provider.New(cfg, mgr)
	if err != nil {
		return schema.PredictionResult{}, 0, err
	}

	store := mgr.GetHistoryStore()
	runID := beginRun(store, cfg, start)

	result, err := Pipeline{Event: cfg.Event, Provider: laps}.Run(ctx)
	if err != nil {
		return schema.PredictionResult{}, 0, err
	}
	endRun(store, runID, result)

	duration := time.Since(start)
	contract.LogInfo("Prediction complete", logrus.Fields{
		"event":    result.Event,
		"champion": result.Championship.Champion.Driver,
		"duration": duration.Round(time.Millisecond).String(),
	})
	return result, duration, nil
}

// GetLaps fetches the historical session of the configured event.
func GetLaps(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.LapRecord, error) {
	source, err := provider.New(cfg, mgr)
	if err != nil {
		return nil, err
	}
	return source.Laps(ctx, cfg.Event.History)
}

// ExecuteEvent writes the static tables of the configured event.
func ExecuteEvent(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WriteEvent(cfg.Event, cfg)
}

// ExecuteLaps fetches the historical session of the configured event and writes its laps.
func ExecuteLaps(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	laps, err := GetLaps(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteLaps(laps, cfg)
}

// beginRun opens a history run and returns its ID, or 0 when tracking is off or fails.
func beginRun(store contract.HistoryStore, cfg *contract.Config, start time.Time) int64 {
	if store == nil {
		return 0
	}
	event := cfg.Event.WithDefaults()
	configParams := map[string]any{
		"provider":            string(cfg.Provider),
		"event_file":          cfg.EventFile,
		"history":             event.History,
		"quick_lap_threshold": event.QuickLapThreshold,
		"calibration_offset":  event.Offset(),
		"points_table":        event.PointsTable,
		"model":               event.Model,
	}
	runID, err := store.BeginRun(start, event.Name, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// endRun stores every ranked entrant and closes the run.
func endRun(store contract.HistoryStore, runID int64, result schema.PredictionResult) {
	if store == nil || runID <= 0 {
		return
	}
	for _, row := range result.Rows {
		if err := store.RecordPrediction(runID, row); err != nil {
			contract.LogWarn("Failed to record prediction for "+row.Driver, err)
		}
	}
	if err := store.EndRun(runID, time.Now(), result); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
