package core

import (
	"context"

	"github.com/huangsam/podium/core/agg"
	"github.com/huangsam/podium/core/algo"
	"github.com/huangsam/podium/core/features"
	"github.com/huangsam/podium/core/model"
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/sirupsen/logrus"
)

// Pipeline predicts one race from its event tables and a source of historical laps.
// Each stage returns a new value; the event tables are never modified.
type Pipeline struct {
	Event    schema.EventConfig
	Provider contract.SessionProvider
}

// Run executes every stage in order and returns the full result.
func (p Pipeline) Run(ctx context.Context) (schema.PredictionResult, error) {
	event := contract.CloneEvent(p.Event).WithDefaults()

	laps, err := p.Provider.Laps(ctx, event.History)
	if err != nil {
		return schema.PredictionResult{}, err
	}

	summaries, err := summarize(laps, event.QuickLapThreshold)
	if err != nil {
		return schema.PredictionResult{}, err
	}

	rows, err := features.BuildFeatures(event, agg.MedianLapTimes(summaries))
	if err != nil {
		return schema.PredictionResult{}, err
	}

	raw, err := fitPredict(rows, event.Model)
	if err != nil {
		return schema.PredictionResult{}, err
	}

	ranked := algo.AwardPoints(algo.Rank(rows, raw, event.Offset()), event.PointsTable)
	ranked, championship := algo.UpdateStandings(ranked, event.Standings, event.DriverName)

	return schema.PredictionResult{
		Event:        event.Name,
		History:      event.History,
		Summaries:    summaries,
		Rows:         ranked,
		Championship: championship,
		Diagnostics:  algo.Diagnose(ranked, event.ActualOrder),
	}, nil
}

// summarize keeps the quick laps and reduces them to per-driver medians.
func summarize(laps []schema.LapRecord, threshold float64) ([]schema.DriverSectorSummary, error) {
	quick := agg.PickQuickLaps(laps, threshold)
	contract.LogDebug("Selected quick laps", logrus.Fields{
		"laps":      len(laps),
		"quick":     len(quick),
		"threshold": threshold,
	})
	summaries, err := agg.AggregateSectors(quick)
	if err != nil {
		return nil, err
	}
	contract.LogDebug("Aggregated sector medians", logrus.Fields{"drivers": len(summaries)})
	return summaries, nil
}

// fitPredict trains the constrained model on the rows and predicts the same rows.
func fitPredict(rows []schema.FeatureRow, params schema.ModelParams) ([]float64, error) {
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		X[i] = r.Features()
		y[i] = r.LapTime
	}

	reg := model.New(params, model.RaceConstraints)
	if err := reg.Fit(X, y); err != nil {
		return nil, err
	}
	contract.LogDebug("Fitted race-time model", logrus.Fields{
		"rows":       len(rows),
		"trees":      reg.Trees(),
		"base_score": reg.BaseScore(),
	})
	return reg.Predict(X)
}
