// Package algo has ranking, points and diagnostics for predicted race results.
package algo

import (
	"sort"

	"github.com/huangsam/podium/schema"
)

// Rank turns raw lap-time predictions into a finishing order.
// PredictedTime is raw minus offset. Ties fall back to grid position, then input order.
func Rank(rows []schema.FeatureRow, raw []float64, offset float64) []schema.PredictionRow {
	out := make([]schema.PredictionRow, len(rows))
	for i, r := range rows {
		out[i] = schema.PredictionRow{
			FeatureRow:    r,
			RawPrediction: raw[i],
			PredictedTime: raw[i] - offset,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PredictedTime != out[j].PredictedTime {
			return out[i].PredictedTime < out[j].PredictedTime
		}
		return out[i].GridPosition < out[j].GridPosition
	})
	for i := range out {
		out[i].PredictedPosition = i + 1
	}
	return out
}

// AwardPoints sets the points for each position. Positions past the table score nothing.
func AwardPoints(rows []schema.PredictionRow, table []int) []schema.PredictionRow {
	out := append([]schema.PredictionRow(nil), rows...)
	for i := range out {
		out[i].PointsAwarded = 0
		if p := out[i].PredictedPosition; p >= 1 && p <= len(table) {
			out[i].PointsAwarded = table[p-1]
		}
	}
	return out
}
