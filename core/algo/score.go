package algo

import (
	"math"
	"sort"

	"github.com/huangsam/podium/schema"
	"gonum.org/v1/gonum/stat"
)

// UpdateStandings adds awarded points to a copy of the pre-race standings.
// Entrants missing from the standings start at zero. The champion is the highest total,
// with ties going to the better finish in this race and then to the lower driver code.
func UpdateStandings(rows []schema.PredictionRow, standings map[string]int, name func(string) string) ([]schema.PredictionRow, schema.ChampionshipResult) {
	totals := make(map[string]int, len(standings)+len(rows))
	for code, points := range standings {
		totals[code] = points
	}
	finish := make(map[string]int, len(rows))
	out := append([]schema.PredictionRow(nil), rows...)
	for i := range out {
		code := out[i].Driver
		totals[code] += out[i].PointsAwarded
		out[i].ChampionshipTotal = totals[code]
		finish[code] = out[i].PredictedPosition
	}

	entries := make([]schema.StandingEntry, 0, len(totals))
	for code, points := range totals {
		entries = append(entries, schema.StandingEntry{Driver: code, Name: name(code), Points: points})
	}
	position := func(code string) int {
		if p, ok := finish[code]; ok {
			return p
		}
		return math.MaxInt
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if pi, pj := position(entries[i].Driver), position(entries[j].Driver); pi != pj {
			return pi < pj
		}
		return entries[i].Driver < entries[j].Driver
	})

	result := schema.ChampionshipResult{Standings: entries}
	if len(entries) > 0 {
		result.Champion = entries[0]
	}
	return out, result
}

// Diagnose computes the in-sample regression error and, when an actual order is known,
// the mean squared position error over entrants found in both orders.
func Diagnose(rows []schema.PredictionRow, actual []string) schema.Diagnostics {
	var diag schema.Diagnostics
	if len(rows) > 0 {
		residuals := make([]float64, len(rows))
		for i, r := range rows {
			d := r.RawPrediction - r.LapTime
			residuals[i] = d * d
		}
		diag.RegressionMSE = stat.Mean(residuals, nil)
	}

	if len(actual) == 0 {
		return diag
	}
	actualPos := make(map[string]int, len(actual))
	for i, code := range actual {
		if _, dup := actualPos[code]; !dup {
			actualPos[code] = i + 1
		}
	}
	var errs []float64
	for _, r := range rows {
		if p, ok := actualPos[r.Driver]; ok {
			d := float64(r.PredictedPosition - p)
			errs = append(errs, d*d)
		}
	}
	if len(errs) > 0 {
		diag.PositionMSE = stat.Mean(errs, nil)
		diag.HasPositionMSE = true
		diag.ComparedEntrants = len(errs)
	}
	return diag
}
