// Package features joins qualifying results with team strength and historical pace.
package features

import (
	"github.com/go-gota/gota/series"
	"github.com/huangsam/podium/schema"
)

// TeamScores normalizes each team's season points by the best team's points.
func TeamScores(teams map[string]int) (map[string]float64, error) {
	best := 0
	for _, points := range teams {
		if points > best {
			best = points
		}
	}
	if best <= 0 {
		return nil, schema.NewConfigurationError("team points must include a positive maximum, got %d", best)
	}
	scores := make(map[string]float64, len(teams))
	for team, points := range teams {
		scores[team] = float64(points) / float64(best)
	}
	return scores, nil
}

// BuildFeatures creates one row per qualifying entrant, in qualifying order.
// Entrants without a historical median take their teammates' median, then the field's.
func BuildFeatures(event schema.EventConfig, medians map[string]float64) ([]schema.FeatureRow, error) {
	driverTeams := event.DriverTeams()
	scores, err := TeamScores(event.Teams)
	if err != nil {
		return nil, err
	}

	rows := make([]schema.FeatureRow, 0, len(event.Qualifying))
	for _, q := range event.Qualifying {
		team, ok := driverTeams[q.Driver]
		if !ok {
			return nil, schema.NewConfigurationError("driver %s has no team", q.Driver)
		}
		score, ok := scores[team]
		if !ok {
			return nil, schema.NewConfigurationError("team %q of driver %s has no points total", team, q.Driver)
		}
		row := schema.FeatureRow{
			Driver:         q.Driver,
			Name:           event.DriverName(q.Driver),
			Team:           team,
			QualifyingTime: q.Time,
			TeamScore:      score,
			GridPosition:   q.Grid,
		}
		if lapTime, ok := medians[q.Driver]; ok {
			row.LapTime = lapTime
			row.Imputation = schema.FromHistory
		}
		rows = append(rows, row)
	}

	if err := impute(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// impute fills missing lap times from teammates first, then from the whole field.
func impute(rows []schema.FeatureRow) error {
	byTeam := make(map[string][]float64)
	var field []float64
	for _, r := range rows {
		if r.Imputation == schema.FromHistory {
			byTeam[r.Team] = append(byTeam[r.Team], r.LapTime)
			field = append(field, r.LapTime)
		}
	}
	if len(field) == 0 {
		return schema.NewDataError("no entrant has historical lap data")
	}
	global := median(field)

	for i := range rows {
		if rows[i].Imputation != "" {
			continue
		}
		if mates := byTeam[rows[i].Team]; len(mates) > 0 {
			rows[i].LapTime = median(mates)
			rows[i].Imputation = schema.FromTeam
			continue
		}
		rows[i].LapTime = global
		rows[i].Imputation = schema.FromGlobal
	}
	return nil
}

func median(values []float64) float64 {
	return series.Floats(values).Median()
}
