// Package schema has configs, models and typed errors for all parts of podium.
package schema

// SessionRef identifies one historical session to pull laps from.
type SessionRef struct {
	Season  int    `yaml:"season" json:"season"`   // Championship year, e.g. 2024
	Event   string `yaml:"event" json:"event"`     // Event name or location, e.g. "Abu Dhabi"
	Session string `yaml:"session" json:"session"` // Session name, e.g. "Race"
}

// LapRecord is one observed lap by one driver in a historical session.
// Times are in seconds. Valid is false for pit-in, pit-out and deleted laps.
type LapRecord struct {
	Driver    string  `json:"driver" parquet:"driver"`
	LapNumber int     `json:"lap_number" parquet:"lap_number"`
	LapTime   float64 `json:"lap_time" parquet:"lap_time"`
	Sector1   float64 `json:"sector_1" parquet:"sector_1"`
	Sector2   float64 `json:"sector_2" parquet:"sector_2"`
	Sector3   float64 `json:"sector_3" parquet:"sector_3"`
	Valid     bool    `json:"valid" parquet:"valid"`
}

// DriverSectorSummary is the robust per-driver reduction of quick laps.
type DriverSectorSummary struct {
	Driver        string  `json:"driver"`
	Laps          int     `json:"laps"`
	MedianLapTime float64 `json:"median_lap_time"`
	MedianSector1 float64 `json:"median_sector_1"`
	MedianSector2 float64 `json:"median_sector_2"`
	MedianSector3 float64 `json:"median_sector_3"`
}

// FeatureRow is one entrant's model input plus its lap-time target.
type FeatureRow struct {
	Driver         string     `json:"driver"`
	Name           string     `json:"name"`
	Team           string     `json:"team"`
	QualifyingTime float64    `json:"qualifying_time"`
	TeamScore      float64    `json:"team_score"`
	GridPosition   int        `json:"grid_position"`
	LapTime        float64    `json:"lap_time"`
	Imputation     Imputation `json:"imputation"`
}

// Features returns the row's inputs in FeatureOrder.
func (r FeatureRow) Features() []float64 {
	return []float64{r.QualifyingTime, r.TeamScore, float64(r.GridPosition)}
}

// PredictionRow is a FeatureRow with the model output and its ranking.
type PredictionRow struct {
	FeatureRow
	RawPrediction     float64 `json:"raw_prediction"`
	PredictedTime     float64 `json:"predicted_time"`
	PredictedPosition int     `json:"predicted_position"`
	PointsAwarded     int     `json:"points_awarded"`
	ChampionshipTotal int     `json:"championship_total"`
}

// StandingEntry is one driver's post-race championship total.
type StandingEntry struct {
	Driver string `json:"driver"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ChampionshipResult holds the updated standings and the projected leader.
type ChampionshipResult struct {
	Standings []StandingEntry `json:"standings"`
	Champion  StandingEntry   `json:"champion"`
}

// Diagnostics are accuracy metrics reported alongside a prediction.
// They never influence the ranking.
type Diagnostics struct {
	RegressionMSE    float64 `json:"regression_mse"`
	PositionMSE      float64 `json:"position_mse"`
	HasPositionMSE   bool    `json:"has_position_mse"`
	ComparedEntrants int     `json:"compared_entrants"`
}

// PredictionResult is the full output of one pipeline run.
type PredictionResult struct {
	Event        string                `json:"event"`
	History      SessionRef            `json:"history"`
	Summaries    []DriverSectorSummary `json:"history_summaries"`
	Rows         []PredictionRow       `json:"results"`
	Championship ChampionshipResult    `json:"championship"`
	Diagnostics  Diagnostics           `json:"diagnostics"`
}
