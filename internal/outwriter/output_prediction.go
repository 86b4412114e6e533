package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/parquet"
	"github.com/huangsam/podium/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// predictionHeader is the CSV header for prediction results.
var predictionHeader = []string{
	"position",
	"driver",
	"name",
	"team",
	"grid",
	"qualifying_time",
	"team_score",
	"target_lap_time",
	"imputation",
	"raw_prediction",
	"predicted_time",
	"points",
	"championship_total",
}

// WritePredictionResults outputs a prediction, dispatching based on the output format configured.
func WritePredictionResults(result schema.PredictionResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionCSV(w, result.Rows, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteResults(w, result)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writePredictionTable writes the banner, the results table, the champion and the model metrics.
func writePredictionTable(w io.Writer, result schema.PredictionResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "🏁 PREDICTED RACE RESULTS - %s\n", strings.ToUpper(result.Event)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Pos", "Driver", "Name", "Team", "Grid", "Time (s)", "Pts", "Total"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range result.Rows {
		pos := contract.GetPositionLabel(r.PredictedPosition)
		if cfg.UseColors {
			pos = contract.GetColorPosition(r.PredictedPosition, r.PointsAwarded)
		}
		data = append(data, []string{
			pos,
			r.Driver,
			contract.TruncateName(r.Name, nameWidth),
			r.Team,
			contract.GetPositionLabel(r.GridPosition),
			fmtFloat(r.PredictedTime),
			strconv.Itoa(r.PointsAwarded),
			strconv.Itoa(r.ChampionshipTotal),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	champ := result.Championship.Champion
	line := fmt.Sprintf("WORLD CHAMPION: %s (%s) - %d pts", champ.Name, champ.Driver, champ.Points)
	if cfg.UseColors {
		line = contract.ChampionColor.Sprint(line)
	}
	if _, err := fmt.Fprintf(w, "🏆 %s\n", line); err != nil {
		return err
	}

	diag := result.Diagnostics
	positionMSE := "n/a"
	if diag.HasPositionMSE {
		positionMSE = fmt.Sprintf("%.2f", diag.PositionMSE)
	}
	if _, err := fmt.Fprintf(w, "📊 Regression MSE (Training): %.6f\n📊 Position MSE (Final Rank): %s\n", diag.RegressionMSE, positionMSE); err != nil {
		return err
	}

	history := result.History
	_, err := fmt.Fprintf(w, "History: %d %s %s (%d drivers with quick laps). Completed in %v. Cache backend: %s\n",
		history.Season, history.Event, history.Session, len(result.Summaries), duration.Round(time.Millisecond), cfg.CacheBackend)
	return err
}

// writePredictionCSV writes one CSV record per entrant in finishing order.
func writePredictionCSV(w io.Writer, rows []schema.PredictionRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, predictionHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.PredictedPosition),
				r.Driver,
				r.Name,
				r.Team,
				strconv.Itoa(r.GridPosition),
				fmtFloat(r.QualifyingTime),
				fmtFloat(r.TeamScore),
				fmtFloat(r.LapTime),
				string(r.Imputation),
				fmtFloat(r.RawPrediction),
				fmtFloat(r.PredictedTime),
				strconv.Itoa(r.PointsAwarded),
				strconv.Itoa(r.ChampionshipTotal),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
