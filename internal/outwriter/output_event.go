package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/huangsam/podium/core/features"
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// entrantHeader is the CSV header for the entrant table of an event.
var entrantHeader = []string{"grid", "driver", "name", "team", "qualifying_time", "standing_points"}

// WriteEventTables outputs the static tables of an event.
func WriteEventTables(event schema.EventConfig, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	entrants := gridOrder(event.Qualifying)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, event)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntrantCSV(w, event, entrants, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for event tables")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEventTable(w, event, entrants, cfg, fmtFloat)
		}, "Wrote table")
	}
	return nil
}

// gridOrder returns the qualifying entries sorted by grid position.
func gridOrder(entries []schema.QualifyingEntry) []schema.QualifyingEntry {
	out := append([]schema.QualifyingEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Grid < out[j].Grid })
	return out
}

func writeEventTable(w io.Writer, event schema.EventConfig, entrants []schema.QualifyingEntry, cfg *contract.Config, fmtFloat func(float64) string) error {
	history := event.History
	if _, err := fmt.Fprintf(w, "📋 %s (%d) - history from %d %s %s\n",
		event.Name, event.Season, history.Season, history.Event, history.Session); err != nil {
		return err
	}

	teams := event.DriverTeams()
	nameWidth := GetMaxTableNameWidth(cfg)
	entrantTable := tablewriter.NewWriter(w)
	entrantTable.Header([]string{"Grid", "Driver", "Name", "Team", "Quali (s)", "Points"})
	entrantTable.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var rows [][]string
	for _, q := range entrants {
		rows = append(rows, []string{
			contract.GetPositionLabel(q.Grid),
			q.Driver,
			contract.TruncateName(event.DriverName(q.Driver), nameWidth),
			teams[q.Driver],
			fmtFloat(q.Time),
			strconv.Itoa(event.Standings[q.Driver]),
		})
	}
	if err := entrantTable.Bulk(rows); err != nil {
		return err
	}
	if err := entrantTable.Render(); err != nil {
		return err
	}

	// An unusable points table still prints, just without normalized scores.
	scores, err := features.TeamScores(event.Teams)
	if err != nil {
		contract.LogWarn("Cannot normalize team scores", err)
	}
	teamTable := tablewriter.NewWriter(w)
	teamTable.Header([]string{"Team", "Points", "Score"})
	teamTable.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	rows = rows[:0]
	for _, name := range event.TeamNames() {
		score := "-"
		if s, ok := scores[name]; ok {
			score = fmtFloat(s)
		}
		rows = append(rows, []string{name, strconv.Itoa(event.Teams[name]), score})
	}
	if err := teamTable.Bulk(rows); err != nil {
		return err
	}
	if err := teamTable.Render(); err != nil {
		return err
	}

	if len(event.ActualOrder) > 0 {
		if _, err := fmt.Fprintf(w, "Actual results known for %d entrants\n", len(event.ActualOrder)); err != nil {
			return err
		}
	}
	return nil
}

func writeEntrantCSV(w io.Writer, event schema.EventConfig, entrants []schema.QualifyingEntry, fmtFloat func(float64) string) error {
	teams := event.DriverTeams()
	return writeCSVWithHeader(w, entrantHeader, func(cw *csv.Writer) error {
		for _, q := range entrants {
			rec := []string{
				strconv.Itoa(q.Grid),
				q.Driver,
				event.DriverName(q.Driver),
				teams[q.Driver],
				fmtFloat(q.Time),
				strconv.Itoa(event.Standings[q.Driver]),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
