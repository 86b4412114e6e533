package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/parquet"
	"github.com/huangsam/podium/internal/provider"
	"github.com/huangsam/podium/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteLapRecords outputs historical laps, dispatching based on the output format configured.
func WriteLapRecords(laps []schema.LapRecord, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, laps)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return provider.WriteLapsCSV(w, laps)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteLaps(w, laps)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLapTable(w, laps, fmtFloat)
		}, "Wrote table")
	}
	return nil
}

func writeLapTable(w io.Writer, laps []schema.LapRecord, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Driver", "Lap", "Time (s)", "S1", "S2", "S3", "Valid"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	valid := 0
	for _, l := range laps {
		if l.Valid {
			valid++
		}
		data = append(data, []string{
			l.Driver,
			strconv.Itoa(l.LapNumber),
			fmtFloat(l.LapTime),
			fmtFloat(l.Sector1),
			fmtFloat(l.Sector2),
			fmtFloat(l.Sector3),
			strconv.FormatBool(l.Valid),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d laps (%d valid)\n", len(laps), valid)
	return err
}
