package provider

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/internal/parquet"
	"github.com/huangsam/podium/schema"
)

// lapColumns is the CSV header shared by the file provider and the laps command.
var lapColumns = []string{"driver", "lap_number", "lap_time", "sector_1", "sector_2", "sector_3", "valid"}

// File reads lap records of one session from a local .json, .csv or .parquet file.
type File struct {
	Path string
}

var _ contract.SessionProvider = &File{} // Compile-time check

// NewFile creates a File provider for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Laps reads every record from the file. The session reference only labels errors.
func (p *File) Laps(_ context.Context, ref schema.SessionRef) ([]schema.LapRecord, error) {
	if p.Path == "" {
		return nil, fail(ref, errors.New("no laps file given"))
	}

	var (
		laps []schema.LapRecord
		err  error
	)
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".parquet":
		laps, err = parquet.ReadLapsParquet(p.Path)
	case ".json":
		laps, err = readFile(p.Path, ReadLapsJSON)
	case ".csv":
		laps, err = readFile(p.Path, ReadLapsCSV)
	default:
		err = fmt.Errorf("unsupported laps file extension %q", filepath.Ext(p.Path))
	}
	if err != nil {
		return nil, fail(ref, err)
	}
	if len(laps) == 0 {
		return nil, fail(ref, fmt.Errorf("%s has no laps", p.Path))
	}
	return laps, nil
}

func readFile(path string, read func(io.Reader) ([]schema.LapRecord, error)) ([]schema.LapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return read(f)
}

// ReadLapsJSON decodes a JSON array of lap records.
func ReadLapsJSON(r io.Reader) ([]schema.LapRecord, error) {
	var laps []schema.LapRecord
	if err := json.NewDecoder(r).Decode(&laps); err != nil {
		return nil, fmt.Errorf("decode laps json: %w", err)
	}
	return laps, nil
}

// ReadLapsCSV decodes lap records from CSV with a header row naming the lap columns.
func ReadLapsCSV(r io.Reader) ([]schema.LapRecord, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read laps csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, col := range lapColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("laps csv is missing column %q", col)
		}
	}

	var laps []schema.LapRecord
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read laps csv: %w", err)
		}
		lap, err := parseLapRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("laps csv line %d: %w", line, err)
		}
		laps = append(laps, lap)
	}
	return laps, nil
}

func parseLapRow(rec []string, index map[string]int) (schema.LapRecord, error) {
	field := func(name string) string { return strings.TrimSpace(rec[index[name]]) }
	number := func(name string) (float64, error) {
		s := field(name)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}

	lap := schema.LapRecord{Driver: field("driver")}
	var err error
	if lap.LapNumber, err = strconv.Atoi(field("lap_number")); err != nil {
		return lap, fmt.Errorf("lap_number: %w", err)
	}
	for _, target := range []struct {
		name string
		dst  *float64
	}{
		{"lap_time", &lap.LapTime},
		{"sector_1", &lap.Sector1},
		{"sector_2", &lap.Sector2},
		{"sector_3", &lap.Sector3},
	} {
		if *target.dst, err = number(target.name); err != nil {
			return lap, fmt.Errorf("%s: %w", target.name, err)
		}
	}
	if lap.Valid, err = strconv.ParseBool(field("valid")); err != nil {
		return lap, fmt.Errorf("valid: %w", err)
	}
	return lap, nil
}

// WriteLapsCSV writes lap records with the header ReadLapsCSV expects.
func WriteLapsCSV(w io.Writer, laps []schema.LapRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(lapColumns); err != nil {
		return err
	}
	for _, lap := range laps {
		rec := []string{
			lap.Driver,
			strconv.Itoa(lap.LapNumber),
			strconv.FormatFloat(lap.LapTime, 'f', -1, 64),
			strconv.FormatFloat(lap.Sector1, 'f', -1, 64),
			strconv.FormatFloat(lap.Sector2, 'f', -1, 64),
			strconv.FormatFloat(lap.Sector3, 'f', -1, 64),
			strconv.FormatBool(lap.Valid),
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
