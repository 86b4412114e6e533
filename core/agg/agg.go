// Package agg reduces historical laps to robust per-driver sector statistics.
package agg

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/huangsam/podium/schema"
	"gonum.org/v1/gonum/floats"
)

// lapRow is the dataframe view of a lap record.
type lapRow struct {
	Driver  string  `dataframe:"Driver"`
	LapTime float64 `dataframe:"LapTime"`
	Sector1 float64 `dataframe:"Sector1"`
	Sector2 float64 `dataframe:"Sector2"`
	Sector3 float64 `dataframe:"Sector3"`
}

// Aggregated columns, in the order AggregateSectors requests them.
var summaryColumns = []string{"LapTime", "LapTime", "Sector1", "Sector2", "Sector3"}

// PickQuickLaps keeps valid, fully timed laps within threshold times the fastest of them.
// A threshold below 1 falls back to the default 107% rule.
func PickQuickLaps(laps []schema.LapRecord, threshold float64) []schema.LapRecord {
	if threshold < 1 {
		threshold = schema.DefaultQuickLapThreshold
	}

	timed := make([]schema.LapRecord, 0, len(laps))
	times := make([]float64, 0, len(laps))
	for _, lap := range laps {
		if !lap.Valid || !positive(lap.LapTime, lap.Sector1, lap.Sector2, lap.Sector3) {
			continue
		}
		timed = append(timed, lap)
		times = append(times, lap.LapTime)
	}
	if len(timed) == 0 {
		return nil
	}

	cutoff := threshold * floats.Min(times)
	quick := timed[:0]
	for _, lap := range timed {
		if lap.LapTime <= cutoff {
			quick = append(quick, lap)
		}
	}
	return quick
}

func positive(values ...float64) bool {
	for _, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AggregateSectors groups laps by driver and takes the median of lap and sector times.
// Drivers without laps are absent. The result is sorted by driver code.
func AggregateSectors(laps []schema.LapRecord) ([]schema.DriverSectorSummary, error) {
	if len(laps) == 0 {
		return nil, nil
	}

	rows := make([]lapRow, len(laps))
	for i, lap := range laps {
		rows[i] = lapRow{Driver: lap.Driver, LapTime: lap.LapTime, Sector1: lap.Sector1, Sector2: lap.Sector2, Sector3: lap.Sector3}
	}
	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("load laps: %w", df.Err)
	}

	grouped := df.GroupBy("Driver").Aggregation([]dataframe.AggregationType{
		dataframe.Aggregation_COUNT,
		dataframe.Aggregation_MEDIAN,
		dataframe.Aggregation_MEDIAN,
		dataframe.Aggregation_MEDIAN,
		dataframe.Aggregation_MEDIAN,
	}, summaryColumns)
	if grouped.Err != nil {
		return nil, fmt.Errorf("aggregate laps: %w", grouped.Err)
	}

	summaries := make([]schema.DriverSectorSummary, 0, grouped.Nrow())
	for _, rec := range grouped.Maps() {
		driver, ok := rec["Driver"].(string)
		if !ok {
			return nil, fmt.Errorf("aggregate laps: unexpected driver value %v", rec["Driver"])
		}
		summaries = append(summaries, schema.DriverSectorSummary{
			Driver:        driver,
			Laps:          int(number(rec["LapTime_COUNT"])),
			MedianLapTime: number(rec["LapTime_MEDIAN"]),
			MedianSector1: number(rec["Sector1_MEDIAN"]),
			MedianSector2: number(rec["Sector2_MEDIAN"]),
			MedianSector3: number(rec["Sector3_MEDIAN"]),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Driver < summaries[j].Driver
	})
	return summaries, nil
}

// number reads an aggregated cell, which gota may hand back as int or float.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

// MedianLapTimes indexes the median lap time of each summary by driver.
func MedianLapTimes(summaries []schema.DriverSectorSummary) map[string]float64 {
	out := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		out[s.Driver] = s.MedianLapTime
	}
	return out
}
