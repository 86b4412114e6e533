// Package main benchmarks the podium CLI against live OpenF1 history.
// Each historical session is predicted several times without a cache, then
// with a fresh sqlite cache where the first run is cold and the rest are warm.
// Results are written to a timestamped CSV file.
//
// Prerequisites:
// - podium binary installed and available in PATH
// - network access to the OpenF1 API (or --openf1-url pointing at a mirror)
//
// Usage: go run benchmark/main.go [openf1-url]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Session     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkSession is one historical session used as model history.
type BenchmarkSession struct {
	Season  int
	Event   string
	Session string
}

func (s BenchmarkSession) String() string {
	return fmt.Sprintf("%d %s %s", s.Season, s.Event, s.Session)
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	OpenF1URL   string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Sessions    []BenchmarkSession
}

func main() {
	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sessions: []BenchmarkSession{
			{Season: 2023, Event: "Abu Dhabi", Session: "Race"},
			{Season: 2024, Event: "Abu Dhabi", Session: "Race"},
			{Season: 2024, Event: "Abu Dhabi", Session: "Qualifying"},
			{Season: 2024, Event: "Las Vegas", Session: "Race"},
		},
	}
	switch len(os.Args) {
	case 1:
	case 2:
		config.OpenF1URL = os.Args[1]
	default:
		fmt.Printf("Usage: %s [openf1-url]\n", os.Args[0])
		os.Exit(1)
	}

	if _, err := exec.LookPath("podium"); err != nil {
		fmt.Printf("Prerequisites check failed: podium binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes the no-cache and cache phases for every session.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d sessions, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sessions), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Sessions))
	for _, session := range config.Sessions {
		results = append(results, runBenchmarkSuite(config, session))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a session.
func runBenchmarkSuite(config BenchmarkConfig, session BenchmarkSession) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", session)

	runPhase := func(cacheBackend, home string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		times := runBenchmark(config, session, cacheBackend, home, numRuns)
		if cacheBackend != "none" && len(times) > 0 {
			coldTime, times = times[0], times[1:]
		}
		if len(times) == 0 {
			return coldTime, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Each suite gets its own HOME so the sqlite cache starts empty.
	home, err := os.MkdirTemp("", "podium-bench-")
	if err != nil {
		fmt.Printf("  Warning: failed to create temp home: %v\n", err)
		return BenchmarkResult{Session: session.String(), NoCacheTime: "ERROR", ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(home) }()

	_, noCacheAvg := runPhase("none", home, config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", home, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Session:     session.String(),
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes podium predict numRuns times and returns the durations of successful runs.
func runBenchmark(config BenchmarkConfig, session BenchmarkSession, cacheBackend, home string, numRuns int) []float64 {
	args := []string{
		"predict",
		"--cache-backend", cacheBackend,
		"--history-backend", "none",
		"--history-season", strconv.Itoa(session.Season),
		"--history-event", session.Event,
		"--history-session", session.Session,
		"--color", "no",
	}
	if config.OpenF1URL != "" {
		args = append(args, "--openf1-url", config.OpenF1URL)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("podium", args...)
		cmd.Env = append(os.Environ(), "HOME="+home)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// isSuccess checks if command output indicates a completed prediction.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "PREDICTED RACE RESULTS") &&
		strings.Contains(outputStr, "Completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("podium_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"session", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Session, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-32s: No-cache: %s, Cold: %s, Warm: %s\n", result.Session, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
