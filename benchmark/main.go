// Package main provides a performance benchmarking tool for the transcomplex CLI.
// It measures batch scoring times across corpus directories and split modes,
// running each test multiple times, treating the first successful cached run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - transcomplex binary installed and available in PATH
// - Corpus directories with .txt or .md files under the specified base directory
//
// Usage: go run ./benchmark [corpus-base-dir]
//
//	corpus-base-dir: Directory containing one sub-directory per corpus
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Corpus      string
	Split       string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CorpusBase  string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Corpora     []string
	SplitModes  []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [corpus-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	corpusBase := os.Args[1]

	corpora, err := listCorpora(corpusBase)
	if err != nil {
		fmt.Printf("Cannot list corpora: %v\n", err)
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CorpusBase:  corpusBase,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Corpora:     corpora,
		SplitModes:  []string{"file", "paragraph", "line"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config.SplitModes)
}

// listCorpora returns the sub-directories of base, in name order.
func listCorpora(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var corpora []string
	for _, e := range entries {
		if e.IsDir() {
			corpora = append(corpora, e.Name())
		}
	}
	return corpora, nil
}

// checkPrerequisites verifies that the transcomplex binary and corpora exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("transcomplex"); err != nil {
		return fmt.Errorf("transcomplex binary not found in PATH")
	}
	if len(config.Corpora) == 0 {
		return fmt.Errorf("no corpus directories found under %s", config.CorpusBase)
	}
	return nil
}

// clearCache empties the sqlite result cache so each suite starts cold
func clearCache() {
	clearCmd := exec.Command("transcomplex", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmarks executes all benchmark tests across configured corpora
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Corpora), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, corpus := range config.Corpora {
		fmt.Printf("Benchmarking %s\n", corpus)
		corpusPath := filepath.Join(config.CorpusBase, corpus)
		for _, split := range config.SplitModes {
			results = append(results, runBenchmarkSuite(config, corpus, corpusPath, split))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one split mode
func runBenchmarkSuite(config BenchmarkConfig, corpus, corpusPath, split string) BenchmarkResult {
	fmt.Printf("Running batch --split %s on %s\n", split, corpus)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, corpusPath, split, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	clearCache()
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Corpus:      corpus,
		Split:       split,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a batch command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, corpusPath, split, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"batch",
		"--glob", filepath.Join(corpusPath, "**", "*.{txt,md}"),
		"--split", split,
		"--workers", fmt.Sprint(config.Workers),
		"--cache-backend", cacheBackend,
		"--limit", "1",
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "transcomplex", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Scoring completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("transcomplex_benchmark_%s.csv", timestamp))

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

	// Write header
	if err := writer.Write([]string{"corpus", "split", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Corpus, result.Split, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary, grouped by split mode
func printSummary(results []BenchmarkResult, splits []string) {
	fmt.Printf("Benchmark complete\n")
	for _, split := range splits {
		fmt.Printf("Split %s:\n", split)
		for _, result := range results {
			if result.Split == split {
				fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Corpus, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
