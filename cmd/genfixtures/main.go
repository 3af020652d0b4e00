// Command genfixtures reads a raw regulator directory export and generates
// normalized JSON fixtures for the test suites. It runs the actual domain
// assembler so fixture output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -data-dir data/raw \
//	  -glob "*_directory.csv" \
//	  -out data/fixtures/facilities_normalized.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tryvailo/carehome-etl/internal/adapter/file"
	"github.com/tryvailo/carehome-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataDir := flag.String("data-dir", "", "directory containing the raw directory export")
	glob := flag.String("glob", "*.csv", "filename pattern to match within -data-dir")
	out := flag.String("out", "", "output path for the normalized JSON fixture")
	flag.Parse()

	if *dataDir == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -data-dir, -out")
	}

	// Freeze the clock for reproducible UpdatedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.February, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := file.NewExtractor(*dataDir, *glob, logger)

	rawRecords, err := extractor.ExtractAll(context.Background())
	if err != nil {
		return fmt.Errorf("extracting records: %w", err)
	}
	log.Printf("extracted: %d records", len(rawRecords))

	var facilities []*domain.Facility //nolint:prealloc // size depends on the selection predicate
	var skipped, failed int
	anomalyCfg := domain.DefaultAnomalyConfig()

	for _, raw := range rawRecords {
		if !domain.SelectRecord(raw) {
			skipped++
			continue
		}
		facility, err := domain.AssembleFacility(raw)
		if err != nil {
			failed++
			id, _ := raw.Get(domain.FieldLocationID)
			log.Printf("assembly failed for %q: %v", id, err)
			continue
		}
		facility.Anomalies = domain.DetectAnomalies(facility, anomalyCfg)
		facilities = append(facilities, facility)
	}

	log.Printf("normalized: %d, skipped: %d, failed: %d", len(facilities), skipped, failed)

	if err := writeJSON(*out, facilities); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(facilities)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(facilities []*domain.Facility) {
	var scoreBuckets [5]int
	severityCounts := map[domain.Severity]int{}
	var nursing, active, withCoords int

	for _, f := range facilities {
		bucket := f.QualityScore / 20
		if bucket > 4 {
			bucket = 4
		}
		scoreBuckets[bucket]++

		for sev, n := range domain.CountBySeverity(f.Anomalies) {
			severityCounts[sev] += n
		}
		if f.HasNursingLicense {
			nursing++
		}
		if f.IsActive {
			active++
		}
		if f.Latitude != nil && f.Longitude != nil {
			withCoords++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(facilities))
	fmt.Printf("Active: %d, nursing license: %d, with coordinates: %d\n", active, nursing, withCoords)
	fmt.Printf("Score buckets (0-19/20-39/40-59/60-79/80-100): %d/%d/%d/%d/%d\n",
		scoreBuckets[0], scoreBuckets[1], scoreBuckets[2], scoreBuckets[3], scoreBuckets[4])
	fmt.Printf("Findings: critical=%d, high=%d, medium=%d, warning=%d, info=%d\n",
		severityCounts[domain.SeverityCritical], severityCounts[domain.SeverityHigh],
		severityCounts[domain.SeverityMedium], severityCounts[domain.SeverityWarning],
		severityCounts[domain.SeverityInfo])
}
