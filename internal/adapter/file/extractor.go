package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tryvailo/carehome-etl/internal/domain"
)

// Extractor reads the regulator's bulk directory export from disk. CSV files
// go through encoding/csv; XLSX files through excelize. The first row of
// each file is the header and supplies the raw field names.
//
// Cells that are empty or unreadable produce no map entry at all. The
// normalizers distinguish absent from empty, and downstream document
// extractors feeding this pipeline are held to the same contract: absent on
// unknown, never a fabricated value.
type Extractor struct {
	dir    string
	glob   string
	logger *slog.Logger
}

// NewExtractor creates an Extractor over dir, selecting files by glob
// pattern (e.g. "*.csv").
func NewExtractor(dir, glob string, logger *slog.Logger) *Extractor {
	return &Extractor{dir: dir, glob: glob, logger: logger}
}

// ExtractAll reads every matching file and concatenates their rows in file
// name order, preserving row order within each file.
func (e *Extractor) ExtractAll(ctx context.Context) ([]domain.RawFacilityRecord, error) {
	paths, err := filepath.Glob(filepath.Join(e.dir, e.glob))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", e.glob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matching %s in %s", e.glob, e.dir)
	}

	var records []domain.RawFacilityRecord
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			fileRecords []domain.RawFacilityRecord
			readErr     error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			fileRecords, readErr = readCSV(path)
		case ".xlsx":
			fileRecords, readErr = readXLSX(path)
		default:
			e.logger.Warn("skipping file with unsupported extension", "path", path)
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}

		e.logger.Info("file extracted", "path", path, "records", len(fileRecords))
		records = append(records, fileRecords...)
	}

	return records, nil
}

func readCSV(path string) ([]domain.RawFacilityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // the export's trailing columns are ragged

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fields := normalizeHeader(header)

	var records []domain.RawFacilityRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rowToRecord(fields, row))
	}
	return records, nil
}

func readXLSX(path string) ([]domain.RawFacilityRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	fields := normalizeHeader(rows[0])
	records := make([]domain.RawFacilityRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowToRecord(fields, row))
	}
	return records, nil
}

// normalizeHeader lowercases and snake_cases header cells so both file
// formats and hand-edited exports resolve to the same field names.
func normalizeHeader(header []string) []string {
	fields := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(h)
		fields[i] = h
	}
	return fields
}

// rowToRecord zips a row against the header, omitting empty cells entirely.
func rowToRecord(fields []string, row []string) domain.RawFacilityRecord {
	record := make(domain.RawFacilityRecord, len(row))
	for i, cell := range row {
		if i >= len(fields) || fields[i] == "" {
			continue
		}
		if strings.TrimSpace(cell) == "" {
			continue
		}
		record[fields[i]] = cell
	}
	return record
}
