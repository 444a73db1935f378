package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// Column names the maintenance export uses for the training corpus.
const (
	ColumnMachineCategory = "mach_cat"
	ColumnFailureType     = "failure_type"
	ColumnHoursBetween    = "hours_bf"
)

// ReadCorpus parses historical failure records. Columns are located by header name; the
// first malformed or out-of-range row aborts ingestion.
func ReadCorpus(r io.Reader) ([]models.FailureRecord, error) {
	reader := newReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("training corpus is empty")
		}
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	machineCol, failureCol, hoursCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColumnMachineCategory:
			machineCol = i
		case ColumnFailureType:
			failureCol = i
		case ColumnHoursBetween:
			hoursCol = i
		}
	}
	if machineCol < 0 || failureCol < 0 || hoursCol < 0 {
		return nil, fmt.Errorf("corpus header must contain %s, %s and %s", ColumnMachineCategory, ColumnFailureType, ColumnHoursBetween)
	}

	var records []models.FailureRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}

		machine, err := parseIndex(field(row, machineCol))
		if err != nil {
			return nil, lineError("corpus", line, ColumnMachineCategory, err)
		}
		failure, err := parseIndex(field(row, failureCol))
		if err != nil {
			return nil, lineError("corpus", line, ColumnFailureType, err)
		}
		if err := taxonomy.Validate(machine, failure); err != nil {
			return nil, lineError("corpus", line, "", err)
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(field(row, hoursCol)), 64)
		if err != nil {
			return nil, lineError("corpus", line, ColumnHoursBetween, err)
		}
		if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
			return nil, lineError("corpus", line, ColumnHoursBetween, fmt.Errorf("duration %v must be a finite non-negative number", hours))
		}

		records = append(records, models.FailureRecord{
			MachineCategory: machine,
			FailureType:     failure,
			DurationHours:   hours,
		})
	}
	return records, nil
}

// ReadObservations parses current observations. The header row is skipped and columns are
// positional: machine id, last failure timestamp, machine category, failure type.
func ReadObservations(r io.Reader) ([]models.Observation, error) {
	reader := newReader(r)
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read observations header: %w", err)
	}

	var observations []models.Observation
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read observations: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}
		if len(row) < 4 {
			return nil, lineError("observations", line, "", fmt.Errorf("expected 4 columns, got %d", len(row)))
		}

		machineID := strings.TrimSpace(row[0])
		if machineID == "" {
			return nil, lineError("observations", line, "machine id", fmt.Errorf("empty value"))
		}
		lastFailure, err := utils.ParseTimestamp(row[1])
		if err != nil {
			return nil, lineError("observations", line, "last failure", err)
		}
		machine, err := parseIndex(row[2])
		if err != nil {
			return nil, lineError("observations", line, ColumnMachineCategory, err)
		}
		failure, err := parseIndex(row[3])
		if err != nil {
			return nil, lineError("observations", line, ColumnFailureType, err)
		}
		if err := taxonomy.Validate(machine, failure); err != nil {
			return nil, lineError("observations", line, "", err)
		}

		observations = append(observations, models.Observation{
			MachineID:       machineID,
			LastFailure:     lastFailure,
			MachineCategory: machine,
			FailureType:     failure,
		})
	}
	return observations, nil
}

// LoadCorpus reads a training corpus CSV from disk.
func LoadCorpus(path string) ([]models.FailureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return ReadCorpus(f)
}

// LoadObservations reads an observations CSV from disk.
func LoadObservations(path string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observations: %w", err)
	}
	defer f.Close()
	return ReadObservations(f)
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return reader
}

// parseIndex accepts integers and integral floats ("3.0"), which spreadsheet exports emit.
func parseIndex(value string) (int, error) {
	value = strings.TrimSpace(value)
	if i, err := strconv.Atoi(value); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("index %q is not an integer", value)
	}
	return int(f), nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func lineError(source string, line int, column string, err error) error {
	msg := fmt.Sprintf("line %d", line)
	if column != "" {
		msg += " column " + column
	}
	return utils.NewAppError("ingest."+source, msg, err)
}
