package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadStats summarizes one dataset parse.
type LoadStats struct {
	Rows        int // data rows read, excluding the header
	Records     int // rows kept as records
	SkippedRows int // rows dropped as structurally malformed
}

// requiredColumns must all appear in the header for the dataset to be usable.
var requiredColumns = []string{ColumnCity, ColumnState, ColumnDate}

// schema maps column positions to record fields.
type schema struct {
	city, state, date int
	lat, lon          int
	metrics           map[Metric]int
	width             int
}

// ParseDataset reads a header-row CSV table into records. Malformed rows and
// cells are dropped silently and counted in LoadStats. A *LoadError is returned
// when the input cannot be read, has no header, or lacks a required column; no
// records are returned in that case.
func ParseDataset(r io.Reader) ([]Record, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, &LoadError{Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, stats, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	sch, err := buildSchema(header)
	if err != nil {
		return nil, stats, &LoadError{Err: err}
	}
	reader.FieldsPerRecord = sch.width

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Rows++
				stats.SkippedRows++
				continue
			}
			return nil, LoadStats{}, &LoadError{Err: fmt.Errorf("read row: %w", err)}
		}
		stats.Rows++

		if isBlankRow(row) {
			stats.SkippedRows++
			continue
		}
		records = append(records, sch.parseRow(row))
	}

	stats.Records = len(records)
	return records, stats, nil
}

func buildSchema(header []string) (schema, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		key := strings.ToLower(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return schema{}, fmt.Errorf("missing required column %q", col)
		}
	}

	lookup := func(col string) int {
		if i, ok := index[strings.ToLower(col)]; ok {
			return i
		}
		return -1
	}

	sch := schema{
		city:    lookup(ColumnCity),
		state:   lookup(ColumnState),
		date:    lookup(ColumnDate),
		lat:     lookup(ColumnLatitude),
		lon:     lookup(ColumnLongitude),
		metrics: make(map[Metric]int),
		width:   len(header),
	}
	for _, m := range Metrics() {
		if i := lookup(string(m)); i >= 0 {
			sch.metrics[m] = i
		}
	}
	return sch, nil
}

func (s schema) parseRow(row []string) Record {
	values := make(map[Metric]float64, len(s.metrics))
	for m, i := range s.metrics {
		if v, ok := parseNumber(cell(row, i)); ok {
			values[m] = v
		}
	}
	return NewRecord(
		cell(row, s.city),
		cell(row, s.state),
		cell(row, s.date),
		parseCoordinate(cell(row, s.lat)),
		parseCoordinate(cell(row, s.lon)),
		values,
	)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber coerces a cell to a finite float. Empty, non-numeric, NaN and
// infinite cells are absent.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func parseCoordinate(s string) Coordinate {
	v, ok := parseNumber(s)
	return Coordinate{Value: v, Valid: ok}
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
