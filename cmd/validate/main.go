// Command validate checks the integrity of a pollution dataset before it is
// served: header schema, date coverage, coordinates, and metric presence.
//
// Usage:
//
//	go run ./cmd/validate -data data/pollution_data.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "data/pollution_data.csv", "path to the pollution CSV")
	flag.Parse()

	if code := run(*dataPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, out io.Writer) int {
	fmt.Fprintln(out, "=== Pollution Dataset Validation ===")
	fmt.Fprintln(out)

	header, err := readHeader(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", &domain.LoadError{Source: path, Err: err})
		return 1
	}
	defer f.Close()

	records, stats, err := domain.ParseDataset(f)
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = path
		}
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(header),
		validateRows(stats),
		validateDates(records),
		validateCoordinates(records),
		validateMetrics(records),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d read, %d records, %d skipped\n", stats.Rows, stats.Records, stats.SkippedRows)

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(out, "  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Source: path, Err: err}
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, &domain.LoadError{Source: path, Err: fmt.Errorf("read header: %w", err)}
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	return header, nil
}

// ── Phase 1: Schema ──

func validateSchema(header []string) *phase {
	p := &phase{name: "Phase 1: Schema (header columns)"}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range []string{domain.ColumnLatitude, domain.ColumnLongitude} {
		if !present[strings.ToLower(col)] {
			p.notef("column %q missing: no city can be placed from the dataset", col)
		}
	}
	for _, m := range domain.Metrics() {
		if !present[string(m)] {
			p.errorf("metric column %q missing", m)
		}
	}
	return p
}

// ── Phase 2: Rows ──

func validateRows(stats domain.LoadStats) *phase {
	p := &phase{name: "Phase 2: Rows (structure)"}
	if stats.Records == 0 {
		p.errorf("no usable rows")
	}
	if stats.SkippedRows > 0 {
		p.notef("%d malformed or blank rows skipped", stats.SkippedRows)
	}
	return p
}

// ── Phase 3: Dates ──

func validateDates(records []domain.Record) *phase {
	p := &phase{name: "Phase 3: Dates (range coverage)"}

	r, err := domain.ResolveDefaultRange(records)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.notef("default range %s", r)

	var invalid, lenientOnly int
	for i := range records {
		if _, ok := domain.ParseDate(records[i].Date); !ok {
			invalid++
			continue
		}
		if _, ok := domain.ParseSeriesDate(records[i].Date); !ok {
			lenientOnly++
		}
	}
	if invalid > 0 {
		p.notef("%d records with unparseable dates are never shown", invalid)
	}
	if lenientOnly > 0 {
		p.notef("%d records are not in %s form and are left out of charts", lenientOnly, domain.DateLayout)
	}
	return p
}

// ── Phase 4: Coordinates ──

func validateCoordinates(records []domain.Record) *phase {
	p := &phase{name: "Phase 4: Coordinates (placement)"}

	type pair struct{ lat, lon float64 }
	coords := map[domain.CityKey]map[pair]bool{}
	unplaced := map[domain.CityKey]bool{}
	for i := range records {
		rec := records[i]
		key := domain.CityKey{City: rec.City, State: rec.State}
		if !rec.HasCoordinates() {
			if _, seen := coords[key]; !seen {
				unplaced[key] = true
			}
			continue
		}
		delete(unplaced, key)
		if rec.Latitude.Value < -90 || rec.Latitude.Value > 90 || rec.Longitude.Value < -180 || rec.Longitude.Value > 180 {
			p.errorf("%s on %s: coordinates out of range (%g, %g)", key, rec.Date, rec.Latitude.Value, rec.Longitude.Value)
		}
		if coords[key] == nil {
			coords[key] = map[pair]bool{}
		}
		coords[key][pair{rec.Latitude.Value, rec.Longitude.Value}] = true
	}

	for key, set := range coords {
		if len(set) > 1 {
			p.notef("%s has %d distinct coordinate pairs; the first is used", key, len(set))
		}
	}
	if len(unplaced) > 0 {
		p.notef("%d cities have no coordinates and need geocoding to appear on the map", len(unplaced))
	}
	p.notef("%d cities", len(coords)+len(unplaced))
	return p
}

// ── Phase 5: Metrics ──

func validateMetrics(records []domain.Record) *phase {
	p := &phase{name: "Phase 5: Metrics (presence)"}

	for _, m := range domain.Metrics() {
		n := 0
		for i := range records {
			if _, ok := records[i].Value(m); ok {
				n++
			}
		}
		if n == 0 && len(records) > 0 {
			p.errorf("%s has no values", m.Label())
			continue
		}
		p.notef("%-16s %d/%d present", m.Label(), n, len(records))
	}
	return p
}
