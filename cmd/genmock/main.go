// Command genmock generates a synthetic pollution dataset for local runs and
// test fixtures. Output is deterministic for a given seed. The generated CSV is
// read back through the domain package so the printed stats match what the
// dashboard will serve.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/pollution_data.csv \
//	  -summary-out data/mock/pollution_summary.json \
//	  -days 90 -seed 42
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// mockCity seeds one city's readings. Cities without coordinates exercise the
// geocoding path.
type mockCity struct {
	city, state string
	lat, lon    string
	basePM25    float64
}

var cities = []mockCity{
	{"Ames", "IA", "42.0308", "-93.6319", 7.5},
	{"Boise", "ID", "43.6150", "-116.2023", 9.0},
	{"Cary", "NC", "35.7915", "-78.7811", 8.2},
	{"Denver", "CO", "39.7392", "-104.9903", 11.4},
	{"El Paso", "TX", "31.7619", "-106.4850", 13.1},
	{"Fresno", "CA", "36.7378", "-119.7871", 16.8},
	{"Gary", "IN", "", "", 12.3},
	{"Houston", "TX", "29.7604", "-95.3698", 14.0},
	{"Missoula", "MT", "", "", 10.2},
	{"Phoenix", "AZ", "33.4484", "-112.0740", 15.5},
}

var header = []string{
	domain.ColumnCity, domain.ColumnState, domain.ColumnDate,
	domain.ColumnLatitude, domain.ColumnLongitude,
	string(domain.MetricO3), string(domain.MetricPM25), string(domain.MetricNO2),
	string(domain.MetricSO2), string(domain.MetricCO), string(domain.MetricPM10),
	string(domain.MetricMilMiles), string(domain.MetricTemperatureMax), string(domain.MetricDewMax),
}

type options struct {
	days     int
	seed     uint64
	gapRatio float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated CSV")
	summaryOut := flag.String("summary-out", "", "optional output path for a JSON city summary")
	days := flag.Int("days", 90, "number of days per city")
	seed := flag.Uint64("seed", 42, "random seed")
	gaps := flag.Float64("gaps", 0.05, "fraction of cells left blank")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive")
	}

	// Set a fixed clock for a reproducible summary timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2020, time.July, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	data, err := generate(options{days: *days, seed: *seed, gapRatio: *gaps})
	if err != nil {
		return err
	}
	if err := writeFile(*out, data); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Printf("Wrote %s (%d cities x %d days)\n", *out, len(cities), *days)

	records, stats, err := domain.ParseDataset(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read back generated csv: %w", err)
	}
	r, err := domain.ResolveDefaultRange(records)
	if err != nil {
		return err
	}
	aggs, err := domain.Aggregate(records, r)
	if err != nil {
		return err
	}

	printStats(stats, r, aggs)

	if *summaryOut != "" {
		if err := writeJSON(*summaryOut, buildSummary(r, aggs)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Printf("Wrote %s\n", *summaryOut)
	}
	return nil
}

// generate renders the synthetic dataset as CSV bytes.
func generate(opts options) ([]byte, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, c := range cities {
		for d := range opts.days {
			date := baseDate.AddDate(0, 0, d)
			// Seasonal swing plus noise, floored at zero.
			season := 1 + 0.3*float64((date.YearDay()%120)-60)/60
			pm25 := max(0, c.basePM25*season+rng.NormFloat64()*2)

			row := []string{
				c.city, c.state, date.Format(domain.DateLayout), c.lat, c.lon,
				cellValue(rng, opts.gapRatio, 0.02+rng.Float64()*0.03, 3),
				cellValue(rng, opts.gapRatio, pm25, 1),
				cellValue(rng, opts.gapRatio, 5+rng.Float64()*25, 1),
				cellValue(rng, opts.gapRatio, rng.Float64()*3, 2),
				cellValue(rng, opts.gapRatio, 0.1+rng.Float64()*0.8, 2),
				cellValue(rng, opts.gapRatio, pm25*1.6+rng.Float64()*5, 1),
				cellValue(rng, opts.gapRatio, 50+rng.Float64()*200, 1),
				cellValue(rng, opts.gapRatio, 20+float64(date.YearDay())/3+rng.NormFloat64()*4, 0),
				cellValue(rng, opts.gapRatio, 10+float64(date.YearDay())/4+rng.NormFloat64()*4, 0),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(rng *rand.Rand, gapRatio, v float64, prec int) string {
	if rng.Float64() < gapRatio {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return writeFile(path, data)
}

type citySummary struct {
	City        string  `json:"city"`
	State       string  `json:"state"`
	Count       int     `json:"count"`
	AveragePM25 float64 `json:"average_pm25"`
	Color       string  `json:"color"`
	Placed      bool    `json:"placed"`
}

type summary struct {
	Range       domain.DateRange `json:"range"`
	GeneratedAt time.Time        `json:"generated_at"`
	Cities      []citySummary    `json:"cities"`
}

func buildSummary(r domain.DateRange, aggs map[domain.CityKey]*domain.CityAggregate) summary {
	cd := domain.ComputeDomain(aggs)
	sorted := domain.SortedAggregates(aggs)

	s := summary{Range: r, GeneratedAt: domain.Now(), Cities: make([]citySummary, 0, len(sorted))}
	for _, a := range sorted {
		s.Cities = append(s.Cities, citySummary{
			City:        a.City,
			State:       a.State,
			Count:       a.Count,
			AveragePM25: a.Average(),
			Color:       domain.Hex(domain.ColorFor(cd, a.Average())),
			Placed:      a.HasCoordinates(),
		})
	}
	return s
}

func printStats(stats domain.LoadStats, r domain.DateRange, aggs map[domain.CityKey]*domain.CityAggregate) {
	cd := domain.ComputeDomain(aggs)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d (records=%d, skipped=%d)\n", stats.Rows, stats.Records, stats.SkippedRows)
	fmt.Printf("Range: %s\n", r)
	fmt.Printf("Cities: %d\n", len(aggs))
	fmt.Printf("PM2.5 domain: %.2f to %.2f\n", cd.Min, cd.Max)

	var unplaced int
	for _, a := range domain.SortedAggregates(aggs) {
		if !a.HasCoordinates() {
			unplaced++
		}
		fmt.Printf("  %-20s count=%d avg=%.2f\n", a.Key(), a.Count, a.Average())
	}
	fmt.Printf("Without coordinates: %d\n", unplaced)
}
