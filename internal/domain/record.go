package domain

import (
	"math"
	"strings"
)

// Metric names a numeric column of the dataset.
type Metric string

// Pollutant metrics.
const (
	MetricO3   Metric = "o3_median"
	MetricPM25 Metric = "pm25_median"
	MetricNO2  Metric = "no2_median"
	MetricSO2  Metric = "so2_median"
	MetricCO   Metric = "co_median"
	MetricPM10 Metric = "pm10_median"
)

// Auxiliary variables charted against a pollutant.
const (
	MetricMilMiles       Metric = "mil_miles"
	MetricTemperatureMax Metric = "temperature_max"
	MetricDewMax         Metric = "dew_max"
)

// Column names that are not metrics.
const (
	ColumnCity      = "City"
	ColumnState     = "State"
	ColumnDate      = "Date"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// MetricOption pairs a metric with the label shown to users.
type MetricOption struct {
	Key   Metric `json:"key"`
	Label string `json:"label"`
}

// Pollutants lists the selectable pollutants in dropdown order.
var Pollutants = []MetricOption{
	{Key: MetricO3, Label: "O3"},
	{Key: MetricPM25, Label: "PM2.5"},
	{Key: MetricNO2, Label: "NO2"},
	{Key: MetricSO2, Label: "SO2"},
	{Key: MetricCO, Label: "CO"},
	{Key: MetricPM10, Label: "PM10"},
}

// Variables lists the selectable auxiliary variables in dropdown order.
var Variables = []MetricOption{
	{Key: MetricMilMiles, Label: "MIL Miles"},
	{Key: MetricTemperatureMax, Label: "Temperature Max"},
	{Key: MetricDewMax, Label: "Dew Max"},
}

// Metrics is the full numeric schema, pollutants first.
func Metrics() []Metric {
	out := make([]Metric, 0, len(Pollutants)+len(Variables))
	for _, o := range Pollutants {
		out = append(out, o.Key)
	}
	for _, o := range Variables {
		out = append(out, o.Key)
	}
	return out
}

// IsPollutant reports whether m is one of the selectable pollutants.
func IsPollutant(m Metric) bool {
	return findOption(Pollutants, m) >= 0
}

// IsVariable reports whether m is one of the selectable auxiliary variables.
func IsVariable(m Metric) bool {
	return findOption(Variables, m) >= 0
}

// Label returns the display label for m, or the raw key when m is unknown.
func (m Metric) Label() string {
	if i := findOption(Pollutants, m); i >= 0 {
		return Pollutants[i].Label
	}
	if i := findOption(Variables, m); i >= 0 {
		return Variables[i].Label
	}
	return string(m)
}

func findOption(opts []MetricOption, m Metric) int {
	for i, o := range opts {
		if o.Key == m {
			return i
		}
	}
	return -1
}

// Coordinate is an optional latitude or longitude.
type Coordinate struct {
	Value float64
	Valid bool
}

// Record is one parsed dataset row. Records are never mutated after loading.
type Record struct {
	City      string
	State     string
	Date      string
	Latitude  Coordinate
	Longitude Coordinate

	values map[Metric]float64
}

// NewRecord builds a record from already-coerced metric values. NaN and
// infinite values are dropped so they read back as absent.
func NewRecord(city, state, date string, lat, lon Coordinate, values map[Metric]float64) Record {
	kept := make(map[Metric]float64, len(values))
	for m, v := range values {
		if isFinite(v) {
			kept[m] = v
		}
	}
	if !isFinite(lat.Value) {
		lat = Coordinate{}
	}
	if !isFinite(lon.Value) {
		lon = Coordinate{}
	}
	return Record{
		City:      city,
		State:     state,
		Date:      strings.TrimSpace(date),
		Latitude:  lat,
		Longitude: lon,
		values:    kept,
	}
}

// Value returns the metric value and whether the cell held a usable number.
func (r Record) Value(m Metric) (float64, bool) {
	v, ok := r.values[m]
	return v, ok
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r Record) HasCoordinates() bool {
	return r.Latitude.Valid && r.Longitude.Valid
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
