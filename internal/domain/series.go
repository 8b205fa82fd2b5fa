package domain

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// valueDomainPadding widens a zero-width value domain on both sides.
const valueDomainPadding = 1.0

// SeriesPoint is one charted (date, value) pair.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// MarshalJSON encodes the date as a calendar-date string.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{Date: p.Date.Format(DateLayout), Value: p.Value})
}

// DateDomain is the shared horizontal extent of both series.
type DateDomain struct {
	Min time.Time
	Max time.Time
}

// MarshalJSON encodes the bounds as calendar-date strings.
func (d DateDomain) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min string `json:"min"`
		Max string `json:"max"`
	}{Min: d.Min.Format(DateLayout), Max: d.Max.Format(DateLayout)})
}

// ValueDomain is the shared vertical extent of both series.
type ValueDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SeriesSet holds the two aligned series of a city chart and their shared axes.
type SeriesSet struct {
	Pollutant       Metric        `json:"pollutant"`
	Variable        Metric        `json:"variable"`
	PollutantSeries []SeriesPoint `json:"pollutant_series"`
	VariableSeries  []SeriesPoint `json:"variable_series"`
	DateDomain      DateDomain    `json:"date_domain"`
	ValueDomain     ValueDomain   `json:"value_domain"`
}

// ExtractSeries builds the pollutant and variable series for one city. Records
// whose date is not a strict calendar date, or whose metric is missing, yield
// no point. ErrNoData is returned when both series are empty.
func ExtractSeries(agg *CityAggregate, pollutant, variable Metric) (SeriesSet, error) {
	set := SeriesSet{
		Pollutant:       pollutant,
		Variable:        variable,
		PollutantSeries: metricSeries(agg.Records, pollutant),
		VariableSeries:  metricSeries(agg.Records, variable),
	}
	if len(set.PollutantSeries) == 0 && len(set.VariableSeries) == 0 {
		return SeriesSet{}, ErrNoData
	}

	all := make([]SeriesPoint, 0, len(set.PollutantSeries)+len(set.VariableSeries))
	all = append(all, set.PollutantSeries...)
	all = append(all, set.VariableSeries...)

	set.DateDomain = DateDomain{Min: all[0].Date, Max: all[0].Date}
	set.ValueDomain = ValueDomain{Min: all[0].Value, Max: all[0].Value}
	for _, p := range all[1:] {
		if p.Date.Before(set.DateDomain.Min) {
			set.DateDomain.Min = p.Date
		}
		if p.Date.After(set.DateDomain.Max) {
			set.DateDomain.Max = p.Date
		}
		set.ValueDomain.Min = math.Min(set.ValueDomain.Min, p.Value)
		set.ValueDomain.Max = math.Max(set.ValueDomain.Max, p.Value)
	}
	if set.ValueDomain.Min == set.ValueDomain.Max {
		set.ValueDomain.Min -= valueDomainPadding
		set.ValueDomain.Max += valueDomainPadding
	}
	return set, nil
}

func metricSeries(records []Record, m Metric) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(records))
	for i := range records {
		date, ok := ParseSeriesDate(records[i].Date)
		if !ok {
			continue
		}
		v, ok := records[i].Value(m)
		if !ok || math.IsNaN(v) {
			continue
		}
		points = append(points, SeriesPoint{Date: date, Value: v})
	}
	slices.SortStableFunc(points, func(a, b SeriesPoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}
