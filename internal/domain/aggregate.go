package domain

import (
	"cmp"
	"slices"
)

// CityKey identifies a city by its (City, State) pair.
type CityKey struct {
	City  string
	State string
}

// String renders the key as "City, State".
func (k CityKey) String() string {
	return k.City + ", " + k.State
}

// CityAggregate summarizes every record of one city inside a date range.
// Count always equals len(Records) and is at least 1.
type CityAggregate struct {
	City      string
	State     string
	Latitude  Coordinate
	Longitude Coordinate
	Count     int
	PM25Sum   float64
	Records   []Record
}

// Key returns the aggregate's city key.
func (a *CityAggregate) Key() CityKey {
	return CityKey{City: a.City, State: a.State}
}

// Average returns the mean PM2.5 reading, with missing readings counted as 0.
func (a *CityAggregate) Average() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.PM25Sum / float64(a.Count)
}

// HasCoordinates reports whether the aggregate can be placed on the map.
func (a *CityAggregate) HasCoordinates() bool {
	return a.Latitude.Valid && a.Longitude.Valid
}

// Aggregate groups the records dated inside r by city. Each city accumulates a
// record count and a PM2.5 sum where missing readings count as 0, and keeps its
// contributing records in input order. ErrEmptyRange is returned when no record
// falls inside r.
func Aggregate(records []Record, r DateRange) (map[CityKey]*CityAggregate, error) {
	out := make(map[CityKey]*CityAggregate)
	for i := range records {
		rec := records[i]
		t, ok := ParseDate(rec.Date)
		if !ok || !r.Contains(t) {
			continue
		}

		key := CityKey{City: rec.City, State: rec.State}
		agg, exists := out[key]
		if !exists {
			agg = &CityAggregate{City: rec.City, State: rec.State}
			out[key] = agg
		}
		if !agg.HasCoordinates() && rec.HasCoordinates() {
			agg.Latitude = rec.Latitude
			agg.Longitude = rec.Longitude
		}

		pm25, _ := rec.Value(MetricPM25)
		agg.Count++
		agg.PM25Sum += pm25
		agg.Records = append(agg.Records, rec)
	}

	if len(out) == 0 {
		return nil, ErrEmptyRange
	}
	return out, nil
}

// SortedAggregates returns the aggregates ordered by state, then city.
func SortedAggregates(aggs map[CityKey]*CityAggregate) []*CityAggregate {
	out := make([]*CityAggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *CityAggregate) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return cmp.Compare(a.City, b.City)
	})
	return out
}
