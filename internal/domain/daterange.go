package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used on the wire and for chart series.
const DateLayout = "2006-01-02"

// seriesLayout parses DateLayout dates with or without zero padding.
const seriesLayout = "2006-1-2"

// lenientLayouts are the date layouts accepted when resolving and filtering ranges.
var lenientLayouts = []string{
	DateLayout,
	seriesLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses s with any accepted layout and truncates it to the UTC
// calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

// ParseSeriesDate parses s as year-month-day only, accepting unpadded month
// and day ("2020-1-5").
func ParseSeriesDate(s string) (time.Time, bool) {
	t, err := time.Parse(seriesLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive span of calendar days. Start may be after End, in
// which case the range contains nothing.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, inclusive on both ends.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// String renders the range as "start to end".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

// MarshalJSON encodes the bounds as calendar-date strings.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: r.Start.Format(DateLayout),
		End:   r.End.Format(DateLayout),
	})
}

// ResolveDefaultRange returns the earliest and latest valid dates in the
// dataset. Records with unparseable dates are ignored. ErrEmptyDataset is
// returned when no record has a valid date.
func ResolveDefaultRange(records []Record) (DateRange, error) {
	var r DateRange
	found := false
	for i := range records {
		t, ok := ParseDate(records[i].Date)
		if !ok {
			continue
		}
		if !found {
			r = DateRange{Start: t, End: t}
			found = true
			continue
		}
		if t.Before(r.Start) {
			r.Start = t
		}
		if t.After(r.End) {
			r.End = t
		}
	}
	if !found {
		return DateRange{}, ErrEmptyDataset
	}
	return r, nil
}

// ResolveEffectiveRange substitutes each absent or invalid requested bound
// with the matching bound of def. It does not check that start <= end.
func ResolveEffectiveRange(start, end string, def DateRange) DateRange {
	r := def
	if t, ok := ParseDate(start); ok {
		r.Start = t
	}
	if t, ok := ParseDate(end); ok {
		r.End = t
	}
	return r
}
