package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset means no record carries a parseable date.
	ErrEmptyDataset = errors.New("no valid dates found in the data")

	// ErrEmptyRange means no record falls inside the requested date range.
	ErrEmptyRange = errors.New("no data available for the selected date range")

	// ErrNoData means the selected metrics yield no plottable points.
	ErrNoData = errors.New("no data available for the selected pollutant or variable")

	// ErrCityNotFound means the requested city has no records in the range.
	ErrCityNotFound = errors.New("city not found")

	// ErrUnknownMetric means a metric key is not in the selectable catalogs.
	ErrUnknownMetric = errors.New("unknown metric")
)

// LoadError reports that the dataset could not be read at all.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
