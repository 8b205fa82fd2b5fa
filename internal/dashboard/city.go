package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// Initial dropdown selections of the info panel.
const (
	DefaultPollutant = domain.MetricO3
	DefaultVariable  = domain.MetricMilMiles
)

// SelectRequest identifies a city and the panel's range and metric selections.
// Empty metrics select the defaults.
type SelectRequest struct {
	Key       domain.CityKey
	Start     string
	End       string
	Pollutant domain.Metric
	Variable  domain.Metric
}

// ChartRequest is issued when a metric dropdown changes.
type ChartRequest = SelectRequest

// CityPanel is the info panel opened by clicking a marker.
type CityPanel struct {
	Key          string                `json:"key"`
	DisplayName  string                `json:"display_name"`
	Range        domain.DateRange      `json:"range"`
	AveragePM25  float64               `json:"average_pm25"`
	AverageLabel string                `json:"average_label"`
	Count        int                   `json:"count"`
	Pollutants   []domain.MetricOption `json:"pollutants"`
	Variables    []domain.MetricOption `json:"variables"`
	Chart        *ChartData            `json:"chart,omitempty"`
	ChartNotice  string                `json:"chart_notice,omitempty"`
}

// ChartData is the line chart payload for one city and metric pair.
type ChartData struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	Title          string `json:"title"`
	PollutantLabel string `json:"pollutant_label"`
	VariableLabel  string `json:"variable_label"`
	domain.SeriesSet
}

// SelectCity builds the info panel for a city. A city whose metrics yield no
// plottable points still gets a panel, with ChartNotice set instead of Chart.
func (d *Dashboard) SelectCity(_ context.Context, req SelectRequest) (*CityPanel, error) {
	pollutant, variable, err := resolveMetrics(req.Pollutant, req.Variable)
	if err != nil {
		d.metrics.SeriesRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}
	agg, r, err := d.city(req)
	if err != nil {
		return nil, err
	}

	panel := &CityPanel{
		Key:          agg.Key().String(),
		DisplayName:  displayName(agg.City, agg.State),
		Range:        r,
		AveragePM25:  agg.Average(),
		AverageLabel: fmt.Sprintf("%.2f", agg.Average()),
		Count:        agg.Count,
		Pollutants:   domain.Pollutants,
		Variables:    domain.Variables,
	}

	chart, err := d.chart(agg, pollutant, variable)
	switch {
	case errors.Is(err, domain.ErrNoData):
		panel.ChartNotice = err.Error()
	case err != nil:
		return nil, err
	default:
		panel.Chart = chart
	}
	return panel, nil
}

// Chart re-extracts the series of a city for a new metric selection.
func (d *Dashboard) Chart(_ context.Context, req ChartRequest) (*ChartData, error) {
	pollutant, variable, err := resolveMetrics(req.Pollutant, req.Variable)
	if err != nil {
		d.metrics.SeriesRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}
	agg, _, err := d.city(req)
	if err != nil {
		return nil, err
	}
	return d.chart(agg, pollutant, variable)
}

func (d *Dashboard) city(req SelectRequest) (*domain.CityAggregate, domain.DateRange, error) {
	r := domain.ResolveEffectiveRange(req.Start, req.End, d.defaultRange)
	aggs, err := domain.Aggregate(d.records, r)
	if errors.Is(err, domain.ErrEmptyRange) {
		d.metrics.SeriesRequests.WithLabelValues("not_found").Inc()
		return nil, r, err
	}
	if err != nil {
		return nil, r, err
	}
	agg, ok := aggs[req.Key]
	if !ok {
		d.metrics.SeriesRequests.WithLabelValues("not_found").Inc()
		return nil, r, fmt.Errorf("%w: %s", domain.ErrCityNotFound, req.Key)
	}
	return agg, r, nil
}

func (d *Dashboard) chart(agg *domain.CityAggregate, pollutant, variable domain.Metric) (*ChartData, error) {
	set, err := domain.ExtractSeries(agg, pollutant, variable)
	if err != nil {
		d.metrics.SeriesRequests.WithLabelValues("no_data").Inc()
		d.logger.Debug("no plottable series",
			"city", agg.Key().String(),
			"pollutant", pollutant,
			"variable", variable,
		)
		return nil, err
	}
	d.metrics.SeriesRequests.WithLabelValues("success").Inc()
	return &ChartData{
		Key:            agg.Key().String(),
		DisplayName:    displayName(agg.City, agg.State),
		Title:          pollutant.Label() + " and " + variable.Label(),
		PollutantLabel: pollutant.Label(),
		VariableLabel:  variable.Label(),
		SeriesSet:      set,
	}, nil
}

func resolveMetrics(pollutant, variable domain.Metric) (domain.Metric, domain.Metric, error) {
	if pollutant == "" {
		pollutant = DefaultPollutant
	}
	if variable == "" {
		variable = DefaultVariable
	}
	if !domain.IsPollutant(pollutant) {
		return "", "", fmt.Errorf("%w: pollutant %q", domain.ErrUnknownMetric, pollutant)
	}
	if !domain.IsVariable(variable) {
		return "", "", fmt.Errorf("%w: variable %q", domain.ErrUnknownMetric, variable)
	}
	return pollutant, variable, nil
}
