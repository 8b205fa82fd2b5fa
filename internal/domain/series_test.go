package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cityOf(records ...Record) *CityAggregate {
	agg := &CityAggregate{City: "Ames", State: "IA"}
	for _, r := range records {
		agg.Count++
		agg.Records = append(agg.Records, r)
	}
	return agg
}

func TestExtractSeries_ExcludesNaN(t *testing.T) {
	agg := cityOf(
		testRecord("Ames", "IA", "2020-01-01", map[Metric]float64{MetricO3: 5}),
		testRecord("Ames", "IA", "2020-01-02", map[Metric]float64{MetricO3: math.NaN()}),
		testRecord("Ames", "IA", "2020-01-03", map[Metric]float64{MetricO3: 7}),
	)

	set, err := ExtractSeries(agg, MetricO3, MetricMilMiles)
	require.NoError(t, err)
	require.Len(t, set.PollutantSeries, 2)
	assert.Empty(t, set.VariableSeries)
	assert.Equal(t, 5.0, set.PollutantSeries[0].Value)
	assert.Equal(t, 7.0, set.PollutantSeries[1].Value)
}

func TestExtractSeries_CombinedDomains(t *testing.T) {
	agg := cityOf(
		testRecord("Ames", "IA", "2020-01-03", map[Metric]float64{MetricO3: 0.03, MetricTemperatureMax: 40}),
		testRecord("Ames", "IA", "2020-01-01", map[Metric]float64{MetricO3: 0.05}),
		testRecord("Ames", "IA", "2020-01-05", map[Metric]float64{MetricTemperatureMax: -4}),
	)

	set, err := ExtractSeries(agg, MetricO3, MetricTemperatureMax)
	require.NoError(t, err)

	assert.Equal(t, MetricO3, set.Pollutant)
	assert.Equal(t, MetricTemperatureMax, set.Variable)
	assert.Equal(t, day("2020-01-01"), set.DateDomain.Min)
	assert.Equal(t, day("2020-01-05"), set.DateDomain.Max)
	assert.Equal(t, ValueDomain{Min: -4, Max: 40}, set.ValueDomain)

	t.Run("points are sorted by date", func(t *testing.T) {
		require.Len(t, set.PollutantSeries, 2)
		assert.Equal(t, day("2020-01-01"), set.PollutantSeries[0].Date)
		assert.Equal(t, day("2020-01-03"), set.PollutantSeries[1].Date)
	})
}

func TestExtractSeries_ExcludesLenientDates(t *testing.T) {
	agg := cityOf(
		testRecord("Ames", "IA", "2020/01/01", map[Metric]float64{MetricO3: 1}),
		testRecord("Ames", "IA", "01/02/2020", map[Metric]float64{MetricO3: 2}),
		testRecord("Ames", "IA", "2020-01-03", map[Metric]float64{MetricO3: 3}),
	)

	set, err := ExtractSeries(agg, MetricO3, MetricDewMax)
	require.NoError(t, err)
	require.Len(t, set.PollutantSeries, 1)
	assert.Equal(t, 3.0, set.PollutantSeries[0].Value)
	assert.LessOrEqual(t, len(set.PollutantSeries)+len(set.VariableSeries), 2*len(agg.Records))
}

func TestExtractSeries_AcceptsUnpaddedDates(t *testing.T) {
	agg := cityOf(
		testRecord("Ames", "IA", "2020-1-5", map[Metric]float64{MetricO3: 1}),
		testRecord("Ames", "IA", "2020-01-04", map[Metric]float64{MetricO3: 2}),
	)

	set, err := ExtractSeries(agg, MetricO3, MetricDewMax)
	require.NoError(t, err)
	require.Len(t, set.PollutantSeries, 2)
	assert.Equal(t, day("2020-01-04"), set.PollutantSeries[0].Date)
	assert.Equal(t, day("2020-01-05"), set.PollutantSeries[1].Date)
}

func TestExtractSeries_FlatValuesWidenDomain(t *testing.T) {
	agg := cityOf(
		testRecord("Ames", "IA", "2020-01-01", map[Metric]float64{MetricPM10: 12}),
		testRecord("Ames", "IA", "2020-01-02", map[Metric]float64{MetricPM10: 12, MetricDewMax: 12}),
	)

	set, err := ExtractSeries(agg, MetricPM10, MetricDewMax)
	require.NoError(t, err)
	assert.Equal(t, ValueDomain{Min: 11, Max: 13}, set.ValueDomain)
}

func TestExtractSeries_NoData(t *testing.T) {
	tests := []struct {
		name string
		agg  *CityAggregate
	}{
		{"metrics missing", cityOf(testRecord("Ames", "IA", "2020-01-01", map[Metric]float64{MetricPM25: 3}))},
		{"dates unparseable", cityOf(testRecord("Ames", "IA", "Jan 1", map[Metric]float64{MetricO3: 3, MetricMilMiles: 1}))},
		{"no records", cityOf()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractSeries(tt.agg, MetricO3, MetricMilMiles)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestSeriesSet_JSON(t *testing.T) {
	agg := cityOf(testRecord("Ames", "IA", "2020-01-01", map[Metric]float64{MetricO3: 2}))
	set, err := ExtractSeries(agg, MetricO3, MetricMilMiles)
	require.NoError(t, err)

	b, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pollutant": "o3_median",
		"variable": "mil_miles",
		"pollutant_series": [{"date": "2020-01-01", "value": 2}],
		"variable_series": [],
		"date_domain": {"min": "2020-01-01", "max": "2020-01-01"},
		"value_domain": {"min": 1, "max": 3}
	}`, string(b))
}
