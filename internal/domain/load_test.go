package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "City,State,Date,latitude,longitude,o3_median,pm25_median,no2_median,so2_median,co_median,pm10_median,mil_miles,temperature_max,dew_max"

func TestParseDataset(t *testing.T) {
	input := testHeader + "\n" +
		"Ames,IA,2020-01-01,42.03,-93.62,0.031,10,12.5,0.4,0.2,14,120.5,31,22\n" +
		"Ames,IA,2020-01-02,42.03,-93.62,0.029,,11.0,0.3,0.2,13,118.0,28,20\n" +
		"\n" +
		"Boise,ID,2020-01-01,,,0.040,NaN,9.1,0.1,0.3,20,80.0,40,25\n"

	records, stats, err := ParseDataset(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, LoadStats{Rows: 3, Records: 3}, stats)

	ames := records[0]
	assert.Equal(t, "Ames", ames.City)
	assert.Equal(t, "IA", ames.State)
	assert.Equal(t, "2020-01-01", ames.Date)
	assert.True(t, ames.HasCoordinates())
	assert.InDelta(t, 42.03, ames.Latitude.Value, 1e-9)
	assert.InDelta(t, -93.62, ames.Longitude.Value, 1e-9)

	pm25, ok := ames.Value(MetricPM25)
	assert.True(t, ok)
	assert.Equal(t, 10.0, pm25)
	dew, ok := ames.Value(MetricDewMax)
	assert.True(t, ok)
	assert.Equal(t, 22.0, dew)

	t.Run("empty cell is absent, not zero", func(t *testing.T) {
		_, ok := records[1].Value(MetricPM25)
		assert.False(t, ok)
	})

	t.Run("NaN cell is absent", func(t *testing.T) {
		_, ok := records[2].Value(MetricPM25)
		assert.False(t, ok)
	})

	t.Run("missing coordinates are absent", func(t *testing.T) {
		assert.False(t, records[2].HasCoordinates())
		assert.False(t, records[2].Latitude.Valid)
	})
}

func TestParseDataset_SkipsMalformedRows(t *testing.T) {
	input := "City,State,Date,pm25_median\n" +
		"Ames,IA,2020-01-01,10\n" +
		"Ames,IA,2020-01-02\n" + // too few fields
		"Ames,IA,2020-01-03,12,extra\n" + // too many fields
		",,,\n" + // blank row
		"Ames,IA,2020-01-04,abc\n"

	records, stats, err := ParseDataset(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 3, stats.SkippedRows)

	_, ok := records[1].Value(MetricPM25)
	assert.False(t, ok, "non-numeric cell should be absent")
}

func TestParseDataset_HeaderMatching(t *testing.T) {
	input := "\ufeff city , STATE,date,PM25_MEDIAN,unused\n" +
		"Ames,IA,2020-01-01,7.5,x\n"

	records, _, err := ParseDataset(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ames", records[0].City)
	v, ok := records[0].Value(MetricPM25)
	assert.True(t, ok)
	assert.Equal(t, 7.5, v)
}

func TestParseDataset_LoadFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty input", "", "missing header row"},
		{"missing city column", "State,Date,pm25_median\nIA,2020-01-01,1\n", `"City"`},
		{"missing date column", "City,State\nAmes,IA\n", `"Date"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _, err := ParseDataset(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, records)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseDataset_ReadError(t *testing.T) {
	readErr := errors.New("disk gone")

	records, _, err := ParseDataset(iotest.ErrReader(readErr))
	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, readErr)

	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestNewRecord_DropsNonFiniteValues(t *testing.T) {
	rec := NewRecord("Ames", "IA", " 2020-01-01 ", Coordinate{Value: 1, Valid: true}, Coordinate{Value: 2, Valid: true},
		map[Metric]float64{MetricPM25: math.NaN(), MetricO3: 0.03})

	assert.Equal(t, "2020-01-01", rec.Date)
	_, ok := rec.Value(MetricPM25)
	assert.False(t, ok)
	v, ok := rec.Value(MetricO3)
	assert.True(t, ok)
	assert.Equal(t, 0.03, v)
}
