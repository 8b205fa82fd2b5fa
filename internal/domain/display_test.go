package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDisplayCity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DES MOINES", "Des Moines"},
		{"ames", "Ames"},
		{"winston-salem", "Winston-salem"},
		{"", ""},
		{"new  york", "New  York"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayCity(tt.input))
		})
	}
}

func TestDisplayState(t *testing.T) {
	assert.Equal(t, "IA", DisplayState("IA"))
	assert.Equal(t, "Iowa", DisplayState("iowa"))
	assert.Equal(t, "", DisplayState(""))
}

func TestMetricCatalog(t *testing.T) {
	assert.True(t, IsPollutant(MetricPM25))
	assert.False(t, IsPollutant(MetricDewMax))
	assert.True(t, IsVariable(MetricDewMax))
	assert.False(t, IsVariable(Metric("humidity")))
	assert.Equal(t, "PM2.5", MetricPM25.Label())
	assert.Equal(t, "humidity", Metric("humidity").Label())
	assert.Len(t, Metrics(), len(Pollutants)+len(Variables))
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
}
