package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/config"
	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch() dashboard.ExportBatch {
	lat, lon := 42.03, -93.62
	return dashboard.ExportBatch{
		Range: domain.DateRange{
			Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		GeneratedAt: time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
		Cities: []dashboard.CitySummary{
			{Key: "Ames, IA", City: "Ames", State: "IA", AveragePM25: 15, Count: 2, Color: "#67000d", Lat: &lat, Lon: &lon},
			{Key: "Boise, ID", City: "Boise", State: "ID", AveragePM25: 0, Count: 3, Color: "#fff5f0"},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	batch := testBatch()

	msg, err := serializeToMessage(batch, batch.Cities[0])
	require.NoError(t, err)

	assert.Equal(t, []byte("Ames, IA"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, kafkago.Header{Key: HeaderRangeStart, Value: []byte("2020-01-01")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: HeaderRangeEnd, Value: []byte("2020-12-31")}, msg.Headers[1])
	assert.Equal(t, kafkago.Header{Key: HeaderGeneratedAt, Value: []byte("2024-04-26T15:10:00Z")}, msg.Headers[2])

	assert.JSONEq(t, `{
		"key": "Ames, IA",
		"city": "Ames",
		"state": "IA",
		"average_pm25": 15,
		"count": 2,
		"color": "#67000d",
		"lat": 42.03,
		"lon": -93.62,
		"range_start": "2020-01-01",
		"range_end": "2020-12-31",
		"generated_at": "2024-04-26T15:10:00Z"
	}`, string(msg.Value))
}

func TestSerializeToMessage_UnplacedCityOmitsCoordinates(t *testing.T) {
	batch := testBatch()

	msg, err := serializeToMessage(batch, batch.Cities[1])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.NotContains(t, decoded, "lat")
	assert.NotContains(t, decoded, "lon")
	assert.Equal(t, "Boise, ID", decoded["key"])
}

func TestWriter_ExportEmptyBatchIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{
		KafkaBrokers:     []string{"127.0.0.1:1"},
		KafkaExportTopic: "unused",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Export(context.Background(), dashboard.ExportBatch{}))
}
