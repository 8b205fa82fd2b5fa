package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/air-quality-dashboard/internal/config"
	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// Header keys set on every exported message.
const (
	HeaderRangeStart  = "range_start"
	HeaderRangeEnd    = "range_end"
	HeaderGeneratedAt = "generated_at"
)

// Writer publishes per-city aggregates to the export topic.
// It implements dashboard.Exporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured export topic.
// Messages are hashed by city key so each city's summaries stay ordered.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaExportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Export publishes one message per city in a single WriteMessages call.
func (w *Writer) Export(ctx context.Context, batch dashboard.ExportBatch) error {
	if len(batch.Cities) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Cities))
	for i := range batch.Cities {
		msg, err := serializeToMessage(batch, batch.Cities[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write aggregates: %w", err)
	}
	w.logger.Debug("aggregates exported", "topic", w.writer.Topic, "cities", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// CityAggregateMessage is the JSON value of an exported message.
type CityAggregateMessage struct {
	dashboard.CitySummary
	RangeStart  string    `json:"range_start"`
	RangeEnd    string    `json:"range_end"`
	GeneratedAt time.Time `json:"generated_at"`
}

// serializeToMessage marshals one city summary into a Kafka message.
func serializeToMessage(batch dashboard.ExportBatch, city dashboard.CitySummary) (kafkago.Message, error) {
	start := batch.Range.Start.Format(domain.DateLayout)
	end := batch.Range.End.Format(domain.DateLayout)
	generated := batch.GeneratedAt.UTC()

	data, err := json.Marshal(CityAggregateMessage{
		CitySummary: city,
		RangeStart:  start,
		RangeEnd:    end,
		GeneratedAt: generated,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize city aggregate: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(city.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRangeStart, Value: []byte(start)},
			{Key: HeaderRangeEnd, Value: []byte(end)},
			{Key: HeaderGeneratedAt, Value: []byte(generated.Format(time.RFC3339))},
		},
	}, nil
}
