package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tryvailo/carehome-etl/internal/config"
	"github.com/tryvailo/carehome-etl/internal/domain"
)

// Writer publishes normalized facilities to the sink topic for downstream
// analytics consumers. It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the run's facilities in a single
// WriteMessages call, keyed by location ID so downstream compaction keeps
// the latest snapshot per facility.
func (w *Writer) PublishBatch(ctx context.Context, runID string, facilities []*domain.Facility) error {
	if len(facilities) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(facilities))
	for i := range facilities {
		msg, err := serializeToMessage(runID, facilities[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a facility into a Kafka message.
func serializeToMessage(runID string, facility *domain.Facility) (kafkago.Message, error) {
	data, err := json.Marshal(facility)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize facility: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(facility.LocationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "processed_at", Value: []byte(facility.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}
