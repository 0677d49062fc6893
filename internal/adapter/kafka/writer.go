package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/config"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// Writer publishes table snapshots to a Kafka topic.
// It implements dashboard.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// snapshotRecord is the JSON value of one published observation.
type snapshotRecord struct {
	Indicator   string    `json:"indicator"`
	Source      string    `json:"source,omitempty"`
	CountryCode string    `json:"country_code"`
	CountryName string    `json:"country_name"`
	Year        int       `json:"year"`
	Value       float64   `json:"value"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per observation in a single WriteMessages call.
// Keys are "ISO3:year" so a country's history lands on one partition.
func (w *Writer) Publish(ctx context.Context, table domain.Table) error {
	if table.Empty() {
		return nil
	}
	msgs := make([]kafkago.Message, len(table.Observations))
	for i := range table.Observations {
		msg, err := serializeToMessage(table, table.Observations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	w.logger.Info("snapshot published",
		"topic", w.writer.Topic,
		"indicator", table.Indicator.ID,
		"messages", len(msgs),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies an observation within an indicator's snapshot.
func messageKey(o domain.Observation) string {
	return fmt.Sprintf("%s:%d", o.CountryCode, o.Year)
}

// serializeToMessage marshals one observation, stamped with its table's
// metadata, into a Kafka message.
func serializeToMessage(table domain.Table, o domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(snapshotRecord{
		Indicator:   table.Indicator.ID,
		Source:      table.Source,
		CountryCode: o.CountryCode,
		CountryName: o.CountryName,
		Year:        o.Year,
		Value:       o.Value,
		FetchedAt:   table.FetchedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation %s: %w", messageKey(o), err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(o)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "indicator", Value: []byte(table.Indicator.ID)},
			{Key: "fetched_at", Value: []byte(table.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
