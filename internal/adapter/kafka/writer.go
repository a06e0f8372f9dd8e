package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
)

// maxBatch caps how many messages go into one WriteMessages call.
const maxBatch = 1000

// StrikeRecord is the JSON value of a published message.
type StrikeRecord struct {
	ID          string    `json:"id"`
	Year        int       `json:"year"`
	Hour        int       `json:"hour"`
	Month       string    `json:"month"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Line        int       `json:"line"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Writer publishes normalized strikes to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish writes one message per strike, keyed by its StrikeID so that
// re-runs land on the same partition and can be compacted.
func (w *Writer) Publish(ctx context.Context, year int, strikes []domain.Strike) error {
	if len(strikes) == 0 {
		return nil
	}
	processedAt := domain.Now()

	for start := 0; start < len(strikes); start += maxBatch {
		end := min(start+maxBatch, len(strikes))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, s := range strikes[start:end] {
			msg, err := serializeToMessage(year, s, processedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write strikes for %d: %w", year, err)
		}
		if w.metrics != nil {
			w.metrics.RecordsPublished.Add(float64(len(msgs)))
		}
	}

	w.logger.Info("strikes published", "year", year, "count", len(strikes), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a strike into a Kafka message.
func serializeToMessage(year int, s domain.Strike, processedAt time.Time) (kafkago.Message, error) {
	rec := StrikeRecord{
		ID:          domain.StrikeID(year, s),
		Year:        year,
		Hour:        s.Hour,
		Month:       s.Month,
		Lat:         s.Lat,
		Lon:         s.Lon,
		Line:        s.Line,
		ProcessedAt: processedAt,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize strike: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(year))},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
