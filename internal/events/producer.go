package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// VisitWriter publishes framed visit events to the visits topic. Messages
// are keyed by device ID and hash-balanced, so every device's visits land on
// one partition and stay in enter-time order.
type VisitWriter struct {
	writer *kafka.Writer
}

// NewVisitWriter constructs a writer pinned to TopicVisits.
func NewVisitWriter(brokers []string) *VisitWriter {
	return &VisitWriter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicVisits,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// WriteMessages writes a batch of pre-framed visit messages.
func (w *VisitWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return w.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and releases the underlying writer.
func (w *VisitWriter) Close() error {
	return w.writer.Close()
}
