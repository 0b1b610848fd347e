package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"example.com/litterbox/internal/events"
)

type visitWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
}

type schemaRegistry interface {
	EnsureVisitSchema(context.Context) (int, error)
}

// Publisher frames visit events and writes them to Kafka.
type Publisher struct {
	producer visitWriter
	registry schemaRegistry
	logger   *log.Logger

	schemaID int
}

// PublisherOption configures optional behaviour for the Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger overrides the logger.
func WithPublisherLogger(logger *log.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// NewPublisher constructs a Publisher.
func NewPublisher(producer visitWriter, registry schemaRegistry, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		producer: producer,
		registry: registry,
		logger:   log.New(log.Writer(), "[simulator] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes the batch to the visits topic keyed by device ID. The
// schema is registered once and its ID reused for every message.
func (p *Publisher) Publish(ctx context.Context, visits []events.VisitRecorded) error {
	if len(visits) == 0 {
		return nil
	}

	if p.schemaID == 0 {
		id, err := p.registry.EnsureVisitSchema(ctx)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		p.schemaID = id
	}

	messages := make([]kafka.Message, 0, len(visits))
	for _, visit := range visits {
		payload, err := json.Marshal(visit)
		if err != nil {
			return fmt.Errorf("marshal visit %s: %w", visit.EventID, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(visit.DeviceID),
			Value: events.EncodeWireFormat(p.schemaID, payload),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(events.TypeVisitRecorded)},
				{Key: "device_id", Value: []byte(visit.DeviceID)},
				{Key: "schema_subject", Value: []byte(events.SubjectVisits)},
			},
		})
	}

	if err := p.producer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	p.logger.Printf("published %d visits to %s", len(messages), events.TopicVisits)
	return nil
}
