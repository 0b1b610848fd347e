// Package consumer ingests visit events published by edge devices. Messages
// that cannot be decoded into a valid visit are committed and dropped so a
// bad payload can never wedge the partition; handler failures leave the
// offset uncommitted for redelivery.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/litterbox/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded visit events.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is a decoded visit event together with its Kafka position. Visit
// has already passed wire-level validation when a Handler sees it.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	EventType string
	SchemaID  int
	Visit     events.VisitRecorded
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls visit messages from Kafka, decodes and validates them,
// and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks processing messages until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		event, decodeErr := decodeVisitMessage(msg)
		if decodeErr != nil {
			p.logger.Printf("dropping undecodable message (partition=%d, offset=%d): %v", msg.Partition, msg.Offset, decodeErr)
			recordDecodeError()
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Printf("commit error after decode failure: %v", commitErr)
			}
			continue
		}

		if handleErr := p.handler.Handle(ctx, event); handleErr != nil {
			p.logger.Printf("handler error (visit=%s, device=%s): %v", event.Visit.EventID, event.Visit.DeviceID, handleErr)
			recordHandlerError(event)
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error: %v", commitErr)
		} else {
			recordProcessed(event)
		}
	}
}

// decodeVisitMessage strips the wire framing, unmarshals the visit, and
// checks the fields the persistence layer relies on. Anything it rejects is
// unrecoverable and will be committed by the caller.
func decodeVisitMessage(msg kafka.Message) (Message, error) {
	eventType, ok := headerValue(msg, "event_type")
	if !ok {
		return Message{}, errors.New("missing event_type header")
	}
	if string(eventType) != events.TypeVisitRecorded {
		return Message{}, fmt.Errorf("unsupported event type: %s", eventType)
	}

	schemaID, payload, err := events.DecodeWireFormat(msg.Value)
	if err != nil {
		return Message{}, fmt.Errorf("decode wire format: %w", err)
	}

	var visit events.VisitRecorded
	if err := json.Unmarshal(payload, &visit); err != nil {
		return Message{}, fmt.Errorf("unmarshal visit payload: %w", err)
	}
	if visit.EventID == "" || visit.DeviceID == "" {
		return Message{}, errors.New("visit missing id or device id")
	}
	if visit.ExitTime.Before(visit.EnterTime) {
		return Message{}, fmt.Errorf("visit %s: exit precedes enter", visit.EventID)
	}

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		EventType: string(eventType),
		SchemaID:  schemaID,
		Visit:     visit,
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
