package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lala-Rental/lala-rental-backend/pkg/kafka"
)

// Producer is the subset of *kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher routes events to a producer by the prefix of their type,
// so "booking.created" goes to the producer registered for "booking".
type KafkaPublisher struct {
	source        string
	routes        map[string]Producer
	correlationID func(ctx context.Context) string
}

func NewKafkaPublisher(source string, correlationID func(ctx context.Context) string) *KafkaPublisher {
	return &KafkaPublisher{
		source:        source,
		routes:        make(map[string]Producer),
		correlationID: correlationID,
	}
}

func (p *KafkaPublisher) Route(prefix string, producer Producer) *KafkaPublisher {
	p.routes[prefix] = producer
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload any) error {
	prefix, _, _ := strings.Cut(eventType, ".")
	producer, ok := p.routes[prefix]
	if !ok {
		return fmt.Errorf("no producer routed for event type %q", eventType)
	}

	builder := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source)
	if p.correlationID != nil {
		builder = builder.WithCorrelationID(p.correlationID(ctx))
	}

	msg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	return producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	var errs []error
	for _, producer := range p.routes {
		if err := producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher drops every event. It is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
