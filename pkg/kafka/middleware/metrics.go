package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/pkg/kafka"
)

// Metrics counts publish and consume outcomes. The zero value is ready to use.
type Metrics struct {
	MessagesPublished       atomic.Int64
	MessagesPublishedFailed atomic.Int64
	PublishDurationTotal    atomic.Int64

	MessagesConsumed       atomic.Int64
	MessagesConsumedFailed atomic.Int64
	ConsumeDurationTotal   atomic.Int64
}

func (m *Metrics) Reset() {
	m.MessagesPublished.Store(0)
	m.MessagesPublishedFailed.Store(0)
	m.PublishDurationTotal.Store(0)
	m.MessagesConsumed.Store(0)
	m.MessagesConsumedFailed.Store(0)
	m.ConsumeDurationTotal.Store(0)
}

func (m *Metrics) AvgPublishDuration() time.Duration {
	n := m.MessagesPublished.Load() + m.MessagesPublishedFailed.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.PublishDurationTotal.Load() / n)
}

func (m *Metrics) AvgConsumeDuration() time.Duration {
	n := m.MessagesConsumed.Load() + m.MessagesConsumedFailed.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.ConsumeDurationTotal.Load() / n)
}

// LogAttrs returns the counters as slog key/value pairs.
func (m *Metrics) LogAttrs() []any {
	return []any{
		"published", m.MessagesPublished.Load(),
		"published_failed", m.MessagesPublishedFailed.Load(),
		"avg_publish_ms", m.AvgPublishDuration().Milliseconds(),
		"consumed", m.MessagesConsumed.Load(),
		"consumed_failed", m.MessagesConsumedFailed.Load(),
		"avg_consume_ms", m.AvgConsumeDuration().Milliseconds(),
	}
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.PublishDurationTotal.Add(int64(time.Since(start)))

		if err != nil {
			m.MessagesPublishedFailed.Add(1)
		} else {
			m.MessagesPublished.Add(1)
		}

		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ConsumeDurationTotal.Add(int64(time.Since(start)))

		if err != nil {
			m.MessagesConsumedFailed.Add(1)
		} else {
			m.MessagesConsumed.Add(1)
		}

		return err
	}
}
