package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// EventPublisher emits domain events after the state change they describe
// has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any) error
	Close() error
}
