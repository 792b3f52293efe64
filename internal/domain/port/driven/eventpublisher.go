package driven

import "context"

// EventPublisher emits JSON-encoded events to a message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
