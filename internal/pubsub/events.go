// Package pubsub provides a generic publish/subscribe event broker.
// It carries log entries to live subscribers and file-change notifications
// from the watcher to the render loop.
package pubsub

import (
	"context"
	"time"
)

// EventType labels a published event.
type EventType string

const (
	CreatedEvent EventType = "created"
	ChangedEvent EventType = "changed"
	RemovedEvent EventType = "removed"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
