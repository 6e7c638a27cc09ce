package events

import (
	"context"
	"time"
)

// EventType identifies the type of event
type EventType string

const (
	// StateChanged carries a new snapshot of the shared status slot.
	StateChanged EventType = "state.changed"
	// SessionCommitted fires after a new session handle has been committed.
	SessionCommitted EventType = "session.committed"
	// MessageAppended fires after the conversation log has grown.
	MessageAppended EventType = "message.appended"
)

// Event is a typed notification delivered to subscribers
type Event[T any] struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes events
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// Subscriber subscribes to events until ctx is done
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, filters ...Filter[T]) <-chan Event[T]
}

// Filter decides whether a subscriber receives an event
type Filter[T any] func(Event[T]) bool

// OfType accepts events of the given types
func OfType[T any](types ...EventType) Filter[T] {
	return func(e Event[T]) bool {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
		return false
	}
}
