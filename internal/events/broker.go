package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const defaultBufferSize = 64

// Broker implements a generic publish-subscribe broker with type safety.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker[T any] struct {
	subs       map[chan Event[T]]subscriber[T]
	mu         sync.RWMutex
	done       chan struct{}
	bufferSize int
	logger     *log.Logger
}

type subscriber[T any] struct {
	id      string
	filters []Filter[T]
	created time.Time
}

// Option configures a Broker
type Option func(*options)

type options struct {
	bufferSize int
	logger     *log.Logger
}

// WithBufferSize sets the per-subscriber channel buffer
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithLogger sets the logger used for dropped events
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewBroker creates a new broker
func NewBroker[T any](opts ...Option) *Broker[T] {
	o := options{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]subscriber[T]),
		done:       make(chan struct{}),
		bufferSize: o.bufferSize,
		logger:     o.logger.WithPrefix("events"),
	}
}

// Publish publishes an event to all subscribers
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	if b.isShutdown() {
		return
	}

	event := Event[T]{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, sub := range b.subs {
		if !accepts(event, sub.filters) {
			continue
		}
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber channel full, dropping event", "subscriber", sub.id, "type", event.Type)
		}
	}
}

// Subscribe creates a new subscription. The channel is closed when ctx is
// done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context, filters ...Filter[T]) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.bufferSize)
	if b.isShutdown() {
		close(ch)
		return ch
	}

	b.subs[ch] = subscriber[T]{
		id:      uuid.NewString(),
		filters: filters,
		created: time.Now(),
	}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()

	return ch
}

func (b *Broker[T]) unsubscribe(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subs[ch]; exists {
		delete(b.subs, ch)
		close(ch)
	}
}

func accepts[T any](event Event[T], filters []Filter[T]) bool {
	for _, filter := range filters {
		if !filter(event) {
			return false
		}
	}
	return true
}

// SubscriberCount returns the number of live subscriptions
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker[T]) isShutdown() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Shutdown closes every subscription. Later publishes are ignored.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isShutdown() {
		return
	}
	close(b.done)

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *Broker[T]) String() string {
	return fmt.Sprintf("Broker[subscribers=%d, shutdown=%v]", b.SubscriberCount(), b.isShutdown())
}
