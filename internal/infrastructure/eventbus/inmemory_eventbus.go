package eventbus

import (
	"context"
	"errors"
	"sync"
)

const inMemoryBufferSize = 256

// InMemoryBus implements Bus for single-process deployments and tests.
// Delivery is asynchronous through a buffered channel; when the buffer is
// full, Publish drops the event rather than blocking the producer.
type InMemoryBus struct {
	events     chan Envelope
	handlers   []Handler
	handlersMu sync.RWMutex
	running    bool
	runningMu  sync.RWMutex
	shutdown   chan struct{}
	wg         sync.WaitGroup
}

// NewInMemoryBus creates an in-memory event bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		events:   make(chan Envelope, inMemoryBufferSize),
		shutdown: make(chan struct{}),
	}
}

// Publish queues the envelope for delivery.
func (b *InMemoryBus) Publish(_ context.Context, env Envelope) error {
	if env.RoomID.IsZero() {
		return errors.New("envelope room id cannot be empty")
	}

	select {
	case b.events <- env:
		return nil
	default:
		return errors.New("event buffer full")
	}
}

// Subscribe registers a handler for all delivered envelopes.
func (b *InMemoryBus) Subscribe(handler Handler) {
	if handler == nil {
		return
	}

	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Start blocks delivering queued envelopes until the context is cancelled
// or Shutdown is called.
func (b *InMemoryBus) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("event bus is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-b.shutdown:
			return nil

		case env := <-b.events:
			b.handlersMu.RLock()
			handlers := make([]Handler, len(b.handlers))
			copy(handlers, b.handlers)
			b.handlersMu.RUnlock()

			for _, handler := range handlers {
				b.wg.Add(1)
				go func(h Handler) {
					defer b.wg.Done()
					h(ctx, env)
				}(handler)
			}
		}
	}
}

// Shutdown stops delivery and waits for in-flight handlers.
func (b *InMemoryBus) Shutdown() error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	close(b.shutdown)
	b.wg.Wait()
	return nil
}

var _ Bus = (*InMemoryBus)(nil)
