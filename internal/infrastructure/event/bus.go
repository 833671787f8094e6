package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/mobilia/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus runs handlers synchronously in the publishing goroutine.
// Handler errors and panics are logged and never reach the service that
// committed the change.
type InMemoryEventBus struct {
	mu      sync.RWMutex
	byType  map[string][]shared.EventHandler
	anyType []shared.EventHandler
	stopped bool
	logger  *zap.Logger
}

// NewInMemoryEventBus creates a bus that dispatches immediately
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

// Subscribe registers handler for eventTypes, falling back to the handler's
// own EventTypes. No types at all means every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.anyType = append(b.anyType, handler)
		return
	}
	for _, eventType := range eventTypes {
		b.byType[eventType] = append(b.byType[eventType], handler)
	}
}

// Publish hands each event to its typed handlers, then to the catch-all ones
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		handlers, ok := b.handlersFor(event.EventType())
		if !ok {
			b.logger.Debug("Event bus stopped, dropping event", zap.String("event_type", event.EventType()))
			continue
		}
		for _, handler := range handlers {
			if err := dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Stop makes every later Publish a no-op. Safe to call more than once.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.stopped {
		b.stopped = true
		b.logger.Info("Event bus stopped")
	}
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) ([]shared.EventHandler, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return nil, false
	}
	typed := b.byType[eventType]
	handlers := make([]shared.EventHandler, 0, len(typed)+len(b.anyType))
	handlers = append(handlers, typed...)
	return append(handlers, b.anyType...), true
}

func dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
