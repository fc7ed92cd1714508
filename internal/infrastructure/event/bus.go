package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish once Stop has been called
var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus delivers events to subscribed handlers synchronously, on
// the publishing goroutine. A failing or panicking handler does not stop
// delivery to the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger

	mu       sync.RWMutex
	stopped  bool
	inFlight sync.WaitGroup
}

// NewInMemoryEventBus creates a running bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log.Named("event_bus"),
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Publish delivers each event to its handlers in order. Handler failures are
// logged and do not fail the publisher, whose state change is already
// committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return ErrBusStopped
	}
	b.inFlight.Add(1)
	b.mu.RUnlock()
	defer b.inFlight.Done()

	log := logger.WithTraceContext(ctx, b.logger)
	for _, event := range events {
		for _, handler := range b.registry.HandlersFor(event.EventType()) {
			if err := deliver(ctx, handler, event); err != nil {
				log.Error("event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.String("handler", fmt.Sprintf("%T", handler)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler. Without explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Stop rejects new publishes and waits for in-flight ones to finish or for
// ctx to expire.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop event bus: %w", ctx.Err())
	}
}

func deliver(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}
