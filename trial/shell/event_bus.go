package shell

import (
	"context"
	"sync"

	"github.com/clinforge/trialcore/trial/core"
)

const logMsgSubscriberFailed = "event subscriber failed"

// EventPublisher fans appended events out to interested parties after they
// have been durably stored. Publishing is best effort: the events are already
// committed, so subscriber failures must never fail the command.
type EventPublisher interface {
	Publish(ctx context.Context, events core.DomainEvents)
}

// EventSubscriber handles a single published event. Returned errors are
// logged, not propagated.
type EventSubscriber func(ctx context.Context, event core.DomainEvent) error

// InProcessEventBus is a synchronous, in-process EventPublisher.
//
// Subscribers run on the publisher's goroutine in subscription order. This
// keeps coordinator reactions deterministic in tests and in the simulation
// binary; a broker-backed implementation can replace it without touching the
// command processors.
type InProcessEventBus struct {
	mu               sync.RWMutex
	subscribers      []EventSubscriber
	logger           Logger
	contextualLogger ContextualLogger
}

// BusOption configures an InProcessEventBus.
type BusOption func(*InProcessEventBus)

// WithBusLogger attaches a logger for subscriber failures.
func WithBusLogger(logger Logger) BusOption {
	return func(b *InProcessEventBus) {
		b.logger = logger
	}
}

// WithBusContextualLogger attaches a context-aware logger for subscriber failures.
func WithBusContextualLogger(logger ContextualLogger) BusOption {
	return func(b *InProcessEventBus) {
		b.contextualLogger = logger
	}
}

// NewInProcessEventBus creates an empty event bus.
func NewInProcessEventBus(options ...BusOption) *InProcessEventBus {
	bus := &InProcessEventBus{}

	for _, option := range options {
		option(bus)
	}

	return bus
}

// Subscribe registers a subscriber for all published events.
func (b *InProcessEventBus) Subscribe(subscriber EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, subscriber)
}

// Publish delivers each event to every subscriber. Subscriber errors are
// logged and swallowed.
func (b *InProcessEventBus) Publish(ctx context.Context, events core.DomainEvents) {
	b.mu.RLock()
	subscribers := make([]EventSubscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, event := range events {
		for _, subscriber := range subscribers {
			if err := subscriber(ctx, event); err != nil {
				b.logSubscriberFailure(ctx, event, err)
			}
		}
	}
}

func (b *InProcessEventBus) logSubscriberFailure(ctx context.Context, event core.DomainEvent, err error) {
	if b.contextualLogger != nil {
		b.contextualLogger.ErrorContext(ctx, logMsgSubscriberFailed,
			"event_type", event.IsEventType(), LogAttrAggregateID, event.AffectsAggregateID(), LogAttrError, err.Error())
	} else if b.logger != nil {
		b.logger.Error(logMsgSubscriberFailed,
			"event_type", event.IsEventType(), LogAttrAggregateID, event.AffectsAggregateID(), LogAttrError, err.Error())
	}
}
