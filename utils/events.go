package utils

import (
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// Events carries store change notifications to the UI layer. Publishing is
// synchronous: subscribers run before Publish returns.
type Events struct {
	bus    EventBus.Bus
	logger *zap.Logger
}

// NewEvents returns an empty event hub.
func NewEvents(logger *zap.Logger) *Events {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Events{bus: EventBus.New(), logger: logger}
}

// Subscribe registers fn for topic. fn must be a func; its arguments must
// match what the publisher of topic sends.
func (e *Events) Subscribe(topic string, fn interface{}) error {
	return e.bus.Subscribe(topic, fn)
}

// Unsubscribe removes a handler previously registered with Subscribe.
func (e *Events) Unsubscribe(topic string, fn interface{}) error {
	return e.bus.Unsubscribe(topic, fn)
}

// Publish notifies the subscribers of topic. A nil receiver is a no-op.
func (e *Events) Publish(topic string, args ...interface{}) {
	if e == nil {
		return
	}
	if !e.bus.HasCallback(topic) {
		return
	}
	e.logger.Debug("publish", zap.String("topic", topic))
	e.bus.Publish(topic, args...)
}
