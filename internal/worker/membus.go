package worker

import (
	"context"
	"log/slog"
)

// InProcessBus is the MessageBus for single-process deployments: Publish
// hands the event straight to the dispatcher. It keeps the memory provider
// free of external brokers while exercising the same event path.
type InProcessBus struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewInProcessBus(d *Dispatcher, logger *slog.Logger) *InProcessBus {
	return &InProcessBus{dispatcher: d, logger: logger}
}

func (b *InProcessBus) Publish(topic string, data []byte) error {
	if err := b.dispatcher.HandleEvent(context.Background(), topic, data); err != nil {
		b.logger.Error("in-process event handling failed", "topic", topic, "error", err)
	}
	// Delivery failures are the consumer's problem, as with a real broker.
	return nil
}
