package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSWorker feeds the dispatcher from NATS subscriptions. Each topic uses a
// queue group so that with several API replicas every event is handled once.
type NATSWorker struct {
	dispatcher *Dispatcher
	natsConn   *nats.Conn
	logger     *slog.Logger
}

func NewNATSWorker(d *Dispatcher, nc *nats.Conn, logger *slog.Logger) *NATSWorker {
	return &NATSWorker{dispatcher: d, natsConn: nc, logger: logger}
}

// Run subscribes to every dispatcher topic and blocks until ctx is cancelled.
func (w *NATSWorker) Run(ctx context.Context) error {
	subs := make([]*nats.Subscription, 0, len(Topics()))
	for _, topic := range Topics() {
		topic := topic
		sub, err := w.natsConn.QueueSubscribe(topic, "notification_workers", func(m *nats.Msg) {
			if err := w.dispatcher.HandleEvent(ctx, topic, m.Data); err != nil {
				w.logger.Error("worker: event handling failed", "topic", topic, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("worker: subscribe %s: %w", topic, err)
		}
		subs = append(subs, sub)
	}

	w.logger.Info("notification worker is running", "transport", "nats", "topics", len(subs))

	<-ctx.Done()

	w.logger.Info("worker received shutdown signal, draining subscriptions")
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			w.logger.Error("worker: drain subscription", "error", err)
		}
	}
	return nil
}

// Start implements the infrastructure.Server interface.
func (w *NATSWorker) Start(ctx context.Context) error {
	return w.Run(ctx)
}

// Stop implements the infrastructure.Server interface; shutdown is via ctx.
func (w *NATSWorker) Stop(context.Context) error {
	return nil
}
