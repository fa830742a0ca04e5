package worker

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Xhuk/Habitat-prime/internal/transport/rabbit"
)

// RabbitWorker feeds the dispatcher from a RabbitMQ topic exchange. The
// durable queue gives the same once-per-event semantics the NATS queue group
// provides.
type RabbitWorker struct {
	dispatcher *Dispatcher
	consumer   *rabbit.Consumer
	logger     *slog.Logger
}

func NewRabbitWorker(d *Dispatcher, consumer *rabbit.Consumer, logger *slog.Logger) *RabbitWorker {
	return &RabbitWorker{dispatcher: d, consumer: consumer, logger: logger}
}

// Run consumes deliveries until ctx is cancelled. Handler failures nack with
// requeue so a transient store error does not lose the event.
func (w *RabbitWorker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Deliveries(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("notification worker is running", "transport", "rabbitmq")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker received shutdown signal, closing consumer")
			return w.consumer.Close()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *RabbitWorker) handle(ctx context.Context, d amqp.Delivery) {
	if err := w.dispatcher.HandleEvent(ctx, d.RoutingKey, d.Body); err != nil {
		w.logger.Error("worker: event handling failed", "topic", d.RoutingKey, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Start implements the infrastructure.Server interface.
func (w *RabbitWorker) Start(ctx context.Context) error {
	return w.Run(ctx)
}

// Stop implements the infrastructure.Server interface; shutdown is via ctx.
func (w *RabbitWorker) Stop(context.Context) error {
	return nil
}
