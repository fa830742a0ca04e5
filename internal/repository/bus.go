package repository

// MessageBus is the publish side of the event pipeline. Services publish
// JSON-encoded domain events to a topic; the notification worker consumes
// them. Implementations exist for NATS, RabbitMQ and an in-process bus.
type MessageBus interface {
	Publish(topic string, data []byte) error
}
