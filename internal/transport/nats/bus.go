package nats

import "github.com/nats-io/nats.go"

// Bus publishes domain events to NATS subjects. Notification workers
// subscribe with a queue group so each event is handled once.
type Bus struct {
	nc *nats.Conn
}

func NewBus(nc *nats.Conn) *Bus {
	return &Bus{nc: nc}
}

func (b *Bus) Publish(topic string, data []byte) error {
	return b.nc.Publish(topic, data)
}
