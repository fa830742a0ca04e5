package service

import (
	"io"
	"log/slog"

	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// recordingBus captures published topics so tests can assert on the event
// flow without a broker.
type recordingBus struct {
	topics   []string
	payloads [][]byte
}

func (b *recordingBus) Publish(topic string, data []byte) error {
	b.topics = append(b.topics, topic)
	b.payloads = append(b.payloads, data)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ repository.MessageBus = (*recordingBus)(nil)
