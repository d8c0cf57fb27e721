package broker

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"stoic-notes/notes/models"
)

type Message struct {
	Subject string
	Data    []byte
}

// Handler receives each decoded event. A handler error is logged and the
// consumer moves on.
type Handler func(ctx context.Context, msg Message, event models.Event) error

// Subscribe delivers events published on subject to handler until ctx is done.
func Subscribe(ctx context.Context, url, subject string, logger *zap.Logger, handler Handler) error {
	nc, err := nats.Connect(url, nats.Name("stoic-notes-consumer"))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	messages := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(subjectOrDefault(subject), messages)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	logger.Info("NATS consumer started", zap.String("subject", sub.Subject))
	Consume(ctx, messages, logger, handler)
	return nil
}

// Consume drains messages until ctx is done or the channel is closed.
func Consume(ctx context.Context, messages <-chan *nats.Msg, logger *zap.Logger, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			m := Message{Subject: msg.Subject, Data: msg.Data}

			var event models.Event
			if err := event.FromJSON(m.Data); err != nil {
				logger.Warn("Skipping malformed event", zap.String("subject", m.Subject), zap.Error(err))
				continue
			}
			if err := handler(ctx, m, event); err != nil {
				logger.Error("Event handler failed", zap.String("event", event.Event), zap.Error(err))
			}
		}
	}
}
