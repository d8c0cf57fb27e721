package broker

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

// Publisher emits note lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, actorID string, data interface{}) error
	Close()
}

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn    natsConn
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to cfg.NATSURL, or returns a NoopPublisher when no
// URL is configured.
func NewPublisher(cfg config.Config, logger *zap.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set, note events are disabled")
		return NoopPublisher{}, nil
	}
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("stoic-notes"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
	}
	logger.Info("NATS publisher initialized", zap.String("subject", subjectOrDefault(cfg.EventsSubject)))
	return newNATSPublisher(nc, cfg.EventsSubject, logger), nil
}

func newNATSPublisher(conn natsConn, subject string, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subjectOrDefault(subject), logger: logger}
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return NoteEventsSubject
	}
	return subject
}

func (p *NATSPublisher) Publish(ctx context.Context, eventType EventType, actorID string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event, err := models.NewEvent(string(eventType), noteEntity, eventType.Operation(), actorID, data)
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	p.logger.Debug("Published event", zap.String("subject", p.subject), zap.String("event", string(eventType)), zap.String("eventId", event.ID.String()))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, EventType, string, interface{}) error { return nil }
func (NoopPublisher) Close()                                                        {}
