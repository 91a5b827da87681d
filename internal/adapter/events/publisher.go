// internal/adapter/events/publisher.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gathering/internal/domain/plan"
)

// DefaultPrefix is the subject prefix used when none is configured
const DefaultPrefix = "gathering.sessions"

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// envelope is the wire format of a published event
type envelope struct {
	SessionID  string      `json:"session_id"`
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher publishes session events to NATS
type Publisher struct {
	conn   Conn
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewPublisher creates a new publisher. A nil conn yields a publisher that
// drops every event, for running without a message bus.
func NewPublisher(conn Conn, prefix string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
		logger: logger,
		now:    time.Now,
	}
}

// Subject returns the subject events of the given type are published on
func Subject(prefix, sessionID, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, sessionID, eventType)
}

// SessionWildcard returns the subject matching every event of a session
func SessionWildcard(prefix, sessionID string) string {
	return fmt.Sprintf("%s.%s.>", prefix, sessionID)
}

// Prefix returns the subject prefix
func (p *Publisher) Prefix() string {
	return p.prefix
}

// Publish serializes event and publishes it on its session subject
func (p *Publisher) Publish(ctx context.Context, event plan.Event) error {
	if p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(envelope{
		SessionID:  event.SessionID,
		Type:       event.Type,
		Payload:    event.Payload,
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	subject := Subject(p.prefix, event.SessionID, event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("event published",
		zap.String("subject", subject),
		zap.Int("bytes", len(data)),
	)
	return nil
}
