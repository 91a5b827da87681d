// internal/adapter/events/subscriber.go

package events

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// SubscribeConn is the part of *nats.Conn the subscriber needs
type SubscribeConn interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

var _ SubscribeConn = (*nats.Conn)(nil)

// Subscriber delivers the raw events of one session to a callback
type Subscriber struct {
	conn   SubscribeConn
	prefix string
}

// NewSubscriber creates a new subscriber
func NewSubscriber(conn SubscribeConn, prefix string) *Subscriber {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Subscriber{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
	}
}

// SubscribeSession calls handler with every event published for sessionID
// until the returned function is called
func (s *Subscriber) SubscribeSession(sessionID string, handler func(data []byte)) (func(), error) {
	subject := SessionWildcard(s.prefix, sessionID)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	return func() {
		if sub != nil {
			sub.Unsubscribe()
		}
	}, nil
}
