// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionSubscriber delivers the events published for one session
type SessionSubscriber interface {
	SubscribeSession(sessionID string, handler func(data []byte)) (func(), error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sessionClient is one WebSocket connection following a session
type sessionClient struct {
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	sessionID   string
	planner     Planner
	config      WebSocketConfig
	logger      *zap.Logger
	unsubscribe func()
	closeOnce   sync.Once
}

// SessionWebSocketHandler relays a session's events to the browser
func SessionWebSocketHandler(planner Planner, subscriber SessionSubscriber, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if _, err := planner.GetSession(r.Context(), sessionID); err != nil {
			respondWithPlanError(w, logger, err)
			return
		}
		if subscriber == nil {
			respondWithError(w, http.StatusServiceUnavailable, "live updates are not available")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &sessionClient{
			conn:      conn,
			send:      make(chan []byte, 64),
			done:      make(chan struct{}),
			sessionID: sessionID,
			planner:   planner,
			config:    DefaultWebSocketConfig(),
			logger:    logger.With(zap.String("session_id", sessionID)),
		}

		unsubscribe, err := subscriber.SubscribeSession(sessionID, client.enqueue)
		if err != nil {
			client.logger.Error("failed to subscribe to session events", zap.Error(err))
			conn.Close()
			return
		}
		client.unsubscribe = unsubscribe

		go client.writePump()
		go client.readPump()

		client.sendSnapshot()
		client.logger.Info("WebSocket connected")
	}
}

// enqueue queues data for the peer, dropping it when the peer is too slow
func (c *sessionClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("dropping event for slow WebSocket client")
	}
}

// sendSnapshot sends the current session state
func (c *sessionClient) sendSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.WriteWait)
	defer cancel()

	state, err := c.planner.GetSession(ctx, c.sessionID)
	if err != nil {
		c.enqueueJSON(map[string]interface{}{
			"type":  "error",
			"error": err.Error(),
		})
		c.closeConnection()
		return
	}

	c.enqueueJSON(map[string]interface{}{
		"type":       "snapshot",
		"session_id": c.sessionID,
		"state":      state,
		"time":       time.Now(),
	})
}

func (c *sessionClient) enqueueJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal WebSocket message", zap.Error(err))
		return
	}
	c.enqueue(data)
}

// readPump reads control messages from the peer
func (c *sessionClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
		c.processIncomingMessage(message)
	}
}

// processIncomingMessage handles ping and refresh requests
func (c *sessionClient) processIncomingMessage(message []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Debug("ignoring malformed WebSocket message", zap.Error(err))
		return
	}

	switch msg.Type {
	case "ping":
		c.enqueueJSON(map[string]interface{}{"type": "pong", "time": time.Now()})
	case "refresh":
		c.sendSnapshot()
	default:
		c.logger.Debug("unknown WebSocket message type", zap.String("type", msg.Type))
	}
}

// writePump writes queued messages and pings to the peer
func (c *sessionClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes and closes the connection once
func (c *sessionClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		close(c.done)
		c.conn.Close()
		c.logger.Info("WebSocket connection closed")
	})
}
