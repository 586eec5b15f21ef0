package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 256
)

type connection struct {
	viewer Viewer
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]Topic
}

// Hub fans committed changes out to websocket subscribers. A client
// whose send buffer is full misses the event; it is expected to
// re-fetch on the next one.
type Hub struct {
	mu    sync.RWMutex
	conns map[*connection]struct{}
	jobs  JobLookup
	log   logrus.FieldLogger
}

var _ Publisher = (*Hub)(nil)

func NewHub(jobs JobLookup, log logrus.FieldLogger) *Hub {
	return &Hub{
		conns: make(map[*connection]struct{}),
		jobs:  jobs,
		log:   log,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}

// Connections returns the number of live connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Publish delivers ev once to every connection with a matching topic.
// The event is encoded once; an event that cannot be encoded is dropped
// for everyone.
func (h *Hub) Publish(ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).WithField("table", ev.Table).Error("failed to encode change event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		for name, t := range c.topics {
			if !t.Matches(ev) {
				continue
			}
			data, err := json.Marshal(changeFrame{Type: MessageChange, Topic: name, Event: payload})
			if err != nil {
				continue
			}
			select {
			case c.send <- data:
			default:
				h.log.WithField("user_id", c.viewer.UserID).Warn("realtime client too slow, event dropped")
			}
			break
		}
	}
}

// changeFrame is the wire form of a change ServerMessage with the event
// already encoded.
type changeFrame struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// Serve runs the connection until the peer goes away.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, v Viewer) {
	c := &connection{
		viewer: v,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		topics: make(map[string]Topic),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(ctx, c)
}

func (h *Hub) readPump(ctx context.Context, c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user_id", c.viewer.UserID).Debug("websocket closed")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, ServerMessage{Type: MessageError, Code: "INVALID_JSON", Message: "failed to parse message"})
			continue
		}

		switch msg.Type {
		case ActionSubscribe:
			h.subscribe(ctx, c, msg.Topic)
		case ActionUnsubscribe:
			h.mu.Lock()
			delete(c.topics, msg.Topic)
			h.mu.Unlock()
			h.reply(c, ServerMessage{Type: MessageUnsubscribed, Topic: msg.Topic})
		default:
			h.reply(c, ServerMessage{Type: MessageError, Code: "UNKNOWN_TYPE", Message: "unknown message type: " + msg.Type})
		}
	}
}

func (h *Hub) subscribe(ctx context.Context, c *connection, raw string) {
	t, err := ParseTopic(raw)
	if err != nil {
		h.reply(c, ServerMessage{Type: MessageError, Code: "INVALID_TOPIC", Topic: raw, Message: err.Error()})
		return
	}
	if err := Authorize(ctx, h.jobs, c.viewer, t); err != nil {
		code := "FORBIDDEN"
		if !errors.Is(err, ErrTopicForbidden) {
			code = "INTERNAL_ERROR"
		}
		h.reply(c, ServerMessage{Type: MessageError, Code: code, Topic: raw, Message: err.Error()})
		return
	}

	h.mu.Lock()
	c.topics[t.String()] = t
	h.mu.Unlock()
	h.reply(c, ServerMessage{Type: MessageSubscribed, Topic: t.String()})
}

// reply queues a control message for the write pump.
func (h *Hub) reply(c *connection, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
