package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is a change-feed subscriber used by tools and tests.
type Client struct {
	conn     *websocket.Conn
	messages chan ServerMessage
	writeMu  sync.Mutex
	done     chan struct{}
	once     sync.Once
}

// Dial connects to a /ws endpoint. wsURL may use http(s) or ws(s).
func Dial(ctx context.Context, wsURL, token string, dialer *websocket.Dialer) (*Client, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	c := &Client{
		conn:     conn,
		messages: make(chan ServerMessage, sendBuffer),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}

// Messages is closed when the connection ends.
func (c *Client) Messages() <-chan ServerMessage {
	return c.messages
}

func (c *Client) Subscribe(topic string) error {
	return c.write(ClientMessage{Type: ActionSubscribe, Topic: topic})
}

func (c *Client) Unsubscribe(topic string) error {
	return c.write(ClientMessage{Type: ActionUnsubscribe, Topic: topic})
}

func (c *Client) write(msg ClientMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
