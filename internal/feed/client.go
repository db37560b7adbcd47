package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size; bulk auction lists can be large
	maxMessageSize = 1 << 20
)

// Client maintains one websocket connection to the auction server and
// exposes inbound notifications as a typed event stream. The stream is
// the single entry point for server state; nothing else reads the
// connection.
type Client struct {
	conn   *websocket.Conn
	events chan Event
	send   chan Envelope
	log    zerolog.Logger
}

// Dial connects to the push channel at url
func Dial(ctx context.Context, url string, header http.Header, log zerolog.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial feed %s: %w", url, err)
	}
	return &Client{
		conn:   conn,
		events: make(chan Event, 256),
		send:   make(chan Envelope, 64),
		log:    log,
	}, nil
}

// Events returns the inbound notification stream. The channel is
// closed when the connection goes away or the run context ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Emit queues an outbound event for the server. It fails rather than
// blocks when the write queue is full.
func (c *Client) Emit(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	select {
	case c.send <- Envelope{Type: event, Payload: body}:
		return nil
	default:
		return fmt.Errorf("emit %s: send queue full", event)
	}
}

// Run drives the read and write pumps until the context is cancelled
// or the connection fails.
func (c *Client) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		c.readPump()
		close(done)
	}()
	c.writePump(ctx, done)
	c.conn.Close()
	<-done
}

func (c *Client) readPump() {
	defer close(c.events)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Error().Err(err).Msg("feed read failed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed feed frame")
			continue
		}
		c.events <- Event{Kind: EventKind(env.Type), Payload: env.Payload}
	}
}

func (c *Client) writePump(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-done:
			return
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Error().Err(err).Str("event", env.Type).Msg("feed write failed")
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
