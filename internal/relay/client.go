package relay

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn is the subset of *websocket.Conn the relay relies on.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// State is a connection's position in the join lifecycle.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is one participant connection. The read pump feeds the hub, the
// write pump drains send back to the socket so a slow browser can't stall
// anybody else.
type Client struct {
	id     string
	conn   Conn
	send   chan []byte
	hub    *Hub
	logger zerolog.Logger

	// state is only touched by the hub goroutine.
	state State
}

// ID is the participant id assigned to this connection.
func (c *Client) ID() string { return c.id }

func (c *Client) read() {
	defer c.hub.leave(c)

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.logger.Warn().Err(err).Msg("connection error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn().Int("message_type", messageType).Msg("dropping non-text frame")
			continue
		}
		if !c.hub.deliver(c, message) {
			return
		}
	}
}

func (c *Client) write() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeFrame(websocket.TextMessage, message); err != nil {
			c.logger.Debug().Err(err).Msg("write failed")
			return
		}
	}
	_ = c.writeFrame(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Client) writeFrame(messageType int, data []byte) error {
	if c.hub.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(messageType, data)
}
