package relay

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"realtime-presence/internal/feed"
	"realtime-presence/internal/protocol"
	"realtime-presence/internal/session"
)

// ErrHubStopped is returned by Attach once Run has returned.
var ErrHubStopped = errors.New("hub stopped")

type frame struct {
	client *Client
	data   []byte
}

// Hub is the event loop. Registry and feed are mutated only from Run, one
// event at a time, so a mutation and the broadcast it causes are atomic with
// respect to every other connection.
type Hub struct {
	registry *session.Registry
	feed     *feed.Feed
	clients  *Broadcaster

	register   chan *Client
	unregister chan *Client
	inbound    chan frame
	done       chan struct{}

	connected atomic.Int64

	logger       zerolog.Logger
	sendBuffer   int
	readLimit    int64
	writeTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

// Stats is a point-in-time view of hub state.
type Stats struct {
	Connections  int `json:"connections"`
	Participants int `json:"participants"`
	Photos       int `json:"photos"`
}

// NewHub builds a hub around the given state. Call Run before Attach.
func NewHub(registry *session.Registry, photos *feed.Feed, opts ...Option) *Hub {
	h := defaultHub()
	for _, opt := range opts {
		opt(h)
	}
	h.registry = registry
	h.feed = photos
	h.clients = NewBroadcaster(h.logger)
	h.register = make(chan *Client)
	h.unregister = make(chan *Client)
	h.inbound = make(chan frame)
	h.done = make(chan struct{})
	return h
}

// Run processes events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	defer h.clients.CloseAll()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Int("connections", h.clients.Len()).Msg("hub stopping")
			return nil

		case c := <-h.register:
			h.open(c)

		case c := <-h.unregister:
			h.close(c)

		case f := <-h.inbound:
			h.handle(f.client, f.data)
		}
	}
}

// Attach takes over conn: it assigns a participant id, queues the initial
// photo and participant snapshots, and starts the pumps.
func (h *Hub) Attach(conn Conn) (*Client, error) {
	conn.SetReadLimit(h.readLimit)

	c := &Client{
		id:    h.newID(),
		conn:  conn,
		send:  make(chan []byte, h.sendBuffer),
		hub:   h,
		state: StateConnecting,
	}
	c.logger = h.logger.With().Str("client_id", c.id).Logger()

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return nil, ErrHubStopped
	}

	go c.read()
	go c.write()
	return c, nil
}

// Stats is safe to call from any goroutine.
func (h *Hub) Stats() Stats {
	return Stats{
		Connections:  int(h.connected.Load()),
		Participants: h.registry.Len(),
		Photos:       h.feed.Len(),
	}
}

// deliver hands a frame to the loop. It reports false once the hub is gone.
func (h *Hub) deliver(c *Client, data []byte) bool {
	select {
	case h.inbound <- frame{client: c, data: data}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) open(c *Client) {
	h.clients.Add(c)
	h.connected.Add(1)
	c.logger.Info().Msg("new connection")

	h.sendTo(c, protocol.NewInitPhotos(h.feed.Snapshot()))
	h.sendTo(c, protocol.NewExistingUsers(h.registry.All()))
}

// close runs on transport close or error. The registry entry goes first so
// nothing broadcast afterwards can refer to a participant that has left.
func (h *Hub) close(c *Client) {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	h.clients.Remove(c)
	h.connected.Add(-1)

	p, ok := h.registry.Remove(c.id)
	if !ok {
		c.logger.Info().Msg("connection closed")
		return
	}
	c.logger.Info().Str("name", p.Name).Msg("user left")
	h.broadcast(protocol.NewUserLeft(c.id))
}
