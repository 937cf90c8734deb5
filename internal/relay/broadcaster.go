package relay

import (
	"github.com/rs/zerolog"

	"realtime-presence/internal/protocol"
)

// Broadcaster fans encoded frames out to every open client. It holds handles
// to clients but not their sockets; closing a client's queue is how it lets
// go of one. It is not safe for concurrent use, the hub goroutine owns it.
type Broadcaster struct {
	clients map[*Client]struct{}
	logger  zerolog.Logger
}

func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Add makes c a fan-out target.
func (b *Broadcaster) Add(c *Client) {
	b.clients[c] = struct{}{}
}

// Remove stops delivering to c and closes its send queue. It reports whether
// c was still a target.
func (b *Broadcaster) Remove(c *Client) bool {
	if _, ok := b.clients[c]; !ok {
		return false
	}
	delete(b.clients, c)
	close(c.send)
	return true
}

// Broadcast encodes msg once and enqueues it for every open client,
// including the one whose action produced it.
func (b *Broadcaster) Broadcast(msg protocol.Outbound) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	for c := range b.clients {
		b.enqueue(c, data)
	}
	return nil
}

// Send delivers msg to c alone.
func (b *Broadcaster) Send(c *Client, msg protocol.Outbound) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if _, ok := b.clients[c]; ok {
		b.enqueue(c, data)
	}
	return nil
}

// Has reports whether c is still a fan-out target.
func (b *Broadcaster) Has(c *Client) bool {
	_, ok := b.clients[c]
	return ok
}

// Each calls fn for every open client.
func (b *Broadcaster) Each(fn func(*Client)) {
	for c := range b.clients {
		fn(c)
	}
}

// Len is the number of open clients.
func (b *Broadcaster) Len() int {
	return len(b.clients)
}

// CloseAll closes every send queue and forgets every client.
func (b *Broadcaster) CloseAll() {
	for c := range b.clients {
		b.Remove(c)
	}
}

// enqueue never blocks. A client whose queue is full is stalled: it is
// dropped and its socket closed, so the read pump fails right away and the
// hub unregisters it.
func (b *Broadcaster) enqueue(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		b.logger.Warn().Str("client_id", c.id).Msg("send queue full, dropping connection")
		b.Remove(c)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}
