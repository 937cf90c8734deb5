package relay

import (
	"realtime-presence/internal/feed"
	"realtime-presence/internal/protocol"
	"realtime-presence/internal/session"
)

// handle applies one inbound frame from c. Bad frames are logged and dropped;
// the sender is never told. Frames still in flight from a dropped client are
// ignored.
func (h *Hub) handle(c *Client, data []byte) {
	if c.state == StateClosed || !h.clients.Has(c) {
		return
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed frame")
		return
	}

	switch m := msg.(type) {
	case protocol.UserJoin:
		h.join(c, m)
	case protocol.PageChange:
		h.changePage(c, m)
	case protocol.PhotoUpload:
		h.uploadPhoto(c, m)
	case protocol.ResetApp:
		h.reset(c)
	}
}

// join overwrites any earlier record for the connection and re-announces it.
func (h *Hub) join(c *Client, m protocol.UserJoin) {
	p := session.Participant{
		ID:      c.id,
		Name:    m.Name,
		Avatar:  m.Avatar,
		IsAdmin: m.IsAdmin,
		Page:    m.Page,
	}
	h.registry.Put(c.id, p)
	c.state = StateJoined

	c.logger.Info().Str("name", p.Name).Bool("admin", p.IsAdmin).Msg("user joined")
	h.broadcast(protocol.NewUserJoined(p))
}

func (h *Hub) changePage(c *Client, m protocol.PageChange) {
	if c.state != StateJoined || !h.registry.UpdatePage(c.id, m.Page) {
		return
	}
	h.broadcast(protocol.NewUserPageUpdate(c.id, m.Page))
}

// uploadPhoto doesn't require a prior join.
func (h *Hub) uploadPhoto(c *Client, m protocol.PhotoUpload) {
	photo := feed.Photo{
		ID:        h.newID(),
		URL:       m.URL,
		Caption:   m.Caption,
		Timestamp: feed.FormatTimestamp(h.now()),
	}
	h.feed.Append(photo)

	c.logger.Info().Str("photo_id", photo.ID).Str("caption", photo.Caption).Msg("new photo")
	h.broadcast(protocol.NewNewPhoto(photo))
}

// reset is honoured only for a registered admin. Every connection drops back
// to connecting and must join again.
func (h *Hub) reset(c *Client) {
	if c.state != StateJoined {
		return
	}
	p, ok := h.registry.Get(c.id)
	if !ok || !p.IsAdmin {
		return
	}

	h.registry.Clear()
	h.feed.Clear()
	h.clients.Each(func(other *Client) {
		other.state = StateConnecting
	})

	c.logger.Info().Str("name", p.Name).Msg("app reset by admin")
	h.broadcast(protocol.NewAppReset())
}

func (h *Hub) broadcast(msg protocol.Outbound) {
	if err := h.clients.Broadcast(msg); err != nil {
		h.logEncodeError(err, msg)
	}
}

func (h *Hub) sendTo(c *Client, msg protocol.Outbound) {
	if err := h.clients.Send(c, msg); err != nil {
		h.logEncodeError(err, msg)
	}
}

func (h *Hub) logEncodeError(err error, msg protocol.Outbound) {
	h.logger.Error().Err(err).Str("type", string(msg.MessageType())).Msg("failed to encode frame")
}
