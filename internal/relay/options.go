package relay

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// MinSendBuffer holds the INIT_PHOTOS and EXISTING_USERS frames queued
	// on connect.
	MinSendBuffer       = 2
	DefaultSendBuffer   = 256
	DefaultReadLimit    = 16 << 20
	DefaultWriteTimeout = 10 * time.Second
)

// Option configures a Hub.
type Option func(*Hub)

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithSendBuffer sets how many frames may queue for one client before it is
// considered stalled. Values below MinSendBuffer are ignored.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n >= MinSendBuffer {
			h.sendBuffer = n
		}
	}
}

// WithReadLimit caps the size of a single inbound frame.
func WithReadLimit(n int64) Option {
	return func(h *Hub) {
		if n > 0 {
			h.readLimit = n
		}
	}
}

// WithWriteTimeout bounds each socket write. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) { h.writeTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(h *Hub) { h.newID = newID }
}

func defaultHub() *Hub {
	return &Hub{
		logger:       zerolog.Nop(),
		sendBuffer:   DefaultSendBuffer,
		readLimit:    DefaultReadLimit,
		writeTimeout: DefaultWriteTimeout,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}
