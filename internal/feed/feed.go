// Package feed holds the bounded, insertion-ordered buffer of shared photos.
package feed

import (
	"sync"
	"time"
)

// Capacity is the number of photos retained. Older photos are evicted first.
const Capacity = 50

// TimestampLayout renders photo timestamps as UTC ISO-8601 with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Photo is a shared image reference.
type Photo struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Caption   string `json:"caption"`
	Timestamp string `json:"timestamp"`
}

// FormatTimestamp formats t the way photo timestamps are transmitted.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Feed is a FIFO buffer capped at Capacity.
type Feed struct {
	mu     sync.RWMutex
	photos []Photo
}

func New() *Feed {
	return &Feed{
		photos: make([]Photo, 0, Capacity),
	}
}

// Append adds p to the tail, evicting from the head once over Capacity.
func (f *Feed) Append(p Photo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.photos = append(f.photos, p)
	if over := len(f.photos) - Capacity; over > 0 {
		// Shift in place so the backing array doesn't grow without bound.
		n := copy(f.photos, f.photos[over:])
		clear(f.photos[n:])
		f.photos = f.photos[:n]
	}
}

// Snapshot returns a copy of the feed, oldest first.
func (f *Feed) Snapshot() []Photo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Photo, len(f.photos))
	copy(out, f.photos)
	return out
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.photos)
	f.photos = f.photos[:0]
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.photos)
}
