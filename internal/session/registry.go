// Package session tracks the participants attached to live connections.
package session

import "sync"

// DefaultPage is the page a participant starts on when the join payload
// doesn't name one.
const DefaultPage = 1

// Participant is a connected member of the shared session.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	IsAdmin bool   `json:"isAdmin"`
	Page    int    `json:"page"`
}

// Registry maps connection ids to participants. Operations on an unknown id
// are no-ops, never errors.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]Participant
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]Participant),
	}
}

// Put inserts or replaces the participant stored under id.
func (r *Registry) Put(id string, p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = id
	r.participants[id] = p
}

// Get returns the participant for id.
func (r *Registry) Get(id string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	return p, ok
}

// UpdatePage moves the participant to page. It reports whether id was present.
func (r *Registry) UpdatePage(id string, page int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return false
	}
	p.Page = page
	r.participants[id] = p
	return true
}

// Remove deletes id and returns the record it held, if any.
func (r *Registry) Remove(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if ok {
		delete(r.participants, id)
	}
	return p, ok
}

// All returns a snapshot of every participant. Order is unspecified.
func (r *Registry) All() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// Clear drops every participant.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.participants)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}
