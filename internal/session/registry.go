package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type entry struct {
	session    *Session
	lastActive time.Time
	busy       int
}

// Registry gives every chat its own isolated Session.
type Registry struct {
	mu       sync.Mutex
	defaults Settings
	now      func() time.Time
	sessions map[int64]*entry
}

func NewRegistry(defaults Settings) *Registry {
	return &Registry{
		defaults: defaults,
		now:      time.Now,
		sessions: make(map[int64]*entry),
	}
}

// Get returns the session of chatID, creating it on first use, and marks it
// active.
func (r *Registry) Get(chatID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touch(chatID).session
}

// Begin returns the session of chatID for the duration of a turn. The
// session is not evicted until done is called, and done marks it active
// again.
func (r *Registry) Begin(chatID int64) (*Session, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.touch(chatID)
	e.busy++
	return e.session, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		e.busy--
		e.lastActive = r.now()
	}
}

func (r *Registry) touch(chatID int64) *entry {
	e, ok := r.sessions[chatID]
	if !ok {
		e = &entry{session: New(r.defaults)}
		r.sessions[chatID] = e
		log.Debug().Int64("chat_id", chatID).Str("session", e.session.ID).Msg("session created")
	}
	e.lastActive = r.now()
	return e
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions inactive for longer than ttl and returns how many
// were removed. Sessions with a turn in progress are kept.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	n := 0
	for id, e := range r.sessions {
		if e.busy == 0 && e.lastActive.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
