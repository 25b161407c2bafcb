package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	coordinator *Coordinator
	lastSeen    time.Time
}

// Registry keeps one Coordinator per browser session and forgets sessions
// idle for longer than the TTL.
type Registry struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*session
	ttl         time.Duration
	maxSessions int
	factory     func() *Coordinator
	now         func() time.Time
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions caps live sessions. When full, the least recently seen
// session makes room for a new one. Zero means no cap.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// NewRegistry creates a registry that builds coordinators with factory.
func NewRegistry(ttl time.Duration, factory func() *Coordinator, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[uuid.UUID]*session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOr returns the coordinator for id, creating it when missing. created
// tells the caller it still has to run OnInit.
func (r *Registry) GetOr(id uuid.UUID) (c *Coordinator, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now)

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		return s.coordinator, false
	}

	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked()
	}

	s := &session{coordinator: r.factory(), lastSeen: now}
	r.sessions[id] = s
	return s.coordinator, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep forgets idle sessions and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(r.now())
}

func (r *Registry) evictLocked(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) evictOldestLocked() {
	var oldestID uuid.UUID
	var oldest time.Time
	found := false
	for id, s := range r.sessions {
		if !found || s.lastSeen.Before(oldest) {
			oldestID, oldest, found = id, s.lastSeen, true
		}
	}
	if found {
		delete(r.sessions, oldestID)
	}
}
