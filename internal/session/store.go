// Package session holds per-conversation dialogue state. Access is serialized
// per session id: two turns for the same session never interleave, while
// unrelated sessions proceed concurrently.
package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	mu sync.Mutex
	s  *Session
}

// Store is a concurrency-safe keyed session map. Sessions are created on first
// access and only removed by the idle janitor.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

// NewStore creates a store. idleTTL bounds session lifetime; zero disables
// eviction entirely.
func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (st *Store) SetClock(now func() time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}

// GetOrCreate returns a snapshot of the session for id, creating it if absent.
func (st *Store) GetOrCreate(id string) *Session {
	e := st.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.clone()
}

// Update applies mutator to the session for id under its per-id lock and
// returns the resulting snapshot. A mutator error leaves the session as the
// mutator left it; callers treat the session as mutated in place.
func (st *Store) Update(id string, mutator func(*Session) error) (*Session, error) {
	// The clock is resolved before the entry lock; nothing may touch the store
	// lock while holding an entry lock, or a janitor sweep could deadlock.
	now := st.clock()
	e := st.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	err := mutator(e.s)
	e.s.LastActivityAt = now()
	return e.s.clone(), err
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

func (st *Store) entryFor(id string) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[id]
	if !ok {
		now := st.now()
		e = &entry{s: &Session{ID: id, CreatedAt: now, LastActivityAt: now}}
		st.entries[id] = e
	}
	return e
}

func (st *Store) clock() func() time.Time {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.now
}

// StartJanitor evicts sessions idle longer than the store TTL. Eviction is a
// policy layered on the map rather than part of the turn path.
func (st *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if st.idleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.evictIdle()
			}
		}
	}()
}

func (st *Store) evictIdle() {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := st.now().Add(-st.idleTTL)
	for id, e := range st.entries {
		// A session with a turn in flight is active by definition; never wait
		// on its lock. The next sweep sees the refreshed timestamp.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.s.LastActivityAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(st.entries, id)
		}
	}
}
