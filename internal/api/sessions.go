package api

import (
	"sync"
	"time"

	"github.com/pagemark/pagemark/internal/outline"
	"github.com/pagemark/pagemark/internal/pdfdoc"
)

// SessionEntry binds one live editing session to its document.
type SessionEntry struct {
	ID      string
	RelPath string
	AbsPath string
	Doc     pdfdoc.Document
	Session *outline.Session
}

// Sessions is a thread-safe registry of live editing sessions with TTL
// eviction. An evicted dirty session loses its unsaved edits, so the TTL
// should comfortably exceed any realistic editing pause.
type Sessions struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*sessionSlot
}

type sessionSlot struct {
	entry    *SessionEntry
	lastUsed time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:     ttl,
		entries: make(map[string]*sessionSlot),
	}
}

func (s *Sessions) Put(entry *SessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = &sessionSlot{entry: entry, lastUsed: time.Now()}
}

// Get returns the session and refreshes its eviction clock.
func (s *Sessions) Get(id string) *SessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.entries[id]
	if slot == nil {
		return nil
	}
	slot.lastUsed = time.Now()
	return slot.entry
}

func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts sessions idle past the TTL.
func (s *Sessions) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, slot := range s.entries {
		if now.Sub(slot.lastUsed) > s.ttl {
			delete(s.entries, id)
		}
	}
}
