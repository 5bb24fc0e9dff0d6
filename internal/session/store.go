// Package session persists conversational sessions between turns and
// serializes concurrent turns per user.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

// Store persists one session snapshot per user. Get reports found=false
// for an unknown or expired user, which the engine treats as first
// contact.
type Store interface {
	Get(ctx context.Context, userID string) (dialogue.Session, bool, error)
	Put(ctx context.Context, userID string, sess dialogue.Session) error
	Delete(ctx context.Context, userID string) error
}

type memoryEntry struct {
	sess      dialogue.Session
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation, used when no cache
// URL is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory session store. A zero ttl means
// sessions never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (dialogue.Session, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return dialogue.Session{}, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, userID)
		s.mu.Unlock()
		return dialogue.Session{}, false, nil
	}
	return entry.sess, true, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, sess dialogue.Session) error {
	entry := memoryEntry{sess: sess}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[userID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}
