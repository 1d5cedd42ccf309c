// Package session keeps short-lived per-visitor state, currently the flash
// notification shown after a redirect.
package session

import (
	"context"
	"sync"
	"time"
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Store interface {
	SetFlash(ctx context.Context, sessionID string, f Flash) error
	// PopFlash returns and removes the pending flash, nil when there is none
	PopFlash(ctx context.Context, sessionID string) (*Flash, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	flashes map[string]memoryEntry
}

type memoryEntry struct {
	flash   Flash
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		flashes: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) SetFlash(_ context.Context, sessionID string, f Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.flashes {
		if now.After(e.expires) {
			delete(s.flashes, id)
		}
	}
	s.flashes[sessionID] = memoryEntry{flash: f, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) PopFlash(_ context.Context, sessionID string) (*Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flashes[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.flashes, sessionID)
	if s.now().After(e.expires) {
		return nil, nil
	}
	f := e.flash
	return &f, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
