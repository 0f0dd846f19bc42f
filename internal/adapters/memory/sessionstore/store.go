package sessionstore

import (
	"context"
	"sync"

	"github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/sessionstore"
)

// Store is an in-memory implementation of sessionstore.Store.
// It is safe for concurrent use. Data does not survive a restart, so it is
// only suitable for tests and local development.
type Store struct {
	mu  sync.RWMutex
	rec sessionstore.Record
	set bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (sessionstore.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return sessionstore.Record{}, false, nil
	}
	return sessionstore.CloneRecord(s.rec), true, nil
}

func (s *Store) Save(ctx context.Context, rec sessionstore.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = sessionstore.CloneRecord(rec)
	s.set = true
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = sessionstore.Record{}
	s.set = false
	return nil
}
