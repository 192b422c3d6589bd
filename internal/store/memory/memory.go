// Package memory provides an in-memory implementation of the gym store used
// for tests and ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/store"
)

// Store keeps records in a map guarded by a mutex.
// It mirrors the SQLite store's contract, including its sentinel errors.
type Store struct {
	mu   sync.RWMutex
	gyms map[string]gym.Gym
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{gyms: make(map[string]gym.Gym)}
}

// Insert adds a new record. Returns store.ErrAlreadyExists if the id is taken.
func (s *Store) Insert(ctx context.Context, g gym.Gym) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("insert gym: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gyms[g.ID]; ok {
		return fmt.Errorf("insert gym %s: %w", g.ID, store.ErrAlreadyExists)
	}
	s.gyms[g.ID] = clone(g)
	return nil
}

// Upsert replaces the record with the same id, or inserts it.
func (s *Store) Upsert(ctx context.Context, g gym.Gym) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("upsert gym: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gyms[g.ID] = clone(g)
	return nil
}

// Delete removes the record; unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gyms, id)
	return nil
}

// Get returns one record or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (gym.Gym, error) {
	if err := ctx.Err(); err != nil {
		return gym.Gym{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gyms[id]
	if !ok {
		return gym.Gym{}, fmt.Errorf("get gym %s: %w", id, store.ErrNotFound)
	}
	return clone(g), nil
}

// ListAll returns every record, most recently created first.
func (s *Store) ListAll(ctx context.Context) ([]gym.Gym, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]gym.Gym, 0, len(s.gyms))
	for _, g := range s.gyms {
		out = append(out, clone(g))
	}
	s.mu.RUnlock()

	gym.SortNewestFirst(out)
	return out, nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gyms), nil
}

// clone copies optional fields so callers cannot mutate stored state.
func clone(g gym.Gym) gym.Gym {
	if g.City != nil {
		g.City = gym.Optional(*g.City)
	}
	if g.Notes != nil {
		g.Notes = gym.Optional(*g.Notes)
	}
	return g
}
