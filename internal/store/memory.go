package store

import (
	"context"
	"sync"

	"flashq/internal/model"
)

// MemoryStore keeps sessions in process memory. Used by tests and by
// "flashq server --redis ''".
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
	queue    chan model.Delivery
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
		queue:    make(chan model.Delivery, 256),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.sessions[sessionID][key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.sessions[sessionID]
	if !ok {
		values = make(map[string]string)
		s.sessions[sessionID] = values
	}
	values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions[sessionID], key)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, sessionID, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID][key]
	return ok, nil
}

func (s *MemoryStore) Push(ctx context.Context, d model.Delivery) error {
	select {
	case s.queue <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemoryStore) PopQueue(ctx context.Context) (*model.Delivery, error) {
	select {
	case d := <-s.queue:
		return &d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
