package repository

import (
	"context"
	"sync"

	"ivfit-app/internal/domain"
)

// MemoryStore keeps readings in a slice. Append and Clear take the write
// lock; Snapshot takes the read lock and hands out a copy.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []domain.Reading
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = make([]domain.Reading, 0, 64)
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, reading domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, reading)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = s.readings[:0:0]
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) ([]domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Reading, len(s.readings))
	copy(out, s.readings)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return s.Clear(context.Background())
}
