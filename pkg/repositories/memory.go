package repositories

import (
	"context"
	"sync"
)

// MemoryStore keeps values in memory.
type MemoryStore struct {
	lock   sync.RWMutex
	values map[string]string
	writes int
	// failWrites, when set, is returned by Set instead of storing the value
	failWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", &ErrNotFound{Key: key}
	}
	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failWrites != nil {
		return s.failWrites
	}
	s.values[key] = value
	s.writes++
	return nil
}

// FailWrites makes subsequent writes return err. A nil err restores normal writes.
func (s *MemoryStore) FailWrites(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failWrites = err
}

// Writes returns the number of successful writes.
func (s *MemoryStore) Writes() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.writes
}
