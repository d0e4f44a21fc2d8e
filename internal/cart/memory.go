package cart

import (
	"context"
	"sync"
)

// memoryStorage implements Storage using an in-memory map. Slots do not
// survive a process restart; meant for tests and local development.
type memoryStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStorage creates a new in-memory Storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		slots: make(map[string][]byte),
	}
}

// Load retrieves the blob stored under slot.
func (s *memoryStorage) Load(_ context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, ErrSlotNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores the blob under slot.
func (s *memoryStorage) Save(_ context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.slots[slot] = stored
	return nil
}
