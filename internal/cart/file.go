package cart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileStorage implements Storage with one JSON file per slot under a base
// directory. This is the client-local storage analogue: slots survive
// restarts on the same machine without any server-side state.
type fileStorage struct {
	mu  sync.Mutex
	dir string
}

// NewFileStorage creates a Storage writing slots under dir, creating the
// directory if needed.
func NewFileStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &fileStorage{dir: dir}, nil
}

// Load retrieves the blob stored under slot.
func (s *fileStorage) Load(_ context.Context, slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}
	return data, nil
}

// Save stores the blob under slot. The write goes to a temp file first and is
// renamed into place, so a crash mid-write leaves the previous value intact.
func (s *fileStorage) Save(_ context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(slot)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace slot %s: %w", slot, err)
	}
	return nil
}

func (s *fileStorage) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}
