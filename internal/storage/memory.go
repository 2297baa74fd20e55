package storage

import (
	"context"
	"sync"
)

// memory implements SnapshotStore using an in-memory map.
type memory struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore creates a new instance of SnapshotStore backed by process
// memory. Snapshots do not survive a restart; intended for tests and for
// running without a persistence backend.
func NewMemoryStore() SnapshotStore {
	return &memory{snapshots: make(map[string][]byte)}
}

func (s *memory) Save(_ context.Context, namespace string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.snapshots[namespace] = buf
	return nil
}

func (s *memory) Load(_ context.Context, namespace string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.snapshots[namespace]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *memory) Delete(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, namespace)
	return nil
}
