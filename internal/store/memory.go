package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is the in-process Records twin. It backs tests and the
// degraded mode entered when SQLite cannot be opened: the application
// keeps working, state is simply lost on restart.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ Records = (*Memory)(nil)

// NewMemory creates an empty in-memory store with the given
// collections registered.
func NewMemory(collections []string) *Memory {
	m := &Memory{collections: make(map[string]map[string][]byte, len(collections))}
	for _, c := range collections {
		m.collections[c] = make(map[string][]byte)
	}
	return m
}

func (m *Memory) records(collection string) (map[string][]byte, error) {
	recs, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return recs, nil
}

// GetAll returns copies of every payload in the collection.
func (m *Memory) GetAll(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, err := m.records(collection)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(recs))
	for _, p := range recs {
		out = append(out, append([]byte(nil), p...))
	}
	return out, nil
}

// Get returns a copy of the payload under id, or ErrNotFound.
func (m *Memory) Get(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, err := m.records(collection)
	if err != nil {
		return nil, err
	}
	p, ok := recs[id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	return append([]byte(nil), p...), nil
}

// Put upserts the payload under id.
func (m *Memory) Put(_ context.Context, collection, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, err := m.records(collection)
	if err != nil {
		return err
	}
	recs[id] = append([]byte(nil), payload...)
	return nil
}

// Add inserts the payload under id, failing on an existing id.
func (m *Memory) Add(_ context.Context, collection, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, err := m.records(collection)
	if err != nil {
		return err
	}
	if _, exists := recs[id]; exists {
		return fmt.Errorf("add %s/%s: %w", collection, id, ErrDuplicateID)
	}
	recs[id] = append([]byte(nil), payload...)
	return nil
}

// Delete removes the record under id; absent ids are a no-op.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, err := m.records(collection)
	if err != nil {
		return err
	}
	delete(recs, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
