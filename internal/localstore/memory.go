package localstore

import (
	"context"
	"sync"
)

// Memory keeps pending writes in process memory. It backs tests and clients
// that opt out of a queue file; durability across restarts requires SQLite.
type Memory struct {
	mu    sync.Mutex
	items []Item
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, item Item) error {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadAll(_ context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
