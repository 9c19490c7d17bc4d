package store

import (
	"context"
	"sync"
)

// Memory keeps values in process. It is the store used when persistence
// is disabled, and in tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	opts   Options
}

// NewMemory creates an empty in-memory store
func NewMemory(opts Options) *Memory {
	return &Memory{values: make(map[string][]byte), opts: opts.withDefaults()}
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	raw, err := seal(m.opts, data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := m.raw(ctx, key)
	if err != nil {
		return nil, err
	}
	return open(m.opts, key, raw)
}

func (m *Memory) raw(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Memory) Close() error { return nil }
