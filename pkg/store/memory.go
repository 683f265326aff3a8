package store

import (
	"context"
	"slices"
	"sync"

	"github.com/kottinov/website-builder/pkg/page"
)

// Memory keeps encoded pages in a map. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	pages map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{pages: make(map[string][]byte)}
}

func (m *Memory) get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.pages[key]
	return slices.Clone(data), ok, nil
}

func (m *Memory) put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[key] = slices.Clone(data)
	return nil
}

func (m *Memory) Load(ctx context.Context, key string) (*page.Page, error) {
	return loadBlob(ctx, BackendMemory, m, key)
}

func (m *Memory) Save(ctx context.Context, key string, p *page.Page) error {
	return saveBlob(ctx, BackendMemory, m, key, p)
}

// Bytes returns a copy of the stored document, or nil.
func (m *Memory) Bytes(key string) []byte {
	data, _, _ := m.get(context.Background(), key)
	return data
}

// Put stores raw bytes under key without decoding them.
func (m *Memory) Put(key string, data []byte) {
	_ = m.put(context.Background(), key, data)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
