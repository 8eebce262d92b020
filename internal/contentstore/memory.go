package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"heirloom-go/internal/heirloom"
)

// MemoryStore is an in-memory content store, content-addressed by SHA-256.
// Useful for testing. Safe for concurrent use.
type MemoryStore struct {
	content map[string][]byte
	mu      sync.RWMutex
}

var _ heirloom.ContentStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{content: make(map[string][]byte)}
}

// Upload stores data under its SHA-256 hash. Storing the same bytes twice
// is safe and returns the same identifier.
func (m *MemoryStore) Upload(_ context.Context, _ string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	defer m.mu.Unlock()

	m.content[hash] = append([]byte(nil), data...)
	return hash, nil
}

func (m *MemoryStore) Fetch(_ context.Context, contentHash string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[contentHash]
	if !ok {
		return nil, fmt.Errorf("content not found: %s", contentHash)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) ResolveURL(contentHash string) string {
	return "memory://" + contentHash
}
