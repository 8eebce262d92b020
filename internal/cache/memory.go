package cache

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

// MemoryCache is an in-memory implementation of the Cache interface.
// Entries are replaced whole. Safe for concurrent use.
type MemoryCache struct {
	records map[uint64]model.Inheritance
	mu      sync.RWMutex
}

var _ heirloom.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: make(map[uint64]model.Inheritance)}
}

func (m *MemoryCache) Put(rec model.Inheritance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryCache) Get(id uint64) (*model.Inheritance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryCache) Delete(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

func (m *MemoryCache) ByOwner(owner common.Address) ([]model.Inheritance, error) {
	return m.filter(func(rec model.Inheritance) bool { return rec.Owner == owner }), nil
}

func (m *MemoryCache) BySuccessor(successor common.Address) ([]model.Inheritance, error) {
	return m.filter(func(rec model.Inheritance) bool { return rec.Successor == successor }), nil
}

func (m *MemoryCache) Close() error { return nil }

func (m *MemoryCache) filter(keep func(model.Inheritance) bool) []model.Inheritance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Inheritance
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
