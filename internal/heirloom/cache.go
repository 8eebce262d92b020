package heirloom

import (
	"github.com/ethereum/go-ethereum/common"

	"heirloom-go/internal/model"
)

// Cache is a best-effort local mirror of records this client has created or
// fetched, keyed by id. It is never authoritative: a fresh ledger read
// always overwrites the cached entry. Entries are replaced whole, never
// field by field, so interleaved async completions cannot produce torn
// reads.
type Cache interface {
	// Put stores or replaces the entry for rec.ID.
	Put(rec model.Inheritance) error

	// Get returns the cached entry for id, or (nil, nil) if absent.
	Get(id uint64) (*model.Inheritance, error)

	// Delete removes the entry for id. Deleting an absent id is a no-op.
	Delete(id uint64) error

	// ByOwner returns cached records owned by the address, ordered by id.
	ByOwner(owner common.Address) ([]model.Inheritance, error)

	// BySuccessor returns cached records designating the address as
	// successor, ordered by id.
	BySuccessor(successor common.Address) ([]model.Inheritance, error)

	// Close releases any underlying resources.
	Close() error
}
