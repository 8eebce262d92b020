package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DeletedSentinel is the content hash value the contract writes when an
// inheritance is deleted. Records carrying it (or an empty hash) are
// logically deleted and excluded from all listings.
const DeletedSentinel = "0"

// Inheritance is one inheritance record as held by the ledger contract.
// The ID is assigned by the contract at creation time and never reused.
type Inheritance struct {
	ID          uint64
	Owner       common.Address
	Successor   common.Address
	ContentHash string // content-store identifier of the encrypted payload
	Tag         string
	FileName    string
	FileSize    int64
	Timestamp   time.Time // creation time as recorded by the ledger
	IsActive    bool      // false after revoke or delete
	IsClaimed   bool      // true once the successor has claimed
}

// Deleted reports whether the record has been deleted on the ledger.
func (i *Inheritance) Deleted() bool {
	return i.ContentHash == DeletedSentinel || i.ContentHash == ""
}

// CreatedEvent is the InheritanceCreated contract event. Decoding it from a
// create receipt is the only way to learn the id the contract assigned.
type CreatedEvent struct {
	ID          uint64
	Owner       common.Address
	Successor   common.Address
	ContentHash string
	Tag         string
}

// ClaimedEvent is the InheritanceClaimed contract event.
type ClaimedEvent struct {
	ID        uint64
	Successor common.Address
}

// RevokedEvent is the InheritanceRevoked contract event.
type RevokedEvent struct {
	ID    uint64
	Owner common.Address
}

// DeletedEvent is the InheritanceDeleted contract event.
type DeletedEvent struct {
	ID    uint64
	Owner common.Address
}

// SuccessorUpdatedEvent is the SuccessorUpdated contract event.
type SuccessorUpdatedEvent struct {
	ID           uint64
	OldSuccessor common.Address
	NewSuccessor common.Address
}
