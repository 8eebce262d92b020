package heirloom

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"heirloom-go/internal/model"
)

// Ledger provides typed, precondition-checked access to the inheritance
// contract. State-changing methods verify the wallet is on the configured
// network, simulate the call, and only then broadcast; they return the
// confirmation receipt so the caller can decode emitted events.
type Ledger interface {
	// Caller returns the wallet address operations are signed with.
	Caller() common.Address

	// Create registers a new inheritance. The assigned id is not returned
	// here; it only exists in the InheritanceCreated event on the receipt.
	Create(ctx context.Context, successor common.Address, contentHash, tag, fileName string, fileSize int64) (*types.Receipt, error)

	// Read returns the record for id, or ErrNotFound for an empty slot.
	Read(ctx context.Context, id uint64) (*model.Inheritance, error)

	// OwnerIDs returns the id index for an owner in ledger-insertion order.
	// Ids are never removed from the index, only flagged on the record.
	OwnerIDs(ctx context.Context, owner common.Address) ([]uint64, error)

	// SuccessorIDs returns the id index for a successor.
	SuccessorIDs(ctx context.Context, successor common.Address) ([]uint64, error)

	Claim(ctx context.Context, id uint64) (*types.Receipt, error)
	Revoke(ctx context.Context, id uint64) (*types.Receipt, error)
	Delete(ctx context.Context, id uint64) (*types.Receipt, error)
	UpdateSuccessor(ctx context.Context, id uint64, newSuccessor common.Address) (*types.Receipt, error)
}

// EventDecoder recovers typed contract events from confirmed receipts.
// Logs emitted by unrelated contracts are skipped; a receipt with no
// matching log yields ErrEventNotFound.
type EventDecoder interface {
	DecodeCreated(receipt *types.Receipt) (*model.CreatedEvent, error)
	DecodeClaimed(receipt *types.Receipt) (*model.ClaimedEvent, error)
	DecodeRevoked(receipt *types.Receipt) (*model.RevokedEvent, error)
	DecodeDeleted(receipt *types.Receipt) (*model.DeletedEvent, error)
	DecodeSuccessorUpdated(receipt *types.Receipt) (*model.SuccessorUpdatedEvent, error)
}
