package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

// Addr returns a deterministic test address.
func Addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

// FakeChain is an in-memory stand-in for the inheritance contract,
// implementing both heirloom.Ledger and heirloom.EventDecoder. It enforces
// the contract's authorization and state rules, reporting violations as
// SimulationRevertedError the way a real dry run would. Receipts are
// opaque handles mapped back to the event they carry.
type FakeChain struct {
	mu      sync.Mutex
	caller  common.Address
	records map[uint64]*model.Inheritance
	order   []uint64
	nextID  uint64
	events  map[*types.Receipt]any

	// ReadErrs injects per-id read failures.
	ReadErrs map[uint64]error
	// IndexErr fails OwnerIDs/SuccessorIDs when set.
	IndexErr error
}

var (
	_ heirloom.Ledger       = (*FakeChain)(nil)
	_ heirloom.EventDecoder = (*FakeChain)(nil)
)

// NewFakeChain creates a fake contract with the given calling wallet.
func NewFakeChain(caller common.Address) *FakeChain {
	return &FakeChain{
		caller:   caller,
		records:  make(map[uint64]*model.Inheritance),
		events:   make(map[*types.Receipt]any),
		ReadErrs: make(map[uint64]error),
	}
}

// SetCaller switches the wallet subsequent calls are made as.
func (f *FakeChain) SetCaller(caller common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caller = caller
}

func (f *FakeChain) Caller() common.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caller
}

// RecordCount reports how many records the contract holds, including
// deleted ones.
func (f *FakeChain) RecordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *FakeChain) Create(_ context.Context, successor common.Address, contentHash, tag, fileName string, fileSize int64) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if successor == f.caller {
		return nil, fmt.Errorf("successor must differ from the calling wallet")
	}

	f.nextID++
	rec := &model.Inheritance{
		ID:          f.nextID,
		Owner:       f.caller,
		Successor:   successor,
		ContentHash: contentHash,
		Tag:         tag,
		FileName:    fileName,
		FileSize:    fileSize,
		Timestamp:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		IsActive:    true,
	}
	f.records[rec.ID] = rec
	f.order = append(f.order, rec.ID)

	return f.emit(&model.CreatedEvent{
		ID:          rec.ID,
		Owner:       rec.Owner,
		Successor:   rec.Successor,
		ContentHash: contentHash,
		Tag:         tag,
	}), nil
}

func (f *FakeChain) Read(_ context.Context, id uint64) (*model.Inheritance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ReadErrs[id]; err != nil {
		return nil, err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, heirloom.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *FakeChain) OwnerIDs(_ context.Context, owner common.Address) ([]uint64, error) {
	return f.index(func(rec *model.Inheritance) bool { return rec.Owner == owner })
}

func (f *FakeChain) SuccessorIDs(_ context.Context, successor common.Address) ([]uint64, error) {
	return f.index(func(rec *model.Inheritance) bool { return rec.Successor == successor })
}

func (f *FakeChain) Claim(_ context.Context, id uint64) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[id]
	switch {
	case !ok:
		return nil, f.revert("claimInheritance", "inheritance does not exist")
	case rec.Successor != f.caller:
		return nil, f.revert("claimInheritance", "caller is not the successor")
	case !rec.IsActive:
		return nil, f.revert("claimInheritance", "inheritance is not active")
	case rec.IsClaimed:
		return nil, f.revert("claimInheritance", "inheritance already claimed")
	}

	rec.IsClaimed = true
	return f.emit(&model.ClaimedEvent{ID: id, Successor: rec.Successor}), nil
}

func (f *FakeChain) Revoke(_ context.Context, id uint64) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[id]
	switch {
	case !ok:
		return nil, f.revert("revokeInheritance", "inheritance does not exist")
	case rec.Owner != f.caller:
		return nil, f.revert("revokeInheritance", "caller is not the owner")
	case !rec.IsActive:
		return nil, f.revert("revokeInheritance", "inheritance is not active")
	}

	rec.IsActive = false
	return f.emit(&model.RevokedEvent{ID: id, Owner: rec.Owner}), nil
}

func (f *FakeChain) Delete(_ context.Context, id uint64) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[id]
	switch {
	case !ok:
		return nil, f.revert("deleteInheritance", "inheritance does not exist")
	case rec.Owner != f.caller:
		return nil, f.revert("deleteInheritance", "caller is not the owner")
	case rec.Deleted():
		return nil, f.revert("deleteInheritance", "inheritance already deleted")
	}

	rec.ContentHash = model.DeletedSentinel
	rec.IsActive = false
	return f.emit(&model.DeletedEvent{ID: id, Owner: rec.Owner}), nil
}

func (f *FakeChain) UpdateSuccessor(_ context.Context, id uint64, newSuccessor common.Address) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[id]
	switch {
	case !ok:
		return nil, f.revert("updateSuccessor", "inheritance does not exist")
	case rec.Owner != f.caller:
		return nil, f.revert("updateSuccessor", "caller is not the owner")
	case !rec.IsActive:
		return nil, f.revert("updateSuccessor", "inheritance is not active")
	case rec.IsClaimed:
		return nil, f.revert("updateSuccessor", "inheritance already claimed")
	}

	old := rec.Successor
	rec.Successor = newSuccessor
	return f.emit(&model.SuccessorUpdatedEvent{ID: id, OldSuccessor: old, NewSuccessor: newSuccessor}), nil
}

func (f *FakeChain) DecodeCreated(receipt *types.Receipt) (*model.CreatedEvent, error) {
	return decodeEvent[*model.CreatedEvent](f, receipt)
}

func (f *FakeChain) DecodeClaimed(receipt *types.Receipt) (*model.ClaimedEvent, error) {
	return decodeEvent[*model.ClaimedEvent](f, receipt)
}

func (f *FakeChain) DecodeRevoked(receipt *types.Receipt) (*model.RevokedEvent, error) {
	return decodeEvent[*model.RevokedEvent](f, receipt)
}

func (f *FakeChain) DecodeDeleted(receipt *types.Receipt) (*model.DeletedEvent, error) {
	return decodeEvent[*model.DeletedEvent](f, receipt)
}

func (f *FakeChain) DecodeSuccessorUpdated(receipt *types.Receipt) (*model.SuccessorUpdatedEvent, error) {
	return decodeEvent[*model.SuccessorUpdatedEvent](f, receipt)
}

func (f *FakeChain) emit(event any) *types.Receipt {
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}
	f.events[receipt] = event
	return receipt
}

func (f *FakeChain) revert(op, reason string) error {
	return &heirloom.SimulationRevertedError{Op: op, Err: errors.New(reason)}
}

func (f *FakeChain) index(match func(*model.Inheritance) bool) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.IndexErr != nil {
		return nil, f.IndexErr
	}
	var ids []uint64
	for _, id := range f.order {
		if match(f.records[id]) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func decodeEvent[T any](f *FakeChain, receipt *types.Receipt) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	ev, ok := f.events[receipt].(T)
	if !ok {
		return zero, heirloom.ErrEventNotFound
	}
	return ev, nil
}
