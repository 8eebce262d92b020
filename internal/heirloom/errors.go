package heirloom

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the ledger reported an empty slot for the queried id.
	// This is a normal outcome for reads, not a failure of the transport.
	ErrNotFound = errors.New("inheritance not found")

	// ErrEventNotFound means a confirmed receipt did not contain the event
	// the operation must have emitted. A receipt's log set is final, so this
	// is always a protocol error, never a transient one.
	ErrEventNotFound = errors.New("expected event not found in receipt")
)

// WrongNetworkError is returned when the wallet is connected to a network
// other than the configured one and could not be switched. No transaction
// is submitted when this is returned.
type WrongNetworkError struct {
	Observed uint64
	Required uint64
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("wallet is on chain %d but chain %d is required", e.Observed, e.Required)
}

// SimulationRevertedError is returned when the pre-submission dry run of a
// state-changing call reverts. The transaction is never broadcast.
type SimulationRevertedError struct {
	Op  string
	Err error
}

func (e *SimulationRevertedError) Error() string {
	return fmt.Sprintf("simulation of %s reverted: %v", e.Op, e.Err)
}

func (e *SimulationRevertedError) Unwrap() error { return e.Err }

// UploadError is returned when the content store rejects or fails an upload.
// The coordinator performs a single attempt; retrying is the caller's choice.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("content upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
