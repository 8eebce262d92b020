package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

// Client is the typed inheritance contract client. Every state-changing
// method verifies the wallet's network against the configured chain id,
// dry-runs the call, and only then broadcasts.
type Client struct {
	transport Transport
	contract  common.Address
	chainID   uint64
}

var _ heirloom.Ledger = (*Client)(nil)

// NewClient creates a contract client. The transport is a required
// capability; a missing wallet is a construction failure.
func NewClient(transport Transport, contract common.Address, chainID uint64) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if contract == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}
	if chainID == 0 {
		return nil, fmt.Errorf("chain id is required")
	}
	return &Client{transport: transport, contract: contract, chainID: chainID}, nil
}

func (c *Client) Caller() common.Address { return c.transport.From() }

// Create registers a new inheritance. A successor equal to the calling
// wallet is rejected here: the contract gives no signal either way, and a
// deliberate self-inheritance has no use.
func (c *Client) Create(ctx context.Context, successor common.Address, contentHash, tag, fileName string, fileSize int64) (*types.Receipt, error) {
	if successor == (common.Address{}) {
		return nil, fmt.Errorf("successor address is required")
	}
	if successor == c.transport.From() {
		return nil, fmt.Errorf("successor must differ from the calling wallet")
	}
	if contentHash == "" || contentHash == model.DeletedSentinel {
		return nil, fmt.Errorf("content hash is required")
	}
	return c.submit(ctx, "createInheritance", successor, contentHash, tag, fileName, big.NewInt(fileSize))
}

// Read returns the record for id, or heirloom.ErrNotFound when the ledger
// reports a zero-initialized slot.
func (c *Client) Read(ctx context.Context, id uint64) (*model.Inheritance, error) {
	vals, err := c.view(ctx, "getInheritance", idArg(id))
	if err != nil {
		return nil, err
	}

	owner, err := output[common.Address](vals, 0, "getInheritance")
	if err != nil {
		return nil, err
	}
	if owner == (common.Address{}) {
		return nil, heirloom.ErrNotFound
	}

	successor, err := output[common.Address](vals, 1, "getInheritance")
	if err != nil {
		return nil, err
	}
	contentHash, err := output[string](vals, 2, "getInheritance")
	if err != nil {
		return nil, err
	}
	tag, err := output[string](vals, 3, "getInheritance")
	if err != nil {
		return nil, err
	}
	fileName, err := output[string](vals, 4, "getInheritance")
	if err != nil {
		return nil, err
	}
	fileSize, err := output[*big.Int](vals, 5, "getInheritance")
	if err != nil {
		return nil, err
	}
	timestamp, err := output[*big.Int](vals, 6, "getInheritance")
	if err != nil {
		return nil, err
	}
	isActive, err := output[bool](vals, 7, "getInheritance")
	if err != nil {
		return nil, err
	}
	isClaimed, err := output[bool](vals, 8, "getInheritance")
	if err != nil {
		return nil, err
	}

	return &model.Inheritance{
		ID:          id,
		Owner:       owner,
		Successor:   successor,
		ContentHash: contentHash,
		Tag:         tag,
		FileName:    fileName,
		FileSize:    fileSize.Int64(),
		Timestamp:   time.Unix(timestamp.Int64(), 0).UTC(),
		IsActive:    isActive,
		IsClaimed:   isClaimed,
	}, nil
}

// OwnerIDs returns the owner's id index in ledger-insertion order. Ids are
// never removed from the index; deleted records keep their slot.
func (c *Client) OwnerIDs(ctx context.Context, owner common.Address) ([]uint64, error) {
	return c.idIndex(ctx, "getOwnerInheritances", owner)
}

// SuccessorIDs returns the successor's id index.
func (c *Client) SuccessorIDs(ctx context.Context, successor common.Address) ([]uint64, error) {
	return c.idIndex(ctx, "getSuccessorInheritances", successor)
}

func (c *Client) Claim(ctx context.Context, id uint64) (*types.Receipt, error) {
	return c.submit(ctx, "claimInheritance", idArg(id))
}

func (c *Client) Revoke(ctx context.Context, id uint64) (*types.Receipt, error) {
	return c.submit(ctx, "revokeInheritance", idArg(id))
}

func (c *Client) Delete(ctx context.Context, id uint64) (*types.Receipt, error) {
	return c.submit(ctx, "deleteInheritance", idArg(id))
}

func (c *Client) UpdateSuccessor(ctx context.Context, id uint64, newSuccessor common.Address) (*types.Receipt, error) {
	if newSuccessor == (common.Address{}) {
		return nil, fmt.Errorf("successor address is required")
	}
	if newSuccessor == c.transport.From() {
		return nil, fmt.Errorf("successor must differ from the calling wallet")
	}
	return c.submit(ctx, "updateSuccessor", idArg(id), newSuccessor)
}

// CanAccess reports whether user may access the record's payload.
func (c *Client) CanAccess(ctx context.Context, id uint64, user common.Address) (bool, error) {
	vals, err := c.view(ctx, "canAccessInheritance", idArg(id), user)
	if err != nil {
		return false, err
	}
	return output[bool](vals, 0, "canAccessInheritance")
}

// ActiveCount returns the number of active inheritances for an owner.
func (c *Client) ActiveCount(ctx context.Context, owner common.Address) (uint64, error) {
	vals, err := c.view(ctx, "getActiveInheritancesCount", owner)
	if err != nil {
		return 0, err
	}
	n, err := output[*big.Int](vals, 0, "getActiveInheritancesCount")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Counter returns the contract's global id counter.
func (c *Client) Counter(ctx context.Context) (uint64, error) {
	vals, err := c.view(ctx, "inheritanceCounter")
	if err != nil {
		return 0, err
	}
	n, err := output[*big.Int](vals, 0, "inheritanceCounter")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// ensureNetwork verifies the wallet is on the configured chain, attempting
// one switch request on mismatch. A failed or non-converging switch is a
// WrongNetworkError and nothing is submitted.
func (c *Client) ensureNetwork(ctx context.Context) error {
	observed, err := c.transport.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("reading wallet chain id: %w", err)
	}
	if observed == c.chainID {
		return nil
	}

	if err := c.transport.SwitchChain(ctx, c.chainID); err != nil {
		return &heirloom.WrongNetworkError{Observed: observed, Required: c.chainID}
	}

	observed, err = c.transport.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("re-reading wallet chain id: %w", err)
	}
	if observed != c.chainID {
		return &heirloom.WrongNetworkError{Observed: observed, Required: c.chainID}
	}
	return nil
}

// submit runs the network precondition, simulates the call, and broadcasts
// only if the simulation succeeds. A revert during simulation carries the
// underlying reason and prevents any broadcast.
func (c *Client) submit(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	if err := c.ensureNetwork(ctx); err != nil {
		return nil, err
	}

	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s call: %w", method, err)
	}

	if _, err := c.transport.Call(ctx, c.contract, input); err != nil {
		return nil, &heirloom.SimulationRevertedError{Op: method, Err: err}
	}

	receipt, err := c.transport.Send(ctx, c.contract, input)
	if err != nil {
		return nil, fmt.Errorf("submitting %s: %w", method, err)
	}
	return receipt, nil
}

// view packs, calls and unpacks a read-only contract method.
func (c *Client) view(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s call: %w", method, err)
	}

	out, err := c.transport.Call(ctx, c.contract, input)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	vals, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	return vals, nil
}

func (c *Client) idIndex(ctx context.Context, method string, addr common.Address) ([]uint64, error) {
	vals, err := c.view(ctx, method, addr)
	if err != nil {
		return nil, err
	}
	raw, err := output[[]*big.Int](vals, 0, method)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(raw))
	for i, v := range raw {
		ids[i] = v.Uint64()
	}
	return ids, nil
}

func idArg(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}

// output asserts the type of one unpacked ABI output.
func output[T any](vals []any, i int, method string) (T, error) {
	var zero T
	if i >= len(vals) {
		return zero, fmt.Errorf("%s returned %d outputs, need %d", method, len(vals), i+1)
	}
	v, ok := vals[i].(T)
	if !ok {
		return zero, fmt.Errorf("%s output %d: unexpected type %T", method, i, vals[i])
	}
	return v, nil
}
