package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Transport performs raw contract calls on behalf of the wallet. It is the
// seam between the typed client and the chain: Call is a read-only eth_call
// (used both for views and for pre-submission simulation), Send signs,
// broadcasts and waits for confirmation.
type Transport interface {
	// From returns the wallet address calls are made as.
	From() common.Address

	// ChainID reports the network the wallet is currently connected to.
	ChainID(ctx context.Context) (uint64, error)

	// SwitchChain asks the wallet to move to the given network.
	SwitchChain(ctx context.Context, chainID uint64) error

	// Call executes a read-only call against the contract at to.
	Call(ctx context.Context, to common.Address, input []byte) ([]byte, error)

	// Send signs and broadcasts a transaction to the contract at to and
	// waits for it to be mined. Once broadcast the transaction is
	// irrevocable; abandoning the wait does not un-submit it.
	Send(ctx context.Context, to common.Address, input []byte) (*types.Receipt, error)
}

// RPCTransport implements Transport over a JSON-RPC endpoint with a local
// signing key. An endpoint is pinned to a single network, so SwitchChain
// always fails; a mismatch must be fixed in configuration.
type RPCTransport struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

var _ Transport = (*RPCTransport)(nil)

// NewRPCTransport dials the endpoint, parses the hex-encoded signing key
// and records the endpoint's chain id.
func NewRPCTransport(ctx context.Context, rpcURL, keyHex string) (*RPCTransport, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing signing key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("reading endpoint chain id: %w", err)
	}

	return &RPCTransport{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

func (t *RPCTransport) From() common.Address { return t.from }

func (t *RPCTransport) ChainID(context.Context) (uint64, error) {
	return t.chainID.Uint64(), nil
}

func (t *RPCTransport) SwitchChain(_ context.Context, chainID uint64) error {
	return fmt.Errorf("rpc endpoint is pinned to chain %d, cannot switch to %d", t.chainID, chainID)
}

func (t *RPCTransport) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	return t.client.CallContract(ctx, ethereum.CallMsg{From: t.from, To: &to, Data: input}, nil)
}

func (t *RPCTransport) Send(ctx context.Context, to common.Address, input []byte) (*types.Receipt, error) {
	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, fmt.Errorf("reading account nonce: %w", err)
	}

	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading gas price: %w", err)
	}

	gasLimit, err := t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:     t.from,
		To:       &to,
		GasPrice: gasPrice,
		Data:     input,
	})
	if err != nil {
		return nil, fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	if err := t.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, t.client, signed)
	if err != nil {
		return nil, fmt.Errorf("waiting for transaction %s: %w", signed.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted on-chain", signed.Hash())
	}

	return receipt, nil
}

// Close releases the underlying RPC connection.
func (t *RPCTransport) Close() {
	t.client.Close()
}
