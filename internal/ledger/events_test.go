package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"heirloom-go/internal/heirloom"
)

func addrTopic(a common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(a.Bytes(), 32))
}

func idTopic(id uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(id))
}

// createdLog builds a real InheritanceCreated log: id, owner and successor
// as indexed topics, ipfsHash and tag ABI-packed into the data field.
func createdLog(t *testing.T, id uint64, owner, successor common.Address, contentHash, tag string) *types.Log {
	t.Helper()

	ev := contractABI.Events["InheritanceCreated"]
	data, err := ev.Inputs.NonIndexed().Pack(contentHash, tag)
	if err != nil {
		t.Fatalf("packing event data: %v", err)
	}
	return &types.Log{
		Topics: []common.Hash{ev.ID, idTopic(id), addrTopic(owner), addrTopic(successor)},
		Data:   data,
	}
}

func unrelatedLogs() []*types.Log {
	// Transfer and Approval signatures from a typical token contract,
	// plus a log with no topics at all.
	return []*types.Log{
		{Topics: []common.Hash{
			common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
			addrTopic(testWallet),
			addrTopic(testSuccessor),
		}},
		{Topics: []common.Hash{
			common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"),
			addrTopic(testWallet),
			addrTopic(testContract),
		}},
		{},
	}
}

func TestDecodeCreated(t *testing.T) {
	d := NewDecoder()

	t.Run("finds the event among unrelated logs", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: append(unrelatedLogs(),
				createdLog(t, 42, testWallet, testSuccessor, "QmHash", "estate")),
		}

		ev, err := d.DecodeCreated(receipt)
		if err != nil {
			t.Fatalf("DecodeCreated: %v", err)
		}
		if ev.ID != 42 {
			t.Errorf("expected id 42, got %d", ev.ID)
		}
		if ev.Owner != testWallet || ev.Successor != testSuccessor {
			t.Errorf("unexpected parties: %+v", ev)
		}
		if ev.ContentHash != "QmHash" || ev.Tag != "estate" {
			t.Errorf("unexpected data fields: %+v", ev)
		}
	})

	t.Run("no matching log is ErrEventNotFound", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   unrelatedLogs(),
		}

		if _, err := d.DecodeCreated(receipt); !errors.Is(err, heirloom.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("empty receipt is ErrEventNotFound", func(t *testing.T) {
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}

		if _, err := d.DecodeCreated(receipt); !errors.Is(err, heirloom.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("topic count mismatch is skipped", func(t *testing.T) {
		ev := contractABI.Events["InheritanceCreated"]
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				// Right signature, wrong shape: one indexed topic missing.
				{Topics: []common.Hash{ev.ID, idTopic(1), addrTopic(testWallet)}},
			},
		}

		if _, err := d.DecodeCreated(receipt); !errors.Is(err, heirloom.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("first matching log wins", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				createdLog(t, 7, testWallet, testSuccessor, "QmFirst", "a"),
				createdLog(t, 8, testWallet, testSuccessor, "QmSecond", "b"),
			},
		}

		ev, err := d.DecodeCreated(receipt)
		if err != nil {
			t.Fatalf("DecodeCreated: %v", err)
		}
		if ev.ID != 7 {
			t.Errorf("expected the first event's id, got %d", ev.ID)
		}
	})
}

func TestDecodeClaimed(t *testing.T) {
	d := NewDecoder()
	ev := contractABI.Events["InheritanceClaimed"]
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{Topics: []common.Hash{ev.ID, idTopic(5), addrTopic(testSuccessor)}},
		},
	}

	got, err := d.DecodeClaimed(receipt)
	if err != nil {
		t.Fatalf("DecodeClaimed: %v", err)
	}
	if got.ID != 5 || got.Successor != testSuccessor {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestDecodeRevoked(t *testing.T) {
	d := NewDecoder()
	ev := contractABI.Events["InheritanceRevoked"]
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{Topics: []common.Hash{ev.ID, idTopic(5), addrTopic(testWallet)}},
		},
	}

	got, err := d.DecodeRevoked(receipt)
	if err != nil {
		t.Fatalf("DecodeRevoked: %v", err)
	}
	if got.ID != 5 || got.Owner != testWallet {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestDecodeDeleted(t *testing.T) {
	d := NewDecoder()
	ev := contractABI.Events["InheritanceDeleted"]
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{Topics: []common.Hash{ev.ID, idTopic(9), addrTopic(testWallet)}},
		},
	}

	got, err := d.DecodeDeleted(receipt)
	if err != nil {
		t.Fatalf("DecodeDeleted: %v", err)
	}
	if got.ID != 9 || got.Owner != testWallet {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestDecodeSuccessorUpdated(t *testing.T) {
	d := NewDecoder()
	ev := contractABI.Events["SuccessorUpdated"]
	replacement := common.HexToAddress("0x0000000000000000000000000000000000000004")
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{Topics: []common.Hash{ev.ID, idTopic(5), addrTopic(testSuccessor), addrTopic(replacement)}},
		},
	}

	got, err := d.DecodeSuccessorUpdated(receipt)
	if err != nil {
		t.Fatalf("DecodeSuccessorUpdated: %v", err)
	}
	if got.ID != 5 || got.OldSuccessor != testSuccessor || got.NewSuccessor != replacement {
		t.Errorf("unexpected event: %+v", got)
	}
}
