package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

// Decoder recovers typed contract events from confirmed receipts. A receipt
// legitimately carries logs from unrelated contract activity; those are
// skipped, not treated as errors.
type Decoder struct{}

var _ heirloom.EventDecoder = (*Decoder)(nil)

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) DecodeCreated(receipt *types.Receipt) (*model.CreatedEvent, error) {
	out, err := decodeFirst(receipt, "InheritanceCreated")
	if err != nil {
		return nil, err
	}
	id, err := uintField(out, "inheritanceId")
	if err != nil {
		return nil, err
	}
	owner, err := addrField(out, "owner")
	if err != nil {
		return nil, err
	}
	successor, err := addrField(out, "successor")
	if err != nil {
		return nil, err
	}
	contentHash, err := strField(out, "ipfsHash")
	if err != nil {
		return nil, err
	}
	tag, err := strField(out, "tag")
	if err != nil {
		return nil, err
	}
	return &model.CreatedEvent{ID: id, Owner: owner, Successor: successor, ContentHash: contentHash, Tag: tag}, nil
}

func (d *Decoder) DecodeClaimed(receipt *types.Receipt) (*model.ClaimedEvent, error) {
	out, err := decodeFirst(receipt, "InheritanceClaimed")
	if err != nil {
		return nil, err
	}
	id, err := uintField(out, "inheritanceId")
	if err != nil {
		return nil, err
	}
	successor, err := addrField(out, "successor")
	if err != nil {
		return nil, err
	}
	return &model.ClaimedEvent{ID: id, Successor: successor}, nil
}

func (d *Decoder) DecodeRevoked(receipt *types.Receipt) (*model.RevokedEvent, error) {
	out, err := decodeFirst(receipt, "InheritanceRevoked")
	if err != nil {
		return nil, err
	}
	id, err := uintField(out, "inheritanceId")
	if err != nil {
		return nil, err
	}
	owner, err := addrField(out, "owner")
	if err != nil {
		return nil, err
	}
	return &model.RevokedEvent{ID: id, Owner: owner}, nil
}

func (d *Decoder) DecodeDeleted(receipt *types.Receipt) (*model.DeletedEvent, error) {
	out, err := decodeFirst(receipt, "InheritanceDeleted")
	if err != nil {
		return nil, err
	}
	id, err := uintField(out, "inheritanceId")
	if err != nil {
		return nil, err
	}
	owner, err := addrField(out, "owner")
	if err != nil {
		return nil, err
	}
	return &model.DeletedEvent{ID: id, Owner: owner}, nil
}

func (d *Decoder) DecodeSuccessorUpdated(receipt *types.Receipt) (*model.SuccessorUpdatedEvent, error) {
	out, err := decodeFirst(receipt, "SuccessorUpdated")
	if err != nil {
		return nil, err
	}
	id, err := uintField(out, "inheritanceId")
	if err != nil {
		return nil, err
	}
	oldSucc, err := addrField(out, "oldSuccessor")
	if err != nil {
		return nil, err
	}
	newSucc, err := addrField(out, "newSuccessor")
	if err != nil {
		return nil, err
	}
	return &model.SuccessorUpdatedEvent{ID: id, OldSuccessor: oldSucc, NewSuccessor: newSucc}, nil
}

// decodeFirst scans the receipt's logs in order and returns the unpacked
// fields of the first log that structurally matches the named event. Logs
// whose topics or data fail to parse against the schema are skipped. A
// confirmed receipt's log set is final, so no match is always
// heirloom.ErrEventNotFound.
func decodeFirst(receipt *types.Receipt, name string) (map[string]any, error) {
	ev, ok := contractABI.Events[name]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", name)
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	dataArgs := len(ev.Inputs) - len(indexed)

	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}
		if len(lg.Topics)-1 != len(indexed) {
			continue
		}

		out := make(map[string]any, len(ev.Inputs))
		if err := abi.ParseTopicsIntoMap(out, indexed, lg.Topics[1:]); err != nil {
			continue
		}
		if dataArgs > 0 {
			if err := contractABI.UnpackIntoMap(out, name, lg.Data); err != nil {
				continue
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%s: %w", name, heirloom.ErrEventNotFound)
}

func uintField(out map[string]any, key string) (uint64, error) {
	v, ok := out[key].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("event field %q: unexpected type %T", key, out[key])
	}
	return v.Uint64(), nil
}

func addrField(out map[string]any, key string) (common.Address, error) {
	v, ok := out[key].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event field %q: unexpected type %T", key, out[key])
	}
	return v, nil
}

func strField(out map[string]any, key string) (string, error) {
	v, ok := out[key].(string)
	if !ok {
		return "", fmt.Errorf("event field %q: unexpected type %T", key, out[key])
	}
	return v, nil
}
