// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package childchain

import (
	"context"
	"strconv"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/finality"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/action/protocol/proofroot"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
)

const (
	// ProtocolID is the name of the child chain head relay, also its operating module name
	ProtocolID = "childchain"

	// HeadTopic is the receipt log topic of a relayed or published child head
	HeadTopic = "childchain.head"

	_namespace      = "ChildChain"
	_headsNamespace = "ChildHeads"
)

type (
	// BestHead is the latest relayed head of a child chain
	BestHead struct {
		RelayNumber uint64
		Number      uint64
		Hash        hash.Hash256
	}

	// Protocol relays the heads of child chains proven against finalized relay chain headers.
	// On the relay chain side it also publishes the heads through UpdateChildHead
	Protocol struct {
		headsToKeep uint64
	}
)

// NewProtocol creates the child chain protocol retaining headsToKeep heads per child chain
func NewProtocol(headsToKeep uint64) *Protocol {
	return &Protocol{headsToKeep: headsToKeep}
}

// HeadKey is the key of the published head of a child chain on the relay chain
func HeadKey(childID uint32) []byte {
	return state.Key(_namespace, []byte("head"), byteutil.Uint32ToBytesBigEndian(childID))
}

func bestHeadKey(childID uint32) []byte {
	return state.Key(_namespace, []byte("best"), byteutil.Uint32ToBytesBigEndian(childID))
}

func (p *Protocol) store(childID uint32) *proofroot.Store {
	return proofroot.NewStore(_headsNamespace+"."+strconv.FormatUint(uint64(childID), 10), p.headsToKeep)
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// Handle handles UpdateChildHead and SubmitChildHeads
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	switch act := act.(type) {
	case *action.UpdateChildHead:
		return p.handleUpdateChildHead(ctx, act, sm)
	case *action.SubmitChildHeads:
		return p.handleSubmitChildHeads(act, sm)
	}
	return nil, nil
}

func (p *Protocol) handleUpdateChildHead(ctx context.Context, act *action.UpdateChildHead, sm protocol.StateManager) (*action.Receipt, error) {
	if err := operating.EnsureOwner(ctx, sm); err != nil {
		return nil, err
	}
	var current block.Header
	err := sm.State(HeadKey(act.ChildID), &current)
	switch errors.Cause(err) {
	case nil:
		if act.Header.Number <= current.Number {
			return nil, errors.Wrapf(protocol.ErrStale, "child %d head %d, published %d", act.ChildID, act.Header.Number, current.Number)
		}
	case state.ErrStateNotExist:
	default:
		return nil, err
	}
	if err := sm.PutState(HeadKey(act.ChildID), &act.Header); err != nil {
		return nil, err
	}
	h := act.Header.Hash()
	return (&action.Receipt{}).AddLogs(&action.Log{Topic: HeadTopic, Data: h[:]}), nil
}

func (p *Protocol) handleSubmitChildHeads(act *action.SubmitChildHeads, sm protocol.StateManager) (*action.Receipt, error) {
	if err := operating.EnsureOperational(sm, ProtocolID); err != nil {
		return nil, err
	}
	relay, err := finality.ImportedHeader(sm, act.RelayBlock)
	if err != nil {
		return nil, err
	}
	reader, err := protocol.NewProofReader(relay.StateRoot, act.Proof)
	if err != nil {
		return nil, err
	}
	heads := make([]block.Header, len(act.ChildIDs))
	for i, id := range act.ChildIDs {
		best, err := BestChildHead(sm, id)
		switch errors.Cause(err) {
		case nil:
			if relay.Number <= best.RelayNumber {
				return nil, errors.Wrapf(protocol.ErrStale, "child %d already relayed at relay block %d", id, best.RelayNumber)
			}
		case state.ErrStateNotExist:
			best = nil
		default:
			return nil, err
		}
		if err := reader.State(HeadKey(id), &heads[i]); err != nil {
			if errors.Cause(err) == state.ErrStateNotExist {
				return nil, errors.Wrapf(protocol.ErrProofVerificationFailed, "child %d is absent from the proof", id)
			}
			return nil, err
		}
		if best != nil && heads[i].Number < best.Number {
			return nil, errors.Wrapf(protocol.ErrStale, "child %d head %d, best %d", id, heads[i].Number, best.Number)
		}
	}
	if err := reader.Close(); err != nil {
		return nil, err
	}

	receipt := &action.Receipt{}
	for i, id := range act.ChildIDs {
		head := &heads[i]
		headHash := head.Hash()
		if _, err := p.store(id).NoteNewRoots(sm, []action.RootEntry{{Key: headHash, Root: head.StateRoot}}); err != nil {
			return nil, err
		}
		if err := sm.PutState(bestHeadKey(id), &BestHead{
			RelayNumber: relay.Number,
			Number:      head.Number,
			Hash:        headHash,
		}); err != nil {
			return nil, err
		}
		receipt.AddLogs(&action.Log{Topic: HeadTopic, Data: headHash[:]})
		log.L().Debug("Relayed child head.",
			zap.Uint32("child", id),
			zap.Uint64("number", head.Number),
			log.Hex("hash", headHash[:]))
	}
	return receipt, nil
}

// BestChildHead returns the latest relayed head of the child chain
func BestChildHead(sr protocol.StateReader, childID uint32) (*BestHead, error) {
	var best BestHead
	if err := sr.State(bestHeadKey(childID), &best); err != nil {
		return nil, err
	}
	return &best, nil
}

// PublishedHead returns the head published by UpdateChildHead
func PublishedHead(sr protocol.StateReader, childID uint32) (*block.Header, error) {
	var h block.Header
	if err := sr.State(HeadKey(childID), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// HeaderChain returns the retained heads of one child chain
func (p *Protocol) HeaderChain(childID uint32) *HeaderChain {
	return &HeaderChain{store: p.store(childID)}
}

// HeaderChain looks up the state roots of relayed child heads
type HeaderChain struct {
	store *proofroot.Store
}

// StateRoot returns the state root of a retained child head
func (hc *HeaderChain) StateRoot(sr protocol.StateReader, blockHash hash.Hash256) (hash.Hash256, error) {
	root, err := hc.store.GetRoot(sr, blockHash)
	if errors.Cause(err) == state.ErrStateNotExist {
		return hash.ZeroHash256, errors.Wrapf(protocol.ErrUnknownHeader, "child head %x", blockHash)
	}
	return root, err
}

// RetainedHeads returns the hashes of the retained child heads from the oldest
func (hc *HeaderChain) RetainedHeads(sr protocol.StateReader) ([]hash.Hash256, error) {
	return hc.store.RootIndex(sr)
}
