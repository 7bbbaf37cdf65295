// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/db/trie"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/state"
)

var (
	stateDBMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_bridge_state_db",
			Help: "IoTeX bridge state DB operations",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(stateDBMtc)
}

type (
	// WorkingSet defines an interface for working set of states changes
	WorkingSet interface {
		protocol.StateManager
		// RunAction applies a signed action, the state is reverted if the action fails
		RunAction(context.Context, *action.SealedEnvelope) (*action.Receipt, error)
		// CreateGenesisStates creates the initial state of every protocol
		CreateGenesisStates(context.Context) error
		RootHash() (hash.Hash256, error)
	}

	// workingSet implements WorkingSet interface, tracks pending changes to the state trie
	workingSet struct {
		height    uint64
		registry  *protocol.Registry
		nodes     *trie.BatchKVStore
		stateTrie trie.Trie
		trieRoots map[int][]byte
		snapshot  int
	}
)

func newWorkingSet(height uint64, registry *protocol.Registry, nodes *trie.BatchKVStore, tr trie.Trie) *workingSet {
	return &workingSet{
		height:    height,
		registry:  registry,
		nodes:     nodes,
		stateTrie: tr,
		trieRoots: make(map[int][]byte),
	}
}

// Height returns the height of the block being built
func (ws *workingSet) Height() uint64 {
	return ws.height
}

// RootHash returns the hash of the root node of the state trie
func (ws *workingSet) RootHash() (hash.Hash256, error) {
	root, err := ws.stateTrie.RootHash()
	if err != nil {
		return hash.ZeroHash256, err
	}
	return hash.BytesToHash256(root), nil
}

// Snapshot records the current trie root
func (ws *workingSet) Snapshot() int {
	root, err := ws.stateTrie.RootHash()
	if err != nil {
		log.L().Panic("failed to get trie root", zap.Error(err))
	}
	ws.snapshot++
	ws.trieRoots[ws.snapshot] = root
	return ws.snapshot
}

// Revert restores the trie root of a snapshot
func (ws *workingSet) Revert(snapshot int) error {
	root, ok := ws.trieRoots[snapshot]
	if !ok {
		return errors.Wrapf(trie.ErrInvalidTrie, "failed to get trie root for snapshot = %d", snapshot)
	}
	for s := range ws.trieRoots {
		if s > snapshot {
			delete(ws.trieRoots, s)
		}
	}
	return ws.stateTrie.SetRootHash(root)
}

// State pulls a state from the trie
func (ws *workingSet) State(key []byte, s interface{}) error {
	stateDBMtc.WithLabelValues("get").Inc()
	return readState(ws.stateTrie, key, s)
}

// PutState puts a state into the trie
func (ws *workingSet) PutState(key []byte, s interface{}) error {
	stateDBMtc.WithLabelValues("put").Inc()
	ss, err := state.Serialize(s)
	if err != nil {
		return errors.Wrapf(err, "failed to convert state %v to bytes", s)
	}
	return ws.stateTrie.Upsert(key, ss)
}

// DelState deletes a state from the trie, deleting a missing state is a no-op
func (ws *workingSet) DelState(key []byte) error {
	stateDBMtc.WithLabelValues("delete").Inc()
	err := ws.stateTrie.Delete(key)
	if errors.Cause(err) == trie.ErrNotExist {
		return nil
	}
	return err
}

// CreateGenesisStates creates the initial state of every protocol
func (ws *workingSet) CreateGenesisStates(ctx context.Context) error {
	for _, p := range ws.registry.All() {
		if gsc, ok := p.(protocol.GenesisStateCreator); ok {
			if err := gsc.CreateGenesisStates(ctx, ws); err != nil {
				return errors.Wrapf(err, "failed to create genesis states for protocol %s", p.Name())
			}
		}
	}
	return nil
}

// RunAction applies a signed action
func (ws *workingSet) RunAction(ctx context.Context, selp *action.SealedEnvelope) (*action.Receipt, error) {
	if err := selp.VerifySignature(); err != nil {
		return nil, err
	}
	act := selp.Action()
	if err := act.SanityCheck(); err != nil {
		return nil, err
	}
	actHash, err := selp.Hash()
	if err != nil {
		return nil, err
	}
	ctx = protocol.WithActionCtx(ctx, protocol.ActionCtx{
		Caller:     selp.SenderAddress(),
		ActionHash: actHash,
		Nonce:      selp.Nonce(),
	})
	snapshot := ws.Snapshot()
	receipt, err := ws.runAction(ctx, act)
	if err != nil {
		if revertErr := ws.Revert(snapshot); revertErr != nil {
			log.L().Panic("failed to revert state", zap.Error(revertErr))
		}
		return nil, err
	}
	receipt.ActionHash = actHash
	receipt.BlockHeight = ws.height
	return receipt, nil
}

func (ws *workingSet) runAction(ctx context.Context, act action.Action) (*action.Receipt, error) {
	protocols := ws.registry.All()
	for _, p := range protocols {
		if v, ok := p.(protocol.ActionValidator); ok {
			if err := v.Validate(ctx, act, ws); err != nil {
				return nil, err
			}
		}
	}
	var receipt *action.Receipt
	for _, p := range protocols {
		r, err := p.Handle(ctx, act, ws)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol %s failed to handle action", p.Name())
		}
		if r != nil {
			receipt = r
			break
		}
	}
	if receipt == nil {
		return nil, errors.Wrapf(action.ErrUnknownType, "no protocol handles action type %d", act.Type())
	}
	for _, p := range protocols {
		if h, ok := p.(protocol.PostActionHandler); ok {
			if err := h.PostHandle(ctx, ws); err != nil {
				return nil, err
			}
		}
	}
	return receipt, nil
}

func (ws *workingSet) flush(b *db.Batch) {
	ws.nodes.Flush(b)
}

func readState(tr trie.Trie, key []byte, s interface{}) error {
	mstate, err := tr.Get(key)
	if errors.Cause(err) == trie.ErrNotExist {
		return errors.Wrapf(state.ErrStateNotExist, "key = %x", key)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to get state of %x", key)
	}
	return state.Deserialize(s, mstate)
}
