// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"context"
	"sync"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/db/trie"
	"github.com/iotexproject/iotex-bridge/db/trie/mptrie"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
)

const (
	// StateTrieNamespace is the namespace of the state trie nodes
	StateTrieNamespace = "StateTrie"
	// MetaNamespace is the namespace of the factory meta data
	MetaNamespace = "StateMeta"
)

var (
	// CurrentHeightKey indicates the key of current factory height in underlying DB
	CurrentHeightKey = []byte("currentHeight")
	// CurrentRootKey indicates the key of current state root in underlying DB
	CurrentRootKey = []byte("currentRoot")

	// ErrUnknownRoot indicates the requested state root has never been committed
	ErrUnknownRoot = errors.New("unknown state root")

	heightMtc = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iotex_bridge_state_height",
			Help: "Height of the committed state",
		},
	)
)

func init() {
	prometheus.MustRegister(heightMtc)
}

type (
	// Factory manages the committed state of the chain. Every committed state root stays readable
	Factory interface {
		Start(context.Context) error
		Stop(context.Context) error
		// Height returns the committed height, false if nothing is committed yet
		Height() (uint64, bool)
		// RootHash returns the committed state root
		RootHash() hash.Hash256
		// NewWorkingSet creates a working set on top of the committed state for the block at height
		NewWorkingSet(height uint64) (WorkingSet, error)
		// Commit writes the working set into the db together with the extra entries of the batch
		Commit(WorkingSet, *db.Batch) error
		// State reads a state at the committed root
		State(key []byte, s interface{}) error
		// StateAt reads a state at a historical root
		StateAt(root hash.Hash256, key []byte, s interface{}) error
		// Prove returns a merged proof of the keys at a historical root
		Prove(root hash.Hash256, keys ...[]byte) ([][]byte, error)
	}

	factory struct {
		mu        sync.RWMutex
		dao       db.KVStore
		registry  *protocol.Registry
		height    uint64
		committed bool
		root      hash.Hash256
	}
)

// NewFactory creates a state factory over the kv store
func NewFactory(dao db.KVStore, registry *protocol.Registry) Factory {
	return &factory{
		dao:      dao,
		registry: registry,
		root:     hash.BytesToHash256(mptrie.EmptyRootHash()),
	}
}

func (sf *factory) Start(ctx context.Context) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	h, err := sf.dao.Get(MetaNamespace, CurrentHeightKey)
	switch errors.Cause(err) {
	case nil:
	case db.ErrNotExist:
		return nil
	default:
		return errors.Wrap(err, "failed to read factory height")
	}
	root, err := sf.dao.Get(MetaNamespace, CurrentRootKey)
	if err != nil {
		return errors.Wrap(err, "failed to read factory root")
	}
	sf.height = byteutil.BytesToUint64BigEndian(h)
	sf.root = hash.BytesToHash256(root)
	sf.committed = true
	heightMtc.Set(float64(sf.height))
	log.L().Info("Loaded state.", zap.Uint64("height", sf.height), log.Hex("root", sf.root[:]))
	return nil
}

func (sf *factory) Stop(_ context.Context) error {
	return nil
}

func (sf *factory) Height() (uint64, bool) {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.height, sf.committed
}

func (sf *factory) RootHash() hash.Hash256 {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.root
}

func (sf *factory) NewWorkingSet(height uint64) (WorkingSet, error) {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	if sf.committed && height != sf.height+1 {
		return nil, errors.Errorf("invalid working set height %d, committed height %d", height, sf.height)
	}
	nodes := trie.NewBatchKVStore(StateTrieNamespace, sf.dao)
	tr, err := sf.openTrie(nodes, sf.root)
	if err != nil {
		return nil, err
	}
	return newWorkingSet(height, sf.registry, nodes, tr), nil
}

func (sf *factory) Commit(w WorkingSet, b *db.Batch) error {
	ws, ok := w.(*workingSet)
	if !ok {
		return errors.Errorf("unexpected working set type %T", w)
	}
	root, err := ws.RootHash()
	if err != nil {
		return err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.committed && ws.height != sf.height+1 {
		return errors.Errorf("invalid working set height %d, committed height %d", ws.height, sf.height)
	}
	ws.flush(b)
	b.Put(MetaNamespace, CurrentHeightKey, byteutil.Uint64ToBytesBigEndian(ws.height))
	b.Put(MetaNamespace, CurrentRootKey, root[:])
	if err := sf.dao.WriteBatch(b); err != nil {
		return errors.Wrap(err, "failed to commit working set")
	}
	sf.height = ws.height
	sf.root = root
	sf.committed = true
	heightMtc.Set(float64(sf.height))
	return nil
}

func (sf *factory) State(key []byte, s interface{}) error {
	return sf.StateAt(sf.RootHash(), key, s)
}

func (sf *factory) StateAt(root hash.Hash256, key []byte, s interface{}) error {
	stateDBMtc.WithLabelValues("get").Inc()
	tr, err := sf.openTrie(trie.NewBatchKVStore(StateTrieNamespace, sf.dao), root)
	if err != nil {
		return err
	}
	return readState(tr, key, s)
}

func (sf *factory) Prove(root hash.Hash256, keys ...[]byte) ([][]byte, error) {
	tr, err := sf.openTrie(trie.NewBatchKVStore(StateTrieNamespace, sf.dao), root)
	if err != nil {
		return nil, err
	}
	proofs := make([][][]byte, 0, len(keys))
	for _, k := range keys {
		p, err := tr.Prove(k)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to prove key %x", k)
		}
		proofs = append(proofs, p)
	}
	return mptrie.MergeProofs(proofs...), nil
}

func (sf *factory) openTrie(nodes trie.KVStore, root hash.Hash256) (trie.Trie, error) {
	tr, err := mptrie.New(mptrie.KVStoreOption(nodes), mptrie.RootHashOption(root[:]))
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate state trie")
	}
	if err := tr.Start(context.Background()); err != nil {
		if errors.Cause(err) == trie.ErrNotExist {
			return nil, errors.Wrapf(ErrUnknownRoot, "root = %x", root)
		}
		return nil, errors.Wrapf(err, "failed to load state trie from root = %x", root)
	}
	return tr, nil
}
