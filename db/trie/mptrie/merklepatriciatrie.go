// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"bytes"
	"context"
	"sync"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

var (
	trieMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_bridge_trie",
			Help: "IoTeX bridge trie operations",
		},
		[]string{"node", "type"},
	)
)

func init() {
	prometheus.MustRegister(trieMtc)
}

type (
	// HashFunc defines a function to generate the hash which will be used as key in db
	HashFunc func([]byte) []byte

	// merklePatriciaTrie keeps every node it ever wrote, so any historical root stays readable
	// and provable
	merklePatriciaTrie struct {
		mutex     sync.RWMutex
		keyLength int
		root      *branchNode
		rootHash  []byte
		kvStore   trie.KVStore
		hashFunc  HashFunc
	}
)

// DefaultHashFunc implements a default hash function
func DefaultHashFunc(data []byte) []byte {
	h := hash.Hash256b(data)
	return h[:]
}

// Option sets parameters for SameKeyLenTrieContext construction parameter
type Option func(*merklePatriciaTrie) error

// KeyLengthOption sets the length of the keys saved in trie
func KeyLengthOption(len int) Option {
	return func(mpt *merklePatriciaTrie) error {
		if len <= 0 || len > 128 {
			return errors.New("invalid key length")
		}
		mpt.keyLength = len
		return nil
	}
}

// RootHashOption sets the root hash for the trie
func RootHashOption(h []byte) Option {
	return func(mpt *merklePatriciaTrie) error {
		mpt.rootHash = make([]byte, len(h))
		copy(mpt.rootHash, h)
		return nil
	}
}

// HashFuncOption sets the hash func for the trie
func HashFuncOption(hashFunc HashFunc) Option {
	return func(mpt *merklePatriciaTrie) error {
		mpt.hashFunc = hashFunc
		return nil
	}
}

// KVStoreOption sets the kvStore for the trie
func KVStoreOption(kvStore trie.KVStore) Option {
	return func(mpt *merklePatriciaTrie) error {
		mpt.kvStore = kvStore
		return nil
	}
}

// New creates a trie, keys are 32 bytes by default
func New(options ...Option) (trie.Trie, error) {
	t := &merklePatriciaTrie{
		keyLength: 32,
		hashFunc:  DefaultHashFunc,
		kvStore:   trie.NewMemKVStore(),
	}
	for _, opt := range options {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// EmptyRootHash returns the root hash of a trie without any entry, under the default hash func
func EmptyRootHash() []byte {
	return emptyRootHash(DefaultHashFunc)
}

func emptyRootHash(hashFunc HashFunc) []byte {
	b := &branchNode{children: map[byte][]byte{}, indices: NewSortedList(nil)}
	return hashFunc(b.serialize())
}

func (mpt *merklePatriciaTrie) Start(ctx context.Context) error {
	mpt.mutex.Lock()
	defer mpt.mutex.Unlock()

	return mpt.setRootHash(mpt.rootHash)
}

func (mpt *merklePatriciaTrie) Stop(_ context.Context) error {
	return nil
}

func (mpt *merklePatriciaTrie) RootHash() ([]byte, error) {
	mpt.mutex.RLock()
	defer mpt.mutex.RUnlock()
	if mpt.root == nil {
		return nil, errors.Wrap(trie.ErrInvalidTrie, "trie has not started")
	}
	h := make([]byte, len(mpt.rootHash))
	copy(h, mpt.rootHash)
	return h, nil
}

func (mpt *merklePatriciaTrie) SetRootHash(rootHash []byte) error {
	mpt.mutex.Lock()
	defer mpt.mutex.Unlock()

	return mpt.setRootHash(rootHash)
}

func (mpt *merklePatriciaTrie) IsEmpty() bool {
	mpt.mutex.RLock()
	defer mpt.mutex.RUnlock()

	return mpt.root == nil || len(mpt.root.children) == 0
}

func (mpt *merklePatriciaTrie) Get(key []byte) ([]byte, error) {
	mpt.mutex.RLock()
	defer mpt.mutex.RUnlock()

	kt, err := mpt.checkKeyType(key)
	if err != nil {
		return nil, err
	}
	t, err := mpt.root.search(kt, 0)
	if err != nil {
		return nil, err
	}
	if l, ok := t.(*leafNode); ok {
		return l.Value(), nil
	}

	return nil, trie.ErrInvalidTrie
}

func (mpt *merklePatriciaTrie) Delete(key []byte) error {
	mpt.mutex.Lock()
	defer mpt.mutex.Unlock()

	kt, err := mpt.checkKeyType(key)
	if err != nil {
		return err
	}
	newRoot, err := mpt.root.delete(kt, 0)
	if err != nil {
		return errors.Wrapf(trie.ErrNotExist, "key %x does not exist", kt)
	}
	bn, ok := newRoot.(*branchNode)
	if !ok {
		panic("unexpected new root")
	}

	return mpt.resetRoot(bn)
}

func (mpt *merklePatriciaTrie) Upsert(key []byte, value []byte) error {
	mpt.mutex.Lock()
	defer mpt.mutex.Unlock()

	kt, err := mpt.checkKeyType(key)
	if err != nil {
		return err
	}
	newRoot, err := mpt.root.upsert(kt, 0, value)
	if err != nil {
		return err
	}
	bn, ok := newRoot.(*branchNode)
	if !ok {
		panic("unexpected new root")
	}

	return mpt.resetRoot(bn)
}

func (mpt *merklePatriciaTrie) Prove(key []byte) ([][]byte, error) {
	mpt.mutex.RLock()
	defer mpt.mutex.RUnlock()

	kt, err := mpt.checkKeyType(key)
	if err != nil {
		return nil, err
	}
	proof := [][]byte{}
	if err := mpt.root.prove(kt, 0, &proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func (mpt *merklePatriciaTrie) setRootHash(rootHash []byte) error {
	if len(rootHash) == 0 || bytes.Equal(rootHash, emptyRootHash(mpt.hashFunc)) {
		emptyRoot, err := newBranchNode(mpt, map[byte][]byte{}, true)
		if err != nil {
			return err
		}
		return mpt.resetRoot(emptyRoot)
	}
	node, err := mpt.loadNode(rootHash)
	if err != nil {
		return err
	}
	root, ok := node.(*branchNode)
	if !ok {
		return errors.Wrapf(trie.ErrInvalidTrie, "root should be a branch")
	}
	root.isRoot = true

	return mpt.resetRoot(root)
}

func (mpt *merklePatriciaTrie) resetRoot(newRoot *branchNode) error {
	mpt.root = newRoot
	mpt.rootHash = newRoot.hash()

	return nil
}

func (mpt *merklePatriciaTrie) checkKeyType(key []byte) (keyType, error) {
	if mpt.root == nil {
		return nil, errors.Wrap(trie.ErrInvalidTrie, "trie has not started")
	}
	if len(key) != mpt.keyLength {
		return nil, errors.Errorf("invalid key length %d", len(key))
	}
	kt := make([]byte, mpt.keyLength)
	copy(kt, key)

	return kt, nil
}

func (mpt *merklePatriciaTrie) putNode(n node) error {
	return mpt.kvStore.Put(n.hash(), n.serialize())
}

func (mpt *merklePatriciaTrie) loadNode(key []byte) (node, error) {
	trieMtc.WithLabelValues("hashNode", "load").Inc()
	s, err := mpt.kvStore.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get key %x", key)
	}
	ser, err := decodeNode(s)
	if err != nil {
		return nil, err
	}
	switch ser.Type {
	case branchNodeType:
		return newBranchNodeFromSer(mpt, ser, key), nil
	case extensionNodeType:
		return newExtensionNodeFromSer(mpt, ser, key), nil
	case leafNodeType:
		return newLeafNodeFromSer(mpt, ser, key), nil
	}
	return nil, errors.Wrapf(trie.ErrInvalidTrie, "invalid node type %d", ser.Type)
}
