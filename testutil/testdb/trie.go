// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testdb

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"

	"github.com/iotexproject/iotex-bridge/db/trie"
	"github.com/iotexproject/iotex-bridge/db/trie/mptrie"
	"github.com/iotexproject/iotex-bridge/state"
)

// StateTrie is an in-memory state trie of a bridged chain, producing storage proofs
type StateTrie struct {
	tr trie.Trie
}

// NewStateTrie creates an empty state trie
func NewStateTrie() (*StateTrie, error) {
	tr, err := mptrie.New()
	if err != nil {
		return nil, err
	}
	if err := tr.Start(context.Background()); err != nil {
		return nil, err
	}
	return &StateTrie{tr: tr}, nil
}

// PutState stores the serialized state under the key
func (st *StateTrie) PutState(key []byte, s interface{}) error {
	ss, err := state.Serialize(s)
	if err != nil {
		return err
	}
	return st.tr.Upsert(key, ss)
}

// Root returns the current state root
func (st *StateTrie) Root() hash.Hash256 {
	root, err := st.tr.RootHash()
	if err != nil {
		panic(err)
	}
	return hash.BytesToHash256(root)
}

// Prove returns one proof covering every key
func (st *StateTrie) Prove(keys ...[]byte) ([][]byte, error) {
	proofs := make([][][]byte, 0, len(keys))
	for _, k := range keys {
		p, err := st.tr.Prove(k)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return mptrie.MergeProofs(proofs...), nil
}
