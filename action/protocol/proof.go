// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/db/trie"
	"github.com/iotexproject/iotex-bridge/db/trie/mptrie"
	"github.com/iotexproject/iotex-bridge/state"
)

// ProofReader reads states of the bridged chain out of a storage proof
type ProofReader struct {
	pc *mptrie.ProofChecker
}

// NewProofReader creates a reader of the proof rooted at the state root
func NewProofReader(root hash.Hash256, proof [][]byte) (*ProofReader, error) {
	pc, err := mptrie.NewProofChecker(root[:], proof)
	if err != nil {
		return nil, errors.Wrap(ErrProofVerificationFailed, err.Error())
	}
	return &ProofReader{pc: pc}, nil
}

// State decodes the proven value of the key into s. A key proven absent returns
// state.ErrStateNotExist, a malformed proof returns ErrProofVerificationFailed
func (r *ProofReader) State(key []byte, s interface{}) error {
	value, err := r.pc.Read(key)
	switch errors.Cause(err) {
	case nil:
	case trie.ErrNotExist:
		return errors.Wrapf(state.ErrStateNotExist, "key %x is absent from the proof", key)
	default:
		return errors.Wrap(ErrProofVerificationFailed, err.Error())
	}
	if err := state.Deserialize(s, value); err != nil {
		return errors.Wrap(ErrProofVerificationFailed, err.Error())
	}
	return nil
}

// Close fails if the proof carried nodes that no read touched
func (r *ProofReader) Close() error {
	if err := r.pc.EnsureNoUnusedNodes(); err != nil {
		return errors.Wrap(ErrProofVerificationFailed, err.Error())
	}
	return nil
}
