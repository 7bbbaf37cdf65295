// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package trie

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
)

var (
	// ErrInvalidTrie indicates something wrong causing invalid operation
	ErrInvalidTrie = errors.New("invalid trie operation")

	// ErrNotExist indicates entry does not exist
	ErrNotExist = errors.New("not exist in trie")

	// ErrInvalidProof indicates a proof which cannot be checked against the claimed root
	ErrInvalidProof = errors.New("invalid trie proof")
)

type (
	// Trie is the interface of Merkle Patricia Trie
	Trie interface {
		lifecycle.StartStopper
		// Upsert inserts a new entry
		Upsert([]byte, []byte) error
		// Get retrieves an existing entry
		Get([]byte) ([]byte, error)
		// Delete deletes an entry
		Delete([]byte) error
		// RootHash returns trie's root hash
		RootHash() ([]byte, error)
		// SetRootHash sets a new root to trie
		SetRootHash([]byte) error
		// IsEmpty returns true is this is an empty trie
		IsEmpty() bool
		// Prove returns the serialized nodes on the path of the key, which prove either the value
		// of the key or its absence
		Prove([]byte) ([][]byte, error)
	}

	// KVStore defines an interface for storing trie nodes
	KVStore interface {
		Put([]byte, []byte) error
		Get([]byte) ([]byte, error)
	}
)
