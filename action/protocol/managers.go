// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

type (
	// StateReader defines an interface to read the state trie. Keys are 32-byte trie keys
	StateReader interface {
		Height() uint64
		State(key []byte, s interface{}) error
	}

	// StateManager defines the interface to mutate the state trie within an action
	StateManager interface {
		StateReader
		PutState(key []byte, s interface{}) error
		DelState(key []byte) error
		Snapshot() int
		Revert(int) error
	}
)
