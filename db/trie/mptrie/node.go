// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

const (
	branchNodeType    uint8 = 1
	extensionNodeType uint8 = 2
	leafNodeType      uint8 = 3
)

type (
	keyType []byte

	node interface {
		search(keyType, uint8) (node, error)
		upsert(keyType, uint8, []byte) (node, error)
		delete(keyType, uint8) (node, error)
		prove(keyType, uint8, *[][]byte) error
		hash() []byte
		serialize() []byte
	}

	// serNode is the wire form of every node type. Branches use Indices and Children, extensions use
	// Path (the shared nibble) and Value (the child hash), leaves use Path (the full key) and Value.
	serNode struct {
		Type     uint8
		Path     []byte
		Value    []byte
		Indices  []byte
		Children [][]byte
	}
)

func encodeNode(n *serNode) []byte {
	ser, err := rlp.EncodeToBytes(n)
	if err != nil {
		panic("failed to encode a trie node: " + err.Error())
	}
	return ser
}

func decodeNode(s []byte) (*serNode, error) {
	n := serNode{}
	if err := rlp.DecodeBytes(s, &n); err != nil {
		return nil, errors.Wrap(trie.ErrInvalidTrie, err.Error())
	}
	if n.Type == branchNodeType {
		if len(n.Indices) != len(n.Children) {
			return nil, errors.Wrap(trie.ErrInvalidTrie, "branch indices do not match children")
		}
		for i := 1; i < len(n.Indices); i++ {
			if n.Indices[i-1] >= n.Indices[i] {
				return nil, errors.Wrap(trie.ErrInvalidTrie, "branch indices are not sorted")
			}
		}
	}
	return &n, nil
}

func commonPrefixLength(key1, key2 []byte) uint8 {
	match := uint8(0)
	for int(match) < len(key1) && int(match) < len(key2) && key1[match] == key2[match] {
		match++
	}

	return match
}
