// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"bytes"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

type leafNode struct {
	mpt     *merklePatriciaTrie
	key     keyType
	value   []byte
	ser     []byte
	hashVal []byte
}

func newLeafNode(mpt *merklePatriciaTrie, key keyType, value []byte) (*leafNode, error) {
	l := &leafNode{
		mpt:   mpt,
		key:   append(keyType{}, key...),
		value: append([]byte{}, value...),
	}
	if err := mpt.putNode(l); err != nil {
		return nil, err
	}
	return l, nil
}

func newLeafNodeFromSer(mpt *merklePatriciaTrie, ser *serNode, hashVal []byte) *leafNode {
	return &leafNode{mpt: mpt, key: ser.Path, value: ser.Value, hashVal: hashVal}
}

func (l *leafNode) Key() []byte {
	return l.key
}

func (l *leafNode) Value() []byte {
	return l.value
}

func (l *leafNode) search(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("leafNode", "search").Inc()
	if !bytes.Equal(l.key, key) {
		return nil, trie.ErrNotExist
	}

	return l, nil
}

func (l *leafNode) upsert(key keyType, offset uint8, value []byte) (node, error) {
	trieMtc.WithLabelValues("leafNode", "upsert").Inc()
	if bytes.Equal(l.key, key) {
		return newLeafNode(l.mpt, key, value)
	}
	// split into another leaf node and create branch/extension node
	matched := commonPrefixLength(l.key[offset:], key[offset:])
	newl, err := newLeafNode(l.mpt, key, value)
	if err != nil {
		return nil, err
	}
	bnode, err := newBranchNode(
		l.mpt,
		map[byte][]byte{
			key[offset+matched]:   newl.hash(),
			l.key[offset+matched]: l.hash(),
		},
		false,
	)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return bnode, nil
	}

	return newExtensionNode(l.mpt, append([]byte{}, key[offset:offset+matched]...), bnode.hash())
}

func (l *leafNode) delete(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("leafNode", "delete").Inc()
	if !bytes.Equal(l.key, key) {
		return nil, trie.ErrNotExist
	}
	return nil, nil
}

func (l *leafNode) prove(_ keyType, _ uint8, proof *[][]byte) error {
	*proof = append(*proof, l.serialize())
	return nil
}

func (l *leafNode) hash() []byte {
	if l.hashVal == nil {
		l.hashVal = l.mpt.hashFunc(l.serialize())
	}
	return l.hashVal
}

func (l *leafNode) serialize() []byte {
	if l.ser == nil {
		l.ser = encodeNode(&serNode{
			Type:  leafNodeType,
			Path:  l.key,
			Value: l.value,
		})
	}
	return l.ser
}
