// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"github.com/iotexproject/iotex-bridge/db/trie"
)

// extensionNode defines a node with a path and point to a child branch
type extensionNode struct {
	mpt       *merklePatriciaTrie
	path      []byte
	childHash []byte
	ser       []byte
	hashVal   []byte
}

func newExtensionNode(mpt *merklePatriciaTrie, path []byte, childHash []byte) (*extensionNode, error) {
	e := &extensionNode{mpt: mpt, path: path, childHash: childHash}
	if err := mpt.putNode(e); err != nil {
		return nil, err
	}
	return e, nil
}

func newExtensionNodeFromSer(mpt *merklePatriciaTrie, ser *serNode, hashVal []byte) *extensionNode {
	return &extensionNode{mpt: mpt, path: ser.Path, childHash: ser.Value, hashVal: hashVal}
}

func (e *extensionNode) search(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("extensionNode", "search").Inc()
	matched := commonPrefixLength(e.path, key[offset:])
	if matched != uint8(len(e.path)) {
		return nil, trie.ErrNotExist
	}
	child, err := e.child()
	if err != nil {
		return nil, err
	}

	return child.search(key, offset+matched)
}

func (e *extensionNode) upsert(key keyType, offset uint8, value []byte) (node, error) {
	trieMtc.WithLabelValues("extensionNode", "upsert").Inc()
	matched := commonPrefixLength(e.path, key[offset:])
	if matched == uint8(len(e.path)) {
		child, err := e.child()
		if err != nil {
			return nil, err
		}
		newChild, err := child.upsert(key, offset+matched, value)
		if err != nil {
			return nil, err
		}
		return newExtensionNode(e.mpt, e.path, newChild.hash())
	}
	// split at the first diverging byte
	eb := e.path[matched]
	remainHash := e.childHash
	if rest := e.path[matched+1:]; len(rest) > 0 {
		enode, err := newExtensionNode(e.mpt, append([]byte{}, rest...), e.childHash)
		if err != nil {
			return nil, err
		}
		remainHash = enode.hash()
	}
	lnode, err := newLeafNode(e.mpt, key, value)
	if err != nil {
		return nil, err
	}
	bnode, err := newBranchNode(
		e.mpt,
		map[byte][]byte{
			eb:                  remainHash,
			key[offset+matched]: lnode.hash(),
		},
		false,
	)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return bnode, nil
	}
	return newExtensionNode(e.mpt, append([]byte{}, key[offset:offset+matched]...), bnode.hash())
}

func (e *extensionNode) delete(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("extensionNode", "delete").Inc()
	matched := commonPrefixLength(e.path, key[offset:])
	if matched != uint8(len(e.path)) {
		return nil, trie.ErrNotExist
	}
	child, err := e.child()
	if err != nil {
		return nil, err
	}
	newChild, err := child.delete(key, offset+matched)
	if err != nil {
		return nil, err
	}
	switch n := newChild.(type) {
	case nil:
		return nil, nil
	case *extensionNode:
		path := append(append([]byte{}, e.path...), n.path...)
		return newExtensionNode(e.mpt, path, n.childHash)
	case *leafNode:
		return n, nil
	default:
		return newExtensionNode(e.mpt, e.path, n.hash())
	}
}

func (e *extensionNode) prove(key keyType, offset uint8, proof *[][]byte) error {
	*proof = append(*proof, e.serialize())
	matched := commonPrefixLength(e.path, key[offset:])
	if matched != uint8(len(e.path)) {
		return nil
	}
	child, err := e.child()
	if err != nil {
		return err
	}
	return child.prove(key, offset+matched, proof)
}

func (e *extensionNode) child() (node, error) {
	trieMtc.WithLabelValues("extensionNode", "child").Inc()
	return e.mpt.loadNode(e.childHash)
}

func (e *extensionNode) hash() []byte {
	if e.hashVal == nil {
		e.hashVal = e.mpt.hashFunc(e.serialize())
	}
	return e.hashVal
}

func (e *extensionNode) serialize() []byte {
	if e.ser == nil {
		e.ser = encodeNode(&serNode{
			Type:  extensionNodeType,
			Path:  e.path,
			Value: e.childHash,
		})
	}
	return e.ser
}
