// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

// branchNode points to up to 256 children by their hashes. The root of a trie is always a branch,
// which may hold fewer than two children.
type branchNode struct {
	mpt      *merklePatriciaTrie
	children map[byte][]byte
	indices  *SortedList
	isRoot   bool
	ser      []byte
	hashVal  []byte
}

func newBranchNode(mpt *merklePatriciaTrie, children map[byte][]byte, isRoot bool) (*branchNode, error) {
	if len(children) == 0 && !isRoot {
		return nil, errors.New("branch node children cannot be empty")
	}
	b := &branchNode{
		mpt:      mpt,
		children: children,
		indices:  NewSortedList(children),
		isRoot:   isRoot,
	}
	if err := mpt.putNode(b); err != nil {
		return nil, err
	}
	return b, nil
}

func newBranchNodeFromSer(mpt *merklePatriciaTrie, ser *serNode, hashVal []byte) *branchNode {
	children := make(map[byte][]byte, len(ser.Indices))
	for i, idx := range ser.Indices {
		children[idx] = ser.Children[i]
	}
	return &branchNode{
		mpt:      mpt,
		children: children,
		indices:  NewSortedList(children),
		hashVal:  hashVal,
	}
}

func (b *branchNode) child(key byte) (node, error) {
	h, ok := b.children[key]
	if !ok {
		return nil, trie.ErrNotExist
	}
	return b.mpt.loadNode(h)
}

func (b *branchNode) search(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("branchNode", "search").Inc()
	child, err := b.child(key[offset])
	if err != nil {
		return nil, err
	}
	return child.search(key, offset+1)
}

func (b *branchNode) upsert(key keyType, offset uint8, value []byte) (node, error) {
	trieMtc.WithLabelValues("branchNode", "upsert").Inc()
	var (
		newChild node
		err      error
	)
	offsetKey := key[offset]
	if h, ok := b.children[offsetKey]; ok {
		child, loadErr := b.mpt.loadNode(h)
		if loadErr != nil {
			return nil, loadErr
		}
		newChild, err = child.upsert(key, offset+1, value)
	} else {
		newChild, err = newLeafNode(b.mpt, key, value)
	}
	if err != nil {
		return nil, err
	}

	return b.updateChild(offsetKey, newChild)
}

func (b *branchNode) delete(key keyType, offset uint8) (node, error) {
	trieMtc.WithLabelValues("branchNode", "delete").Inc()
	offsetKey := key[offset]
	child, err := b.child(offsetKey)
	if err != nil {
		return nil, err
	}
	newChild, err := child.delete(key, offset+1)
	if err != nil {
		return nil, err
	}
	if newChild != nil || b.isRoot || len(b.children) > 2 {
		return b.updateChild(offsetKey, newChild)
	}
	if len(b.children) != 2 {
		panic("branch should have at least 2 children before deleting")
	}
	// the single remaining child replaces this branch
	var (
		orphanKey  byte
		orphanHash []byte
	)
	for i, h := range b.children {
		if i != offsetKey {
			orphanKey, orphanHash = i, h
			break
		}
	}
	orphan, err := b.mpt.loadNode(orphanHash)
	if err != nil {
		return nil, err
	}
	switch n := orphan.(type) {
	case *extensionNode:
		return newExtensionNode(b.mpt, append([]byte{orphanKey}, n.path...), n.childHash)
	case *leafNode:
		return n, nil
	default:
		return newExtensionNode(b.mpt, []byte{orphanKey}, orphanHash)
	}
}

func (b *branchNode) prove(key keyType, offset uint8, proof *[][]byte) error {
	*proof = append(*proof, b.serialize())
	if _, ok := b.children[key[offset]]; !ok {
		// absence of the child proves absence of the key
		return nil
	}
	child, err := b.child(key[offset])
	if err != nil {
		return err
	}
	return child.prove(key, offset+1, proof)
}

func (b *branchNode) updateChild(key byte, child node) (*branchNode, error) {
	children := make(map[byte][]byte, len(b.children)+1)
	for k, v := range b.children {
		children[k] = v
	}
	if child == nil {
		delete(children, key)
	} else {
		children[key] = child.hash()
	}
	return newBranchNode(b.mpt, children, b.isRoot)
}

func (b *branchNode) hash() []byte {
	if b.hashVal == nil {
		b.hashVal = b.mpt.hashFunc(b.serialize())
	}
	return b.hashVal
}

func (b *branchNode) serialize() []byte {
	if b.ser != nil {
		return b.ser
	}
	trieMtc.WithLabelValues("branchNode", "serialize").Inc()
	indices := b.indices.List()
	children := make([][]byte, 0, len(indices))
	for _, idx := range indices {
		children = append(children, b.children[idx])
	}
	b.ser = encodeNode(&serNode{
		Type:     branchNodeType,
		Indices:  append([]byte{}, indices...),
		Children: children,
	})
	return b.ser
}
