// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

// ProofChecker reads keys out of a set of trie nodes anchored at a known root. A read either
// returns the proven value, returns trie.ErrNotExist when the nodes prove the key is absent, or
// fails with trie.ErrInvalidProof when the nodes do not lead to a conclusion.
type ProofChecker struct {
	root     []byte
	nodes    map[string][]byte
	used     map[string]struct{}
	hashFunc HashFunc
}

// NewProofChecker indexes the proof nodes by hash. Duplicated nodes are refused.
func NewProofChecker(root []byte, proof [][]byte) (*ProofChecker, error) {
	return newProofChecker(root, proof, DefaultHashFunc)
}

func newProofChecker(root []byte, proof [][]byte, hashFunc HashFunc) (*ProofChecker, error) {
	pc := &ProofChecker{
		root:     append([]byte{}, root...),
		nodes:    make(map[string][]byte, len(proof)),
		used:     make(map[string]struct{}, len(proof)),
		hashFunc: hashFunc,
	}
	for _, blob := range proof {
		h := string(hashFunc(blob))
		if _, ok := pc.nodes[h]; ok {
			return nil, errors.Wrapf(trie.ErrInvalidProof, "duplicate node %x", []byte(h))
		}
		pc.nodes[h] = blob
	}
	return pc, nil
}

// Read returns the value of the key under the root
func (pc *ProofChecker) Read(key []byte) ([]byte, error) {
	trieMtc.WithLabelValues("proof", "read").Inc()
	var (
		h      = pc.root
		offset = 0
	)
	// every step either consumes a key byte or moves from an extension to a branch
	for step := 0; step <= 2*len(key)+1; step++ {
		blob, ok := pc.nodes[string(h)]
		if !ok {
			return nil, errors.Wrapf(trie.ErrInvalidProof, "missing node %x", h)
		}
		pc.used[string(h)] = struct{}{}
		n, err := decodeNode(blob)
		if err != nil {
			return nil, errors.Wrap(trie.ErrInvalidProof, err.Error())
		}
		switch n.Type {
		case branchNodeType:
			if offset >= len(key) {
				return nil, errors.Wrap(trie.ErrInvalidProof, "branch below full key length")
			}
			idx := bytes.IndexByte(n.Indices, key[offset])
			if idx < 0 {
				return nil, errors.Wrapf(trie.ErrNotExist, "key %x", key)
			}
			h = n.Children[idx]
			offset++
		case extensionNodeType:
			if !bytes.HasPrefix(key[offset:], n.Path) {
				return nil, errors.Wrapf(trie.ErrNotExist, "key %x", key)
			}
			offset += len(n.Path)
			h = n.Value
		case leafNodeType:
			if !bytes.Equal(n.Path, key) {
				return nil, errors.Wrapf(trie.ErrNotExist, "key %x", key)
			}
			return n.Value, nil
		default:
			return nil, errors.Wrapf(trie.ErrInvalidProof, "unknown node type %d", n.Type)
		}
	}
	return nil, errors.Wrap(trie.ErrInvalidProof, "path too long")
}

// EnsureNoUnusedNodes fails if the proof carried nodes that no read touched
func (pc *ProofChecker) EnsureNoUnusedNodes() error {
	if len(pc.used) != len(pc.nodes) {
		return errors.Wrapf(trie.ErrInvalidProof, "%d of %d nodes are unused", len(pc.nodes)-len(pc.used), len(pc.nodes))
	}
	return nil
}

// VerifyProof checks a single key against the root
func VerifyProof(root []byte, key []byte, proof [][]byte) ([]byte, error) {
	pc, err := NewProofChecker(root, proof)
	if err != nil {
		return nil, err
	}
	return pc.Read(key)
}

// MergeProofs concatenates proofs of several keys under the same root, dropping repeated nodes
func MergeProofs(proofs ...[][]byte) [][]byte {
	seen := make(map[string]struct{})
	merged := [][]byte{}
	for _, proof := range proofs {
		for _, blob := range proof {
			if _, ok := seen[string(blob)]; ok {
				continue
			}
			seen[string(blob)] = struct{}{}
			merged = append(merged, blob)
		}
	}
	return merged
}
