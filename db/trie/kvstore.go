// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package trie

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/db"
)

type (
	inMemKVStore struct {
		mu   sync.RWMutex
		data map[string][]byte
	}

	// BatchKVStore buffers node writes in memory on top of a db.KVStore until Flush
	BatchKVStore struct {
		mu        sync.RWMutex
		namespace string
		store     db.KVStore
		pending   map[string][]byte
	}
)

// NewMemKVStore creates a new in memory trie node store
func NewMemKVStore() KVStore {
	return &inMemKVStore{data: make(map[string][]byte)}
}

func (s *inMemKVStore) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(k)] = v
	return nil
}

func (s *inMemKVStore) Get(k []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(k)]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "node %x", k)
	}
	return v, nil
}

// NewBatchKVStore creates a node store reading through to the namespace of a db.KVStore
func NewBatchKVStore(namespace string, store db.KVStore) *BatchKVStore {
	return &BatchKVStore{
		namespace: namespace,
		store:     store,
		pending:   make(map[string][]byte),
	}
}

// Put buffers a node
func (s *BatchKVStore) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[string(k)] = v
	return nil
}

// Get reads a node from the buffer or the underlying store
func (s *BatchKVStore) Get(k []byte) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.pending[string(k)]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}
	v, err := s.store.Get(s.namespace, k)
	if errors.Cause(err) == db.ErrNotExist {
		return nil, errors.Wrapf(ErrNotExist, "node %x", k)
	}
	return v, err
}

// Flush moves the buffered nodes into the batch
func (s *BatchKVStore) Flush(b *db.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.pending {
		b.Put(s.namespace, []byte(k), v)
	}
	s.pending = make(map[string][]byte)
}

// Discard drops the buffered nodes
func (s *BatchKVStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string][]byte)
}
