// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// compressedKVStore transparently snappy-compresses every stored value
type compressedKVStore struct {
	KVStore
}

// NewCompressedKVStore wraps a KVStore with value compression
func NewCompressedKVStore(store KVStore) KVStore {
	return &compressedKVStore{KVStore: store}
}

func (c *compressedKVStore) Put(namespace string, key, value []byte) error {
	return c.KVStore.Put(namespace, key, snappy.Encode(nil, value))
}

func (c *compressedKVStore) Get(namespace string, key []byte) ([]byte, error) {
	v, err := c.KVStore.Get(namespace, key)
	if err != nil {
		return nil, err
	}
	value, err := snappy.Decode(nil, v)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "failed to decompress value of key %x: %v", key, err)
	}
	return value, nil
}

func (c *compressedKVStore) WriteBatch(b *Batch) error {
	return c.KVStore.WriteBatch(b.mapValues(func(v []byte) []byte {
		return snappy.Encode(nil, v)
	}))
}
