// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
)

const fileMode = 0600

// BoltDB is KVStore implementation based bolt DB
type BoltDB struct {
	lifecycle.Readiness
	db     *bolt.DB
	path   string
	config Config
}

// NewBoltDB instantiates an BoltDB with implements KVStore
func NewBoltDB(cfg Config) *BoltDB {
	return &BoltDB{
		path:   cfg.DbPath,
		config: cfg,
	}
}

// Start opens the BoltDB (creates new file if not existing yet)
func (b *BoltDB) Start(_ context.Context) error {
	opts := *bolt.DefaultOptions
	opts.ReadOnly = b.config.ReadOnly
	db, err := bolt.Open(b.path, fileMode, &opts)
	if err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	b.db = db
	return b.TurnOn()
}

// Stop closes the BoltDB
func (b *BoltDB) Stop(_ context.Context) error {
	if err := b.TurnOff(); err != nil {
		return err
	}
	if err := b.db.Close(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Put inserts a <key, value> record
func (b *BoltDB) Put(namespace string, key, value []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// Get retrieves a record
func (b *BoltDB) Get(namespace string, key []byte) ([]byte, error) {
	if !b.IsReady() {
		return nil, ErrDBNotStarted
	}
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return errors.Wrapf(ErrNotExist, "bucket = %x doesn't exist", []byte(namespace))
		}
		v := bucket.Get(key)
		if v == nil {
			return errors.Wrapf(ErrNotExist, "key = %x doesn't exist", key)
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err == nil {
		return value, nil
	}
	if errors.Cause(err) == ErrNotExist {
		return nil, err
	}
	return nil, errors.Wrap(ErrIO, err.Error())
}

// Delete deletes a record
func (b *BoltDB) Delete(namespace string, key []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.Delete(key)
	})
}

// WriteBatch commits a batch in a single transaction
func (b *BoltDB) WriteBatch(batch *Batch) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.update(func(tx *bolt.Tx) error {
		for _, write := range batch.entries {
			switch write.writeType {
			case Put:
				bucket, err := tx.CreateBucketIfNotExists([]byte(write.namespace))
				if err != nil {
					return errors.Wrapf(err, "failed to create bucket %s", write.namespace)
				}
				if err := bucket.Put(write.key, write.value); err != nil {
					return errors.Wrapf(err, "failed to put key %x", write.key)
				}
			case Delete:
				bucket := tx.Bucket([]byte(write.namespace))
				if bucket == nil {
					continue
				}
				if err := bucket.Delete(write.key); err != nil {
					return errors.Wrapf(err, "failed to delete key %x", write.key)
				}
			}
		}
		return nil
	})
}

func (b *BoltDB) update(f func(*bolt.Tx) error) (err error) {
	numRetries := b.config.NumRetries
	if numRetries == 0 {
		numRetries = 1
	}
	for c := uint8(0); c < numRetries; c++ {
		if err = b.db.Update(f); err == nil {
			return nil
		}
	}
	return errors.Wrap(ErrIO, err.Error())
}
