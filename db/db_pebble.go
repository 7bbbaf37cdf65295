// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"context"
	"syscall"

	"github.com/cockroachdb/pebble"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
	"github.com/iotexproject/iotex-bridge/pkg/log"
)

const (
	prefixLength = 8
)

var (
	pebbledbMtc = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iotex_bridge_pebbledb_ops",
		Help: "pebbledb operation counter.",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(pebbledbMtc)
}

// PebbleDB is KVStore implementation based on pebble DB
type PebbleDB struct {
	lifecycle.Readiness
	db     *pebble.DB
	path   string
	config Config
}

// NewPebbleDB creates a new PebbleDB instance
func NewPebbleDB(cfg Config) *PebbleDB {
	return &PebbleDB{
		path:   cfg.DbPath,
		config: cfg,
	}
}

// Start opens the DB (creates new file if not existing yet)
func (b *PebbleDB) Start(_ context.Context) error {
	db, err := pebble.Open(b.path, &pebble.Options{
		ReadOnly: b.config.ReadOnly,
	})
	if err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	b.db = db
	return b.TurnOn()
}

// Stop closes the DB
func (b *PebbleDB) Stop(_ context.Context) error {
	if err := b.TurnOff(); err != nil {
		return err
	}
	if err := b.db.Close(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Get retrieves a record
func (b *PebbleDB) Get(ns string, key []byte) ([]byte, error) {
	if !b.IsReady() {
		return nil, ErrDBNotStarted
	}
	pebbledbMtc.WithLabelValues("get").Inc()
	v, closer, err := b.db.Get(nsKey(ns, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotExist, "ns %s key = %x doesn't exist", ns, key)
		}
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	val := make([]byte, len(v))
	copy(val, v)
	return val, closer.Close()
}

// Put inserts a <key, value> record
func (b *PebbleDB) Put(ns string, key, value []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	pebbledbMtc.WithLabelValues("put").Inc()
	return b.checkWrite(b.db.Set(nsKey(ns, key), value, pebble.Sync), "put")
}

// Delete deletes a record
func (b *PebbleDB) Delete(ns string, key []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	pebbledbMtc.WithLabelValues("delete").Inc()
	return b.checkWrite(b.db.Delete(nsKey(ns, key), pebble.Sync), "delete")
}

// WriteBatch commits a batch
func (b *PebbleDB) WriteBatch(kvsb *Batch) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	pebbledbMtc.WithLabelValues("writeBatch").Inc()
	batch := b.db.NewBatch()
	defer batch.Close()
	for _, write := range kvsb.entries {
		var err error
		switch write.writeType {
		case Put:
			err = batch.Set(nsKey(write.namespace, write.key), write.value, nil)
		case Delete:
			err = batch.Delete(nsKey(write.namespace, write.key), nil)
		}
		if err != nil {
			return errors.Wrap(ErrIO, err.Error())
		}
	}
	return b.checkWrite(batch.Commit(pebble.Sync), "write batch")
}

func (b *PebbleDB) checkWrite(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		log.L().Fatal("Failed to "+op+" db.", zap.Error(err))
	}
	return errors.Wrap(ErrIO, err.Error())
}

// nsKey prefixes the key with a fixed-length digest of the namespace
func nsKey(ns string, key []byte) []byte {
	h := hash.Hash160b([]byte(ns))
	nk := make([]byte, 0, prefixLength+len(key))
	nk = append(nk, h[:prefixLength]...)
	return append(nk, key...)
}
