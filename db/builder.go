// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"github.com/pkg/errors"
)

// CreateKVStore creates the KVStore selected by the config
func CreateKVStore(cfg Config) (KVStore, error) {
	var store KVStore
	switch cfg.Backend {
	case BoltDBBackend, "":
		if cfg.DbPath == "" {
			return nil, errors.New("db path is empty")
		}
		store = NewBoltDB(cfg)
	case PebbleDBBackend:
		if cfg.DbPath == "" {
			return nil, errors.New("db path is empty")
		}
		store = NewPebbleDB(cfg)
	case MemDB:
		store = NewMemKVStore()
	default:
		return nil, errors.Errorf("unsupported db backend %s", cfg.Backend)
	}
	if cfg.Compress {
		store = NewCompressedKVStore(store)
	}
	return store, nil
}
