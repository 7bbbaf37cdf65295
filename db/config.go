// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

const (
	// BoltDBBackend is the bolt backend
	BoltDBBackend = "boltdb"
	// PebbleDBBackend is the pebble backend
	PebbleDBBackend = "pebbledb"
	// MemDB is the in-memory backend, used in tests and ephemeral nodes
	MemDB = "memdb"
)

// Config is the config for database
type Config struct {
	DbPath string `yaml:"dbPath"`
	// Backend is one of boltdb, pebbledb or memdb
	Backend string `yaml:"backend"`
	// NumRetries is the number of retries
	NumRetries uint8 `yaml:"numRetries"`
	// Compress enables snappy compression on stored values
	Compress bool `yaml:"compress"`
	// ReadOnly is set db to be opened in read only mode
	ReadOnly bool `yaml:"readOnly"`
}

// DefaultConfig returns the default config
var DefaultConfig = Config{
	DbPath:     "/var/data/bridge.db",
	Backend:    BoltDBBackend,
	NumRetries: 3,
	Compress:   false,
}
