// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package proofroot

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
)

// ErrInconsistentStore indicates the index and the root map disagree
var ErrInconsistentStore = errors.New("inconsistent proof root store")

type (
	// Store is a bounded FIFO map from keys to proof roots kept in the state trie. Entries are
	// appended to slots [First, Next) and evicted from First
	Store struct {
		namespace   string
		rootsToKeep uint64
	}

	indexMeta struct {
		First uint64
		Next  uint64
	}

	slot struct {
		Key hash.Hash256
	}

	rootEntry struct {
		Root hash.Hash256
		Seq  uint64
	}
)

// NewStore creates a store under the namespace keeping at most rootsToKeep entries
func NewStore(namespace string, rootsToKeep uint64) *Store {
	return &Store{
		namespace:   namespace,
		rootsToKeep: rootsToKeep,
	}
}

func (s *Store) metaKey() []byte {
	return state.Key(s.namespace, []byte("meta"))
}

func (s *Store) slotKey(seq uint64) []byte {
	return state.Key(s.namespace, []byte("slot"), byteutil.Uint64ToBytesBigEndian(seq))
}

func (s *Store) rootKey(key hash.Hash256) []byte {
	return state.Key(s.namespace, []byte("root"), key[:])
}

func (s *Store) meta(sr protocol.StateReader) (*indexMeta, error) {
	var m indexMeta
	err := sr.State(s.metaKey(), &m)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return &m, nil
	default:
		return nil, err
	}
}

// NoteNewRoots appends the new entries and evicts the oldest ones beyond the capacity. An entry
// whose key is already stored is ignored. It returns the number of inserted entries
func (s *Store) NoteNewRoots(sm protocol.StateManager, entries []action.RootEntry) (int, error) {
	m, err := s.meta(sm)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, e := range entries {
		var existing rootEntry
		err := sm.State(s.rootKey(e.Key), &existing)
		if err == nil {
			continue
		}
		if errors.Cause(err) != state.ErrStateNotExist {
			return 0, err
		}
		if err := sm.PutState(s.slotKey(m.Next), &slot{Key: e.Key}); err != nil {
			return 0, err
		}
		if err := sm.PutState(s.rootKey(e.Key), &rootEntry{Root: e.Root, Seq: m.Next}); err != nil {
			return 0, err
		}
		m.Next++
		inserted++
		for m.Next-m.First > s.rootsToKeep {
			if err := s.evict(sm, m.First); err != nil {
				return 0, err
			}
			m.First++
		}
	}
	if err := sm.PutState(s.metaKey(), m); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Store) evict(sm protocol.StateManager, seq uint64) error {
	var sl slot
	if err := sm.State(s.slotKey(seq), &sl); err != nil {
		return errors.Wrapf(err, "failed to load slot %d", seq)
	}
	if err := sm.DelState(s.rootKey(sl.Key)); err != nil {
		return err
	}
	return sm.DelState(s.slotKey(seq))
}

// GetRoot returns the root stored under the key
func (s *Store) GetRoot(sr protocol.StateReader, key hash.Hash256) (hash.Hash256, error) {
	var e rootEntry
	if err := sr.State(s.rootKey(key), &e); err != nil {
		return hash.ZeroHash256, err
	}
	return e.Root, nil
}

// RootIndex returns the stored keys from the oldest to the newest
func (s *Store) RootIndex(sr protocol.StateReader) ([]hash.Hash256, error) {
	m, err := s.meta(sr)
	if err != nil {
		return nil, err
	}
	keys := make([]hash.Hash256, 0, m.Next-m.First)
	for seq := m.First; seq < m.Next; seq++ {
		var sl slot
		if err := sr.State(s.slotKey(seq), &sl); err != nil {
			return nil, errors.Wrapf(ErrInconsistentStore, "slot %d: %v", seq, err)
		}
		keys = append(keys, sl.Key)
	}
	return keys, nil
}

// CheckConsistency verifies that every indexed key has a root entry pointing back to its slot,
// and that the store is within its capacity
func (s *Store) CheckConsistency(sr protocol.StateReader) error {
	m, err := s.meta(sr)
	if err != nil {
		return err
	}
	if m.Next < m.First || m.Next-m.First > s.rootsToKeep {
		return errors.Wrapf(ErrInconsistentStore, "index [%d, %d) exceeds capacity %d", m.First, m.Next, s.rootsToKeep)
	}
	keys, err := s.RootIndex(sr)
	if err != nil {
		return err
	}
	for i, k := range keys {
		var e rootEntry
		if err := sr.State(s.rootKey(k), &e); err != nil {
			return errors.Wrapf(ErrInconsistentStore, "key %x has no root: %v", k, err)
		}
		if e.Seq != m.First+uint64(i) {
			return errors.Wrapf(ErrInconsistentStore, "key %x points to slot %d instead of %d", k, e.Seq, m.First+uint64(i))
		}
	}
	if m.First > 0 {
		// the slot just before First has been evicted
		var sl slot
		if err := sr.State(s.slotKey(m.First-1), &sl); errors.Cause(err) != state.ErrStateNotExist {
			return errors.Wrapf(ErrInconsistentStore, "evicted slot %d still exists", m.First-1)
		}
	}
	return nil
}
