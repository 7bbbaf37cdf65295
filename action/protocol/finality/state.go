// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
)

const _finalityNamespace = "Finality"

var (
	_bestFinalizedKey = state.Key(_finalityNamespace, []byte("bestFinalized"))
	_pointerKey       = state.Key(_finalityNamespace, []byte("importedHashesPointer"))
	_authoritySetKey  = state.Key(_finalityNamespace, []byte("currentAuthoritySet"))
)

type (
	// StoredHeader is the part of an imported header kept by the light client
	StoredHeader struct {
		Number     uint64
		Hash       hash.Hash256
		ParentHash hash.Hash256
		StateRoot  hash.Hash256
	}

	// AuthoritySet is the set of authorities finalizing the bridged chain
	AuthoritySet struct {
		Authorities [][]byte
		SetID       uint64
	}

	hashEntry struct {
		Hash hash.Hash256
	}

	ringPointer struct {
		Next uint64
	}
)

// importedHashKey is the key of a ring slot
func importedHashKey(slot uint64) []byte {
	return state.Key(_finalityNamespace, []byte("importedHashes"), byteutil.Uint64ToBytesBigEndian(slot))
}

// ImportedHeaderKey is the key of an imported header
func ImportedHeaderKey(h hash.Hash256) []byte {
	return state.Key(_finalityNamespace, []byte("importedHeaders"), h[:])
}

func newStoredHeader(h *block.Header) *StoredHeader {
	return &StoredHeader{
		Number:     h.Number,
		Hash:       h.Hash(),
		ParentHash: h.ParentHash,
		StateRoot:  h.StateRoot,
	}
}

// BestFinalized returns the most recently imported header
func BestFinalized(sr protocol.StateReader) (*StoredHeader, error) {
	var best hashEntry
	if err := sr.State(_bestFinalizedKey, &best); err != nil {
		if errors.Cause(err) == state.ErrStateNotExist {
			return nil, errors.Wrap(protocol.ErrNotInitialized, "finality light client")
		}
		return nil, err
	}
	return ImportedHeader(sr, best.Hash)
}

// IsInitialized returns true once the light client is initialized
func IsInitialized(sr protocol.StateReader) (bool, error) {
	_, err := BestFinalized(sr)
	switch errors.Cause(err) {
	case nil:
		return true, nil
	case protocol.ErrNotInitialized:
		return false, nil
	default:
		return false, err
	}
}

// ImportedHeader returns a retained header
func ImportedHeader(sr protocol.StateReader, h hash.Hash256) (*StoredHeader, error) {
	var sh StoredHeader
	if err := sr.State(ImportedHeaderKey(h), &sh); err != nil {
		if errors.Cause(err) == state.ErrStateNotExist {
			return nil, errors.Wrapf(protocol.ErrUnknownHeader, "header %x", h)
		}
		return nil, err
	}
	return &sh, nil
}

// CurrentAuthoritySet returns the tracked authority set
func CurrentAuthoritySet(sr protocol.StateReader) (*AuthoritySet, error) {
	var set AuthoritySet
	if err := sr.State(_authoritySetKey, &set); err != nil {
		if errors.Cause(err) == state.ErrStateNotExist {
			return nil, errors.Wrap(protocol.ErrNotInitialized, "finality light client")
		}
		return nil, err
	}
	return &set, nil
}

func putAuthoritySet(sm protocol.StateManager, set *AuthoritySet) error {
	return sm.PutState(_authoritySetKey, set)
}

func ringNext(sr protocol.StateReader) (uint64, error) {
	var p ringPointer
	err := sr.State(_pointerKey, &p)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return p.Next, nil
	default:
		return 0, err
	}
}

// importHeader writes the header at the ring cursor, evicting the header in the slot, and makes
// it the best finalized header
func importHeader(sm protocol.StateManager, h *StoredHeader, headersToKeep uint64) (*hash.Hash256, error) {
	next, err := ringNext(sm)
	if err != nil {
		return nil, err
	}
	slot := next % headersToKeep
	var (
		evicted *hash.Hash256
		old     hashEntry
	)
	err = sm.State(importedHashKey(slot), &old)
	switch errors.Cause(err) {
	case nil:
		if err := sm.DelState(ImportedHeaderKey(old.Hash)); err != nil {
			return nil, err
		}
		evicted = &old.Hash
	case state.ErrStateNotExist:
	default:
		return nil, err
	}
	if err := sm.PutState(importedHashKey(slot), &hashEntry{Hash: h.Hash}); err != nil {
		return nil, err
	}
	if err := sm.PutState(ImportedHeaderKey(h.Hash), h); err != nil {
		return nil, err
	}
	if err := sm.PutState(_pointerKey, &ringPointer{Next: next + 1}); err != nil {
		return nil, err
	}
	if err := sm.PutState(_bestFinalizedKey, &hashEntry{Hash: h.Hash}); err != nil {
		return nil, err
	}
	return evicted, nil
}

// ImportedHashes returns the hashes of the retained headers in import order
func ImportedHashes(sr protocol.StateReader, headersToKeep uint64) ([]hash.Hash256, error) {
	next, err := ringNext(sr)
	if err != nil {
		return nil, err
	}
	first := uint64(0)
	if next > headersToKeep {
		first = next - headersToKeep
	}
	hashes := make([]hash.Hash256, 0, next-first)
	for i := first; i < next; i++ {
		var slot hashEntry
		if err := sr.State(importedHashKey(i%headersToKeep), &slot); err != nil {
			return nil, errors.Wrapf(err, "failed to read ring slot %d", i%headersToKeep)
		}
		hashes = append(hashes, slot.Hash)
	}
	return hashes, nil
}
