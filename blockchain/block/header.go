// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package block

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

type (
	// Digest carries the consensus log items of a header
	Digest struct {
		// NextAuthorities is the authority set scheduled by this header, empty if unchanged
		NextAuthorities [][]byte
	}

	// Header is the header of a block
	Header struct {
		ParentHash hash.Hash256
		Number     uint64
		StateRoot  hash.Hash256
		Timestamp  uint64
		Digest     Digest
	}
)

// HasAuthorityChange returns true if the header schedules a new authority set
func (d *Digest) HasAuthorityChange() bool {
	return len(d.NextAuthorities) > 0
}

// Hash returns the hash of the header
func (h *Header) Hash() hash.Hash256 {
	b, err := h.Serialize()
	if err != nil {
		// only fails on unsupported field types
		panic(err)
	}
	return hash.Hash256b(b)
}

// Serialize returns the rlp encoded header
func (h *Header) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(h)
}

// Deserialize decodes a header
func (h *Header) Deserialize(b []byte) error {
	if err := rlp.DecodeBytes(b, h); err != nil {
		return errors.Wrap(err, "failed to decode header")
	}
	return nil
}

// Block is a header together with the justification finalizing it
type Block struct {
	Header        Header
	Justification Justification
}

// Serialize returns the rlp encoded block
func (b *Block) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

// Deserialize decodes a block
func (b *Block) Deserialize(buf []byte) error {
	if err := rlp.DecodeBytes(buf, b); err != nil {
		return errors.Wrap(err, "failed to decode block")
	}
	return nil
}
