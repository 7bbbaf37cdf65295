// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package block

import (
	"testing"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/test/identityset"
)

func testHeader(n uint64) Header {
	return Header{
		ParentHash: hash.Hash256b([]byte{byte(n - 1)}),
		Number:     n,
		StateRoot:  hash.Hash256b([]byte{byte(n), 1}),
		Timestamp:  1700000000 + n,
	}
}

func TestHeaderHash(t *testing.T) {
	r := require.New(t)

	h1 := testHeader(1)
	h2 := testHeader(1)
	r.Equal(h1.Hash(), h2.Hash())
	h2.Digest.NextAuthorities = [][]byte{identityset.PrivateKey(0).PublicKey().Bytes()}
	r.True(h2.Digest.HasAuthorityChange())
	r.False(h1.Digest.HasAuthorityChange())
	r.NotEqual(h1.Hash(), h2.Hash())

	b, err := h2.Serialize()
	r.NoError(err)
	var h3 Header
	r.NoError(h3.Deserialize(b))
	r.Equal(h2.Hash(), h3.Hash())
	r.Error(h3.Deserialize([]byte{0xff, 0x01}))
}

func TestJustification(t *testing.T) {
	r := require.New(t)

	h := testHeader(5)
	keys := identityset.PrivateKeys(0, 4)
	j, err := NewJustification(&h, 2, 7, keys)
	r.NoError(err)
	r.Equal(h.Hash(), j.Commit.TargetHash)
	r.Equal(uint64(5), j.Commit.TargetNumber)
	r.Len(j.Commit.Precommits, 4)
	for i, sp := range j.Commit.Precommits {
		r.Equal(keys[i].PublicKey().Bytes(), sp.ID)
		r.True(sp.VerifySignature(2, 7))
		// a signature binds the round and the set id
		r.False(sp.VerifySignature(3, 7))
		r.False(sp.VerifySignature(2, 8))
	}

	t.Run("tampered target", func(t *testing.T) {
		sp := j.Commit.Precommits[0]
		sp.Precommit.TargetNumber++
		require.False(t, sp.VerifySignature(2, 7))
	})
	t.Run("unknown id", func(t *testing.T) {
		sp := j.Commit.Precommits[0]
		sp.ID = []byte{1, 2, 3}
		require.False(t, sp.VerifySignature(2, 7))
	})
	t.Run("serialization", func(t *testing.T) {
		r := require.New(t)
		b, err := j.Serialize()
		r.NoError(err)
		var j2 Justification
		r.NoError(j2.Deserialize(b))
		r.Equal(j.Commit.TargetHash, j2.Commit.TargetHash)
		r.True(j2.Commit.Precommits[3].VerifySignature(2, 7))
	})
}

func TestBlockSerialization(t *testing.T) {
	r := require.New(t)

	h := testHeader(3)
	j, err := NewJustification(&h, 0, 0, identityset.PrivateKeys(0, 1))
	r.NoError(err)
	blk := Block{Header: h, Justification: *j}
	b, err := blk.Serialize()
	r.NoError(err)
	var blk2 Block
	r.NoError(blk2.Deserialize(b))
	r.Equal(h.Hash(), blk2.Header.Hash())
	r.Len(blk2.Justification.Commit.Precommits, 1)
}
