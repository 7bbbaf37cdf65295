// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"context"
	"testing"

	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/test/identityset"
	"github.com/iotexproject/iotex-bridge/test/mock/mock_chainmanager"
	"github.com/iotexproject/iotex-bridge/testutil/testdb"
)

func publicKeys(keys []crypto.PrivateKey) [][]byte {
	pks := make([][]byte, len(keys))
	for i, sk := range keys {
		pks[i] = sk.PublicKey().Bytes()
	}
	return pks
}

func child(parent *block.Header) block.Header {
	return block.Header{
		ParentHash: parent.Hash(),
		Number:     parent.Number + 1,
		StateRoot:  hash.Hash256b([]byte{byte(parent.Number + 1)}),
		Timestamp:  parent.Timestamp + 5,
	}
}

func justify(t *testing.T, h *block.Header, setID uint64, keys []crypto.PrivateKey) block.Justification {
	j, err := block.NewJustification(h, 1, setID, keys)
	require.NoError(t, err)
	return *j
}

type fixture struct {
	p       *Protocol
	sm      *mock_chainmanager.MockStateManager
	ctx     context.Context
	keys    []crypto.PrivateKey
	genesis block.Header
}

func newFixture(t *testing.T, headersToKeep uint64) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		p:       NewProtocol(headersToKeep),
		sm:      testdb.NewMockStateManager(ctrl),
		ctx:     protocol.WithActionCtx(context.Background(), protocol.ActionCtx{Caller: identityset.Address(9)}),
		keys:    identityset.PrivateKeys(0, 4),
		genesis: block.Header{Number: 10, StateRoot: hash.Hash256b([]byte("genesis"))},
	}
	_, err := f.p.Handle(f.ctx, &action.Initialize{Header: f.genesis, Authorities: publicKeys(f.keys), SetID: 1}, f.sm)
	require.NoError(t, err)
	return f
}

func (f *fixture) submit(h block.Header, j block.Justification) error {
	_, err := f.p.Handle(f.ctx, &action.SubmitFinalityProof{Header: h, Justification: j}, f.sm)
	return err
}

func TestInitialize(t *testing.T) {
	r := require.New(t)

	f := newFixture(t, 4)
	best, err := BestFinalized(f.sm)
	r.NoError(err)
	r.Equal(f.genesis.Hash(), best.Hash)
	r.Equal(uint64(10), best.Number)
	set, err := CurrentAuthoritySet(f.sm)
	r.NoError(err)
	r.Equal(uint64(1), set.SetID)
	r.Len(set.Authorities, 4)

	_, err = f.p.Handle(f.ctx, &action.Initialize{Header: f.genesis, Authorities: publicKeys(f.keys)}, f.sm)
	r.Equal(protocol.ErrAlreadyInitialized, errors.Cause(err))

	// uninitialized
	ctrl := gomock.NewController(t)
	sm := testdb.NewMockStateManager(ctrl)
	_, err = BestFinalized(sm)
	r.Equal(protocol.ErrNotInitialized, errors.Cause(err))
	h := child(&f.genesis)
	_, err = f.p.Handle(f.ctx, &action.SubmitFinalityProof{Header: h, Justification: justify(t, &h, 1, f.keys)}, sm)
	r.Equal(protocol.ErrNotInitialized, errors.Cause(err))

	// owner only when an owner is configured
	r.NoError(operating.NewProtocol(identityset.Address(0)).CreateGenesisStates(context.Background(), sm))
	_, err = f.p.Handle(f.ctx, &action.Initialize{Header: f.genesis, Authorities: publicKeys(f.keys)}, sm)
	r.Equal(protocol.ErrUnauthorized, errors.Cause(err))
	ownerCtx := protocol.WithActionCtx(context.Background(), protocol.ActionCtx{Caller: identityset.Address(0)})
	_, err = f.p.Handle(ownerCtx, &action.Initialize{Header: f.genesis, Authorities: publicKeys(f.keys), Halted: true}, sm)
	r.NoError(err)
	_, err = f.p.Handle(f.ctx, &action.SubmitFinalityProof{Header: h, Justification: justify(t, &h, 0, f.keys)}, sm)
	r.Equal(protocol.ErrHalted, errors.Cause(err))
}

func TestSubmitFinalityProof(t *testing.T) {
	r := require.New(t)

	f := newFixture(t, 4)
	h1 := child(&f.genesis)
	receipt, err := f.p.Handle(f.ctx, &action.SubmitFinalityProof{Header: h1, Justification: justify(t, &h1, 1, f.keys[:3])}, f.sm)
	r.NoError(err)
	r.Equal(ImportedTopic, receipt.Logs[0].Topic)
	best, err := BestFinalized(f.sm)
	r.NoError(err)
	r.Equal(h1.Hash(), best.Hash)
	root, err := f.p.StateRoot(f.sm, h1.Hash())
	r.NoError(err)
	r.Equal(h1.StateRoot, root)
	_, err = f.p.StateRoot(f.sm, hash.Hash256b([]byte("unknown")))
	r.Equal(protocol.ErrUnknownHeader, errors.Cause(err))

	// resubmission is stale and leaves the state unchanged
	hashes, err := f.p.ImportedHashes(f.sm)
	r.NoError(err)
	r.Equal(protocol.ErrStale, errors.Cause(f.submit(h1, justify(t, &h1, 1, f.keys))))
	after, err := f.p.ImportedHashes(f.sm)
	r.NoError(err)
	r.Equal(hashes, after)
	best, err = BestFinalized(f.sm)
	r.NoError(err)
	r.Equal(h1.Hash(), best.Hash)

	// older than best
	old := f.genesis
	old.Number = 5
	r.Equal(protocol.ErrStale, errors.Cause(f.submit(old, justify(t, &old, 1, f.keys))))

	// a later header may skip numbers
	h2 := child(&h1)
	h3 := child(&h2)
	r.NoError(f.submit(h3, justify(t, &h3, 1, f.keys)))
	best, err = BestFinalized(f.sm)
	r.NoError(err)
	r.Equal(uint64(13), best.Number)
}

func TestInvalidJustification(t *testing.T) {
	f := newFixture(t, 4)
	h := child(&f.genesis)
	outsider := identityset.PrivateKey(10)

	for _, test := range []struct {
		name string
		j    func() block.Justification
	}{
		{"below quorum", func() block.Justification { return justify(t, &h, 1, f.keys[:2]) }},
		{"wrong set id", func() block.Justification { return justify(t, &h, 2, f.keys) }},
		{"unknown authority", func() block.Justification {
			return justify(t, &h, 1, []crypto.PrivateKey{f.keys[0], f.keys[1], outsider})
		}},
		{"duplicate precommit", func() block.Justification {
			j := justify(t, &h, 1, f.keys[:3])
			j.Commit.Precommits[2] = j.Commit.Precommits[0]
			return j
		}},
		{"bad signature", func() block.Justification {
			j := justify(t, &h, 1, f.keys)
			j.Commit.Precommits[1].Signature = j.Commit.Precommits[0].Signature
			return j
		}},
		{"wrong round", func() block.Justification {
			j := justify(t, &h, 1, f.keys)
			j.Round++
			return j
		}},
		{"commit target mismatch", func() block.Justification {
			other := child(&h)
			return justify(t, &other, 1, f.keys)
		}},
		{"unrelated precommit target", func() block.Justification {
			other := child(&f.genesis)
			other.Timestamp++
			j := justify(t, &h, 1, f.keys[:2])
			sp, err := block.SignPrecommit(f.keys[2], block.Precommit{TargetHash: other.Hash(), TargetNumber: other.Number}, 1, 1)
			require.NoError(t, err)
			j.Commit.Precommits = append(j.Commit.Precommits, sp)
			j.VotesAncestries = []block.Header{other}
			return j
		}},
		{"unused ancestry", func() block.Justification {
			j := justify(t, &h, 1, f.keys)
			j.VotesAncestries = []block.Header{child(&h)}
			return j
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := require.New(t)
			r.Equal(protocol.ErrInvalidJustification, errors.Cause(f.submit(h, test.j())))
			best, err := BestFinalized(f.sm)
			r.NoError(err)
			r.Equal(f.genesis.Hash(), best.Hash)
		})
	}
}

func TestVoteAncestry(t *testing.T) {
	r := require.New(t)

	f := newFixture(t, 4)
	h := child(&f.genesis)
	d1 := child(&h)
	d2 := child(&d1)
	j := justify(t, &h, 1, f.keys[:2])
	// the third authority votes for a descendant of the target
	sp, err := block.SignPrecommit(f.keys[2], block.Precommit{TargetHash: d2.Hash(), TargetNumber: d2.Number}, 1, 1)
	r.NoError(err)
	j.Commit.Precommits = append(j.Commit.Precommits, sp)

	j.VotesAncestries = []block.Header{d2}
	r.Equal(protocol.ErrInvalidJustification, errors.Cause(f.submit(h, j)))
	j.VotesAncestries = []block.Header{d2, d1}
	r.NoError(f.submit(h, j))
}

func TestRequiredPrecommits(t *testing.T) {
	for n, expected := range map[int]int{1: 1, 2: 2, 3: 3, 4: 3, 5: 4, 6: 5, 7: 5, 100: 67} {
		require.Equal(t, expected, RequiredPrecommits(n), n)
	}
}

func TestHeaderRingEviction(t *testing.T) {
	r := require.New(t)

	const capacity = 3
	f := newFixture(t, capacity)
	headers := []block.Header{f.genesis}
	for i := 0; i < capacity; i++ {
		h := child(&headers[len(headers)-1])
		r.NoError(f.submit(h, justify(t, &h, 1, f.keys)))
		headers = append(headers, h)
	}
	// N+1 headers into a ring of N keeps the N newest in arrival order
	hashes, err := f.p.ImportedHashes(f.sm)
	r.NoError(err)
	r.Len(hashes, capacity)
	for i, h := range hashes {
		r.Equal(headers[i+1].Hash(), h)
	}
	_, err = ImportedHeader(f.sm, f.genesis.Hash())
	r.Equal(protocol.ErrUnknownHeader, errors.Cause(err))
	best, err := BestFinalized(f.sm)
	r.NoError(err)
	r.Equal(headers[capacity].Hash(), best.Hash)

	for i := 0; i < 2*capacity; i++ {
		h := child(&headers[len(headers)-1])
		r.NoError(f.submit(h, justify(t, &h, 1, f.keys)))
		headers = append(headers, h)
		hashes, err := f.p.ImportedHashes(f.sm)
		r.NoError(err)
		r.Len(hashes, capacity)
		r.Equal(h.Hash(), hashes[capacity-1])
		best, err := BestFinalized(f.sm)
		r.NoError(err)
		r.Equal(h.Hash(), best.Hash)
	}
}

func TestAuthoritySetChange(t *testing.T) {
	r := require.New(t)

	f := newFixture(t, 4)
	nextKeys := identityset.PrivateKeys(4, 3)
	h1 := child(&f.genesis)
	h1.Digest.NextAuthorities = publicKeys(nextKeys)
	receipt, err := f.p.Handle(f.ctx, &action.SubmitFinalityProof{Header: h1, Justification: justify(t, &h1, 1, f.keys)}, f.sm)
	r.NoError(err)
	r.Len(receipt.Logs, 2)
	r.Equal(AuthoritySetChangedTopic, receipt.Logs[1].Topic)

	set, err := CurrentAuthoritySet(f.sm)
	r.NoError(err)
	r.Equal(uint64(2), set.SetID)
	r.Equal(publicKeys(nextKeys), set.Authorities)

	h2 := child(&h1)
	r.Equal(protocol.ErrInvalidJustification, errors.Cause(f.submit(h2, justify(t, &h2, 1, f.keys))))
	r.Equal(protocol.ErrInvalidJustification, errors.Cause(f.submit(h2, justify(t, &h2, 2, f.keys))))
	r.NoError(f.submit(h2, justify(t, &h2, 2, nextKeys)))
}
