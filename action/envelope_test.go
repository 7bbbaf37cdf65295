// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/test/identityset"
)

func TestSealedEnvelope(t *testing.T) {
	r := require.New(t)

	lane := LaneID{0, 0, 0, 1}
	payloads := []Action{
		&Initialize{Header: block.Header{Number: 1}, Authorities: [][]byte{identityset.PrivateKey(1).PublicKey().Bytes()}, SetID: 3},
		&SubmitFinalityProof{Header: block.Header{Number: 2}},
		&UpdateChildHead{ChildID: 7, Header: block.Header{Number: 9}},
		&SubmitChildHeads{RelayBlock: hash.Hash256b([]byte{1}), ChildIDs: []uint32{7}, Proof: [][]byte{{1, 2}}},
		&SendMessage{Lane: lane, Payload: []byte("hello")},
		&ReceiveMessagesProof{Lane: lane, Begin: 1, End: 3, Proof: [][]byte{{3}}},
		&ReceiveMessagesDeliveryProof{Lane: lane, Proof: [][]byte{{4}}},
		&ClaimRewards{Lane: lane},
		&DepositFund{Amount: big.NewInt(100)},
		&NoteNewRoots{Entries: []RootEntry{{Key: hash.Hash256b([]byte{2})}}},
		&SetOperatingMode{Module: "messagelane", Halted: true},
	}
	sk := identityset.PrivateKey(0)
	for i, p := range payloads {
		r.NoError(p.SanityCheck())
		selp, err := Sign(NewEnvelope(uint64(i+1), p), sk)
		r.NoError(err)
		r.NoError(selp.VerifySignature())
		r.Equal(identityset.Address(0).String(), selp.SenderAddress().String())

		b, err := selp.Serialize()
		r.NoError(err)
		var decoded SealedEnvelope
		r.NoError(decoded.Deserialize(b))
		r.NoError(decoded.VerifySignature())
		r.Equal(uint64(i+1), decoded.Nonce())
		r.Equal(p.Type(), decoded.Action().Type())
		h1, err := selp.Hash()
		r.NoError(err)
		h2, err := decoded.Hash()
		r.NoError(err)
		r.Equal(h1, h2)
	}
}

func TestSealedEnvelopeTampered(t *testing.T) {
	r := require.New(t)

	selp, err := Sign(NewEnvelope(1, &SendMessage{Payload: []byte("a")}), identityset.PrivateKey(0))
	r.NoError(err)
	selp.payload = &SendMessage{Payload: []byte("b")}
	r.Equal(ErrInvalidSignature, errors.Cause(selp.VerifySignature()))

	selp, err = Sign(NewEnvelope(1, &SendMessage{Payload: []byte("a")}), identityset.PrivateKey(0))
	r.NoError(err)
	selp.srcPubkey = identityset.PrivateKey(1).PublicKey()
	r.Equal(ErrInvalidSignature, errors.Cause(selp.VerifySignature()))
}

func TestDeserializeUnknownType(t *testing.T) {
	r := require.New(t)

	b, err := rlp.EncodeToBytes(&sealedCore{
		Core:   envelopeCore{Type: 99, Nonce: 1},
		PubKey: identityset.PrivateKey(0).PublicKey().Bytes(),
	})
	r.NoError(err)
	var selp SealedEnvelope
	r.Equal(ErrUnknownType, errors.Cause(selp.Deserialize(b)))
	r.Error(selp.Deserialize([]byte{1, 2, 3}))

	_, err = Sign(NewEnvelope(1, nil), identityset.PrivateKey(0))
	r.Equal(ErrInvalidAction, errors.Cause(err))
}

func TestLaneID(t *testing.T) {
	r := require.New(t)

	id, err := LaneIDFromString("0000000a")
	r.NoError(err)
	r.Equal(LaneID{0, 0, 0, 10}, id)
	r.Equal("0000000a", id.String())

	for _, s := range []string{"", "0a", "000000000a", "zzzzzzzz"} {
		_, err := LaneIDFromString(s)
		r.Error(err, s)
	}
}

func TestSanityCheck(t *testing.T) {
	for _, test := range []struct {
		name string
		act  Action
	}{
		{"empty authorities", &Initialize{}},
		{"bad authority", &Initialize{Authorities: [][]byte{{1, 2}}}},
		{"no child", &SubmitChildHeads{}},
		{"duplicate child", &SubmitChildHeads{ChildIDs: []uint32{1, 1}}},
		{"zero begin", &ReceiveMessagesProof{Begin: 0, End: 1}},
		{"reversed range", &ReceiveMessagesProof{Begin: 3, End: 2}},
		{"nil deposit", &DepositFund{}},
		{"negative deposit", &DepositFund{Amount: big.NewInt(-1)}},
		{"no entry", &NoteNewRoots{}},
		{"no module", &SetOperatingMode{}},
	} {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, ErrInvalidAction, errors.Cause(test.act.SanityCheck()))
		})
	}
	require.Equal(t, uint64(3), (&ReceiveMessagesProof{Begin: 2, End: 4}).MessageCount())
	// the widest valid range does not wrap
	widest := &ReceiveMessagesProof{Begin: 1, End: math.MaxUint64}
	require.NoError(t, widest.SanityCheck())
	require.Equal(t, uint64(math.MaxUint64), widest.MessageCount())
}
