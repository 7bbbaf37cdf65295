// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"context"
	"testing"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/db/trie"
	"github.com/iotexproject/iotex-bridge/db/trie/mptrie"
	"github.com/iotexproject/iotex-bridge/state"
	"github.com/iotexproject/iotex-bridge/test/identityset"
)

var errTestFailure = errors.New("test failure")

type testRecord struct {
	Payload []byte
	Sender  string
}

type testProtocol struct{}

func (p *testProtocol) Name() string { return "test" }

func (p *testProtocol) CreateGenesisStates(_ context.Context, sm protocol.StateManager) error {
	return sm.PutState(state.Key("test", []byte("genesis")), &testRecord{Payload: []byte("genesis")})
}

func (p *testProtocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	msg, ok := act.(*action.SendMessage)
	if !ok {
		return nil, nil
	}
	actCtx := protocol.MustGetActionCtx(ctx)
	rec := testRecord{Payload: msg.Payload, Sender: actCtx.Caller.String()}
	if err := sm.PutState(state.Key("test", msg.Payload), &rec); err != nil {
		return nil, err
	}
	if string(msg.Payload) == "fail" {
		return nil, errTestFailure
	}
	return &action.Receipt{}, nil
}

func newTestFactory(t *testing.T, kv db.KVStore) Factory {
	registry := protocol.NewRegistry()
	require.NoError(t, registry.Register(&testProtocol{}))
	sf := NewFactory(kv, registry)
	require.NoError(t, sf.Start(context.Background()))
	return sf
}

func sendMessage(t *testing.T, nonce uint64, payload string) *action.SealedEnvelope {
	selp, err := action.Sign(action.NewEnvelope(nonce, &action.SendMessage{Payload: []byte(payload)}), identityset.PrivateKey(0))
	require.NoError(t, err)
	return selp
}

func TestFactory(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	kv := db.NewMemKVStore()
	sf := newTestFactory(t, kv)
	_, ok := sf.Height()
	r.False(ok)
	r.Equal(hash.BytesToHash256(mptrie.EmptyRootHash()), sf.RootHash())

	// genesis
	ws, err := sf.NewWorkingSet(0)
	r.NoError(err)
	r.NoError(ws.CreateGenesisStates(ctx))
	r.NoError(sf.Commit(ws, db.NewBatch()))
	height, ok := sf.Height()
	r.True(ok)
	r.Zero(height)
	genesisRoot := sf.RootHash()
	var rec testRecord
	r.NoError(sf.State(state.Key("test", []byte("genesis")), &rec))
	r.Equal([]byte("genesis"), rec.Payload)

	_, err = sf.NewWorkingSet(2)
	r.Error(err)

	// block 1
	ws, err = sf.NewWorkingSet(1)
	r.NoError(err)
	receipt, err := ws.RunAction(ctx, sendMessage(t, 1, "hello"))
	r.NoError(err)
	r.Equal(uint64(1), receipt.BlockHeight)
	b := db.NewBatch()
	b.Put("extra", []byte("k"), []byte("v"))
	r.NoError(sf.Commit(ws, b))
	v, err := kv.Get("extra", []byte("k"))
	r.NoError(err)
	r.Equal([]byte("v"), v)

	key := state.Key("test", []byte("hello"))
	r.NoError(sf.State(key, &rec))
	r.Equal(identityset.Address(0).String(), rec.Sender)
	r.Equal(state.ErrStateNotExist, errors.Cause(sf.StateAt(genesisRoot, key, &rec)))

	// proofs at the committed root
	root := sf.RootHash()
	proof, err := sf.Prove(root, key, state.Key("test", []byte("absent")))
	r.NoError(err)
	value, err := mptrie.VerifyProof(root[:], key, proof)
	r.NoError(err)
	var proven testRecord
	r.NoError(state.Deserialize(&proven, value))
	r.Equal([]byte("hello"), proven.Payload)
	_, err = mptrie.VerifyProof(root[:], state.Key("test", []byte("absent")), proof)
	r.Equal(trie.ErrNotExist, errors.Cause(err))

	_, err = sf.Prove(hash.Hash256b([]byte("unknown")), key)
	r.Equal(ErrUnknownRoot, errors.Cause(err))

	// restart
	sf2 := newTestFactory(t, kv)
	height, ok = sf2.Height()
	r.True(ok)
	r.Equal(uint64(1), height)
	r.Equal(root, sf2.RootHash())
}

func TestWorkingSetRevert(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	sf := newTestFactory(t, db.NewMemKVStore())
	ws, err := sf.NewWorkingSet(0)
	r.NoError(err)
	r.NoError(ws.CreateGenesisStates(ctx))
	root, err := ws.RootHash()
	r.NoError(err)

	_, err = ws.RunAction(ctx, sendMessage(t, 1, "fail"))
	r.Equal(errTestFailure, errors.Cause(err))
	after, err := ws.RootHash()
	r.NoError(err)
	r.Equal(root, after)
	var rec testRecord
	r.Equal(state.ErrStateNotExist, errors.Cause(ws.State(state.Key("test", []byte("fail")), &rec)))

	claim, err := action.Sign(action.NewEnvelope(2, &action.ClaimRewards{}), identityset.PrivateKey(0))
	r.NoError(err)
	_, err = ws.RunAction(ctx, claim)
	r.Equal(action.ErrUnknownType, errors.Cause(err))

	// nested snapshots
	s1 := ws.Snapshot()
	r.NoError(ws.PutState(state.Key("test", []byte("a")), &testRecord{}))
	s2 := ws.Snapshot()
	r.NoError(ws.PutState(state.Key("test", []byte("b")), &testRecord{}))
	r.NoError(ws.Revert(s2))
	r.Error(ws.State(state.Key("test", []byte("b")), &rec))
	r.NoError(ws.State(state.Key("test", []byte("a")), &rec))
	r.NoError(ws.Revert(s1))
	r.Error(ws.State(state.Key("test", []byte("a")), &rec))
	r.Error(ws.Revert(s2))

	r.NoError(ws.DelState(state.Key("test", []byte("missing"))))
}
