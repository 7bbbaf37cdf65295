// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package chainservice

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/finality"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/test/identityset"
)

var _lane = action.LaneID{0, 0, 0, 1}

func testConfig() config.Config {
	cfg := config.Default
	cfg.Chain.AuthorityKeys = []string{
		identityset.PrivateKeyHex(0),
		identityset.PrivateKeyHex(1),
		identityset.PrivateKeyHex(2),
	}
	cfg.Chain.AuthoritySetID = 1
	cfg.Chain.GenesisBalances = map[string]string{identityset.Address(5).String(): "1000"}
	cfg.Bridge.Lanes = []string{_lane.String()}
	cfg.Bridge.DeliveryFee = "10"
	return cfg
}

func startChain(t *testing.T, cfg config.Config, kv db.KVStore, clk clock.Clock) *ChainService {
	cs, err := New(cfg, WithKVStore(kv), WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, cs.Start(context.Background()))
	return cs
}

func sendMessage(t *testing.T, cs *ChainService, nonce uint64, payload []byte) (*action.Receipt, error) {
	selp, err := action.Sign(action.NewEnvelope(nonce, &action.SendMessage{Lane: _lane, Payload: payload}), identityset.PrivateKey(5))
	require.NoError(t, err)
	return cs.SendAction(context.Background(), selp)
}

func verifyBlock(r *require.Assertions, cs *ChainService, height uint64, set *finality.AuthoritySet) {
	blk, err := cs.BlockByHeight(height)
	r.NoError(err)
	r.Equal(height, blk.Header.Number)
	r.NoError(finality.VerifyJustification(&blk.Header, &blk.Justification, set))
}

func TestGenesis(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	cs := startChain(t, cfg, db.NewMemKVStore(), clock.NewMock())
	defer cs.Stop(context.Background())

	r.Equal(uint64(0), cs.Height())
	meta := cs.ChainMeta()
	r.Equal(cfg.Chain.ID, meta.ChainID)
	r.Equal(uint64(1), meta.SetID)
	r.Equal(cfg.Chain.Authorities(), meta.Authorities)

	genesis, err := cs.BlockByHeight(0)
	r.NoError(err)
	r.Equal(uint64(cfg.Chain.GenesisTimestamp), genesis.Header.Timestamp)
	verifyBlock(r, cs, 0, &finality.AuthoritySet{Authorities: meta.Authorities, SetID: 1})

	acct, err := cs.Account(identityset.Address(5))
	r.NoError(err)
	r.Equal(uint64(1000), acct.Balance.Uint64())
	r.Zero(acct.Nonce)

	// the bridged chain is not tracked yet
	_, err = cs.BridgedBestFinalized()
	r.Equal(protocol.ErrNotInitialized, errors.Cause(err))
	_, err = cs.BridgedHead()
	r.Equal(protocol.ErrNotInitialized, errors.Cause(err))

	_, err = New(config.Default, WithKVStore(db.NewMemKVStore()))
	r.Equal(config.ErrInvalidCfg, errors.Cause(err))
}

func TestSendAction(t *testing.T) {
	r := require.New(t)
	clk := clock.NewMock()
	clk.Add(time.Duration(config.Default.Chain.GenesisTimestamp)*time.Second + time.Hour)
	cs := startChain(t, testConfig(), db.NewMemKVStore(), clk)
	defer cs.Stop(context.Background())

	receipt, err := sendMessage(t, cs, 1, []byte("hello"))
	r.NoError(err)
	r.Equal(byteutil.Uint64ToBytesBigEndian(1), receipt.ReturnValue)
	r.Equal(uint64(1), receipt.BlockHeight)
	r.Equal(uint64(1), cs.Height())
	stored, err := cs.ReceiptByActionHash(receipt.ActionHash)
	r.NoError(err)
	r.Equal(receipt.ReturnValue, stored.ReturnValue)

	// replayed nonce is rejected without a block
	_, err = sendMessage(t, cs, 1, []byte("hello"))
	r.Equal(protocol.ErrInvalidNonce, errors.Cause(err))
	r.Equal(uint64(1), cs.Height())

	_, err = sendMessage(t, cs, 2, []byte("bridge"))
	r.NoError(err)
	r.Equal(uint64(2), cs.Height())

	genesis, err := cs.BlockByHeight(0)
	r.NoError(err)
	first, err := cs.BlockByHeight(1)
	r.NoError(err)
	r.Equal(genesis.Header.Hash(), first.Header.ParentHash)
	r.Equal(uint64(clk.Now().Unix()), first.Header.Timestamp)
	tip, err := cs.BlockByHeight(2)
	r.NoError(err)
	r.Equal(first.Header.Hash(), tip.Header.ParentHash)
	r.Equal(first.Header.Timestamp+1, tip.Header.Timestamp)
	byHash, err := cs.BlockByHash(tip.Header.Hash())
	r.NoError(err)
	r.Equal(tip.Header, byHash.Header)

	blks, err := cs.BlocksSince(1, 10)
	r.NoError(err)
	r.Len(blks, 2)
	blks, err = cs.BlocksSince(0, 2)
	r.NoError(err)
	r.Len(blks, 2)
	blks, err = cs.BlocksSince(3, 10)
	r.NoError(err)
	r.Empty(blks)

	acct, err := cs.Account(identityset.Address(5))
	r.NoError(err)
	r.Equal(uint64(2), acct.Nonce)
	r.Equal(uint64(980), acct.Balance.Uint64())
	fund, err := cs.Fund()
	r.NoError(err)
	r.Equal(uint64(20), fund.Balance.Uint64())

	// lane state is readable at every block
	out, err := cs.OutboundLane(_lane, first.Header.Hash())
	r.NoError(err)
	r.Equal(uint64(1), out.LatestGenerated)
	out, err = cs.OutboundLane(_lane, tip.Header.Hash())
	r.NoError(err)
	r.Equal(uint64(2), out.LatestGenerated)
	in, err := cs.InboundLane(_lane, tip.Header.Hash())
	r.NoError(err)
	r.Zero(in.LastDelivered)
	sizes, err := cs.MessageSizes(_lane, tip.Header.Hash(), 1, 2)
	r.NoError(err)
	r.Equal([]uint64{5, 6}, sizes)
	_, err = cs.MessageSizes(_lane, first.Header.Hash(), 1, 2)
	r.Error(err)

	// storage proof of the lane and its messages
	keys := [][]byte{messagelane.OutboundLaneKey(_lane), messagelane.MessageKey(_lane, 1), messagelane.MessageKey(_lane, 2)}
	proof, err := cs.Prove(tip.Header.Hash(), keys...)
	r.NoError(err)
	reader, err := protocol.NewProofReader(tip.Header.StateRoot, proof)
	r.NoError(err)
	var proven messagelane.OutboundLaneData
	r.NoError(reader.State(keys[0], &proven))
	r.Equal(*out, proven)
	var msg messagelane.Message
	r.NoError(reader.State(keys[2], &msg))
	r.Equal([]byte("bridge"), msg.Payload)
	r.NoError(reader.State(keys[1], &msg))
	r.NoError(reader.Close())
}

func TestAuthorityChange(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	kv := db.NewMemKVStore()
	cs := startChain(t, cfg, kv, clock.NewMock())

	oldSet := &finality.AuthoritySet{Authorities: cfg.Chain.Authorities(), SetID: 1}
	newKeys := identityset.PrivateKeys(6, 4)
	r.NoError(cs.ScheduleAuthorityChange(newKeys))
	r.Error(cs.ScheduleAuthorityChange(nil))

	_, err := sendMessage(t, cs, 1, []byte("a"))
	r.NoError(err)
	changed, err := cs.BlockByHeight(1)
	r.NoError(err)
	r.True(changed.Header.Digest.HasAuthorityChange())
	r.Len(changed.Header.Digest.NextAuthorities, 4)
	verifyBlock(r, cs, 1, oldSet)

	meta := cs.ChainMeta()
	r.Equal(uint64(2), meta.SetID)
	r.Equal(changed.Header.Digest.NextAuthorities, meta.Authorities)
	newSet := &finality.AuthoritySet{Authorities: meta.Authorities, SetID: 2}

	_, err = sendMessage(t, cs, 2, []byte("b"))
	r.NoError(err)
	next, err := cs.BlockByHeight(2)
	r.NoError(err)
	r.False(next.Header.Digest.HasAuthorityChange())
	verifyBlock(r, cs, 2, newSet)
	r.Equal(protocol.ErrInvalidJustification, errors.Cause(
		finality.VerifyJustification(&next.Header, &next.Justification, oldSet)))
	r.NoError(cs.Stop(context.Background()))

	// restarting needs the keys of the switched set
	stale, err := New(cfg, WithKVStore(kv))
	r.NoError(err)
	r.Equal(ErrAuthorityMismatch, errors.Cause(stale.Start(context.Background())))

	cfg.Chain.AuthorityKeys = nil
	for i := 6; i < 10; i++ {
		cfg.Chain.AuthorityKeys = append(cfg.Chain.AuthorityKeys, identityset.PrivateKeyHex(i))
	}
	restarted := startChain(t, cfg, kv, clock.NewMock())
	defer restarted.Stop(context.Background())
	r.Equal(uint64(2), restarted.Height())
	r.Equal(uint64(2), restarted.ChainMeta().SetID)
	_, err = sendMessage(t, restarted, 3, []byte("c"))
	r.NoError(err)
	verifyBlock(r, restarted, 3, newSet)
}
