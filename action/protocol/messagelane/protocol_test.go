// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package messagelane

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/account"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/action/protocol/rewarding"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
	"github.com/iotexproject/iotex-bridge/test/identityset"
	"github.com/iotexproject/iotex-bridge/test/mock/mock_chainmanager"
	"github.com/iotexproject/iotex-bridge/testutil/testdb"
)

var _lane = action.LaneID{0, 0, 0, 1}

// bridgedChain is the state of the other side of the lane, with the finalized blocks the light
// client knows about
type bridgedChain struct {
	t      *testing.T
	st     *testdb.StateTrie
	blocks map[hash.Hash256]hash.Hash256
}

func newBridgedChain(t *testing.T) *bridgedChain {
	st, err := testdb.NewStateTrie()
	require.NoError(t, err)
	return &bridgedChain{t: t, st: st, blocks: map[hash.Hash256]hash.Hash256{}}
}

func (bc *bridgedChain) StateRoot(_ protocol.StateReader, blockHash hash.Hash256) (hash.Hash256, error) {
	root, ok := bc.blocks[blockHash]
	if !ok {
		return hash.ZeroHash256, errors.Wrapf(protocol.ErrUnknownHeader, "block %x", blockHash)
	}
	return root, nil
}

func (bc *bridgedChain) put(key []byte, s interface{}) {
	require.NoError(bc.t, bc.st.PutState(key, s))
}

// finalize returns a finalized block committing the current state
func (bc *bridgedChain) finalize() hash.Hash256 {
	root := bc.st.Root()
	h := hash.Hash256b(append(root[:], byteutil.Uint64ToBytesBigEndian(uint64(len(bc.blocks)))...))
	bc.blocks[h] = root
	return h
}

func (bc *bridgedChain) prove(keys ...[]byte) [][]byte {
	proof, err := bc.st.Prove(keys...)
	require.NoError(bc.t, err)
	return proof
}

func (bc *bridgedChain) proveMessages(begin, end uint64) [][]byte {
	keys := [][]byte{OutboundLaneKey(_lane)}
	for n := begin; n <= end; n++ {
		keys = append(keys, MessageKey(_lane, n))
	}
	return bc.prove(keys...)
}

func testBridgeConfig() config.Bridge {
	cfg := config.Default.Bridge
	cfg.DeliveryFee = "50"
	cfg.ConfirmationFee = "10"
	cfg.MaxPayloadSize = 16
	cfg.MaxUnconfirmedMessages = 6
	cfg.MaxUnrewardedRelayerEntries = 3
	cfg.MaxMessagesInDeliveryTx = 3
	cfg.MaxMessagesToPruneAtOnce = 3
	cfg.Lanes = []string{_lane.String()}
	return cfg
}

func newTestState(t *testing.T) *mock_chainmanager.MockStateManager {
	ctrl := gomock.NewController(t)
	sm := testdb.NewMockStateManager(ctrl)
	require.NoError(t, account.NewProtocol(map[string]*uint256.Int{
		identityset.Address(0).String(): uint256.NewInt(1000),
	}).CreateGenesisStates(context.Background(), sm))
	require.NoError(t, rewarding.NewProtocol(nil).CreateGenesisStates(context.Background(), sm))
	return sm
}

func callerCtx(caller address.Address) context.Context {
	return protocol.WithActionCtx(context.Background(), protocol.ActionCtx{Caller: caller})
}

type payloadDispatcher struct {
	dispatched []uint64
}

func (d *payloadDispatcher) Dispatch(_ context.Context, _ action.LaneID, nonce uint64, payload []byte) error {
	if bytes.Equal(payload, []byte("bad")) {
		return errors.New("failed to execute")
	}
	d.dispatched = append(d.dispatched, nonce)
	return nil
}

func TestSendMessage(t *testing.T) {
	r := require.New(t)

	sm := newTestState(t)
	p := NewProtocol(testBridgeConfig(), newBridgedChain(t))
	sender := identityset.Address(0)
	send := func(ctx context.Context, lane action.LaneID, payload []byte) (*action.Receipt, error) {
		return p.Handle(ctx, &action.SendMessage{Lane: lane, Payload: payload}, sm)
	}

	for i := uint64(1); i <= 3; i++ {
		receipt, err := send(callerCtx(sender), _lane, []byte{byte(i)})
		r.NoError(err)
		r.Equal(i, byteutil.BytesToUint64BigEndian(receipt.ReturnValue))
		r.Equal(SentTopic, receipt.Logs[0].Topic)
		m, err := MessageOf(sm, _lane, i)
		r.NoError(err)
		r.Equal([]byte{byte(i)}, m.Payload)
	}
	out, err := OutboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(OutboundLaneData{LatestGenerated: 3, OldestUnpruned: 1}, *out)

	// the delivery fee is charged into the relayer fund
	acct, err := account.LoadAccount(sm, sender)
	r.NoError(err)
	r.Equal(uint64(850), acct.Balance.Uint64())
	f, err := rewarding.FundOf(sm)
	r.NoError(err)
	r.Equal(uint64(150), f.Balance.Uint64())

	_, err = send(callerCtx(sender), _lane, make([]byte, 17))
	r.Equal(protocol.ErrMessageTooLarge, errors.Cause(err))
	_, err = send(callerCtx(sender), action.LaneID{9}, nil)
	r.Equal(action.ErrInvalidAction, errors.Cause(err))
	_, err = send(callerCtx(identityset.Address(1)), _lane, nil)
	r.Equal(protocol.ErrInsufficientBalance, errors.Cause(err))

	for i := 4; i <= 6; i++ {
		_, err := send(callerCtx(sender), _lane, nil)
		r.NoError(err)
	}
	_, err = send(callerCtx(sender), _lane, nil)
	r.Equal(protocol.ErrTooManyUnconfirmedMessages, errors.Cause(err))

	r.NoError(operating.SetHalted(sm, ProtocolID, true))
	_, err = send(callerCtx(sender), _lane, nil)
	r.Equal(protocol.ErrHalted, errors.Cause(err))
}

func TestReceiveMessagesProof(t *testing.T) {
	r := require.New(t)

	var (
		sm         = newTestState(t)
		source     = newBridgedChain(t)
		dispatcher = &payloadDispatcher{}
		p          = NewProtocol(testBridgeConfig(), source, DispatcherOption(dispatcher))
		relayerA   = identityset.Address(3)
		relayerB   = identityset.Address(4)
		relayerC   = identityset.Address(5)
	)
	for n := uint64(1); n <= 5; n++ {
		payload := []byte{byte(n)}
		if n == 2 {
			payload = []byte("bad")
		}
		source.put(MessageKey(_lane, n), &Message{Payload: payload})
	}
	source.put(OutboundLaneKey(_lane), &OutboundLaneData{LatestGenerated: 5, OldestUnpruned: 1})
	block := source.finalize()
	deliver := func(relayer address.Address, begin, end uint64, proof [][]byte) (*action.Receipt, error) {
		return p.Handle(callerCtx(relayer), &action.ReceiveMessagesProof{
			Lane:    _lane,
			AtBlock: block,
			Begin:   begin,
			End:     end,
			Proof:   proof,
		}, sm)
	}

	receipt, err := deliver(relayerA, 1, 2, source.proveMessages(1, 2))
	r.NoError(err)
	r.Equal(uint64(2), byteutil.BytesToUint64BigEndian(receipt.ReturnValue))
	r.Len(receipt.Logs, 2)
	r.Equal(DispatchedTopic, receipt.Logs[0].Topic)
	// a failed dispatch doesn't fail the delivery
	r.Equal(DispatchFailedTopic, receipt.Logs[1].Topic)
	r.Equal([]uint64{1}, dispatcher.dispatched)
	in, err := InboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(uint64(2), in.LastDelivered)

	for _, test := range []struct {
		name        string
		begin, end  uint64
		proof       [][]byte
		expectedErr error
	}{
		{"already delivered", 1, 2, source.proveMessages(1, 2), protocol.ErrAlreadyDelivered},
		{"partially delivered", 2, 3, source.proveMessages(2, 3), protocol.ErrNonceOutOfOrder},
		{"gap", 4, 5, source.proveMessages(4, 5), protocol.ErrNonceOutOfOrder},
		{"too many messages", 3, 6, source.proveMessages(3, 5), protocol.ErrTooManyMessages},
		{"unbounded range", 3, math.MaxUint64, source.proveMessages(3, 5), protocol.ErrTooManyMessages},
		{"missing message", 3, 4, source.proveMessages(3, 3), protocol.ErrProofVerificationFailed},
		{"padded proof", 3, 3, source.proveMessages(3, 4), protocol.ErrProofVerificationFailed},
		{"no lane state", 3, 3, source.prove(MessageKey(_lane, 3)), protocol.ErrProofVerificationFailed},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := deliver(relayerB, test.begin, test.end, test.proof)
			require.Equal(t, test.expectedErr, errors.Cause(err))
		})
	}

	_, err = p.Handle(callerCtx(relayerB), &action.ReceiveMessagesProof{
		Lane:    _lane,
		AtBlock: hash.Hash256b([]byte("unknown")),
		Begin:   3,
		End:     3,
		Proof:   source.proveMessages(3, 3),
	}, sm)
	r.Equal(protocol.ErrUnknownHeader, errors.Cause(err))

	// contiguous deliveries of one relayer share an entry
	_, err = deliver(relayerA, 3, 3, source.proveMessages(3, 3))
	r.NoError(err)
	_, err = deliver(relayerB, 4, 4, source.proveMessages(4, 4))
	r.NoError(err)
	in, err = InboundLane(sm, _lane)
	r.NoError(err)
	r.Equal([]UnrewardedRelayer{
		{Relayer: relayerA.Bytes(), Begin: 1, End: 3},
		{Relayer: relayerB.Bytes(), Begin: 4, End: 4},
	}, in.Relayers)

	// message 6 is not generated at the block
	source.put(MessageKey(_lane, 6), &Message{Payload: []byte{6}})
	block = source.finalize()
	_, err = deliver(relayerC, 5, 6, source.proveMessages(5, 6))
	r.Equal(protocol.ErrProofVerificationFailed, errors.Cause(err))

	// the bridged chain confirmed 3 messages, which prunes the relayer entries
	source.put(OutboundLaneKey(_lane), &OutboundLaneData{LatestGenerated: 8, OldestUnpruned: 1, LatestReceived: 3})
	for n := uint64(7); n <= 8; n++ {
		source.put(MessageKey(_lane, n), &Message{Payload: []byte{byte(n)}})
	}
	block = source.finalize()
	_, err = deliver(relayerC, 5, 5, source.proveMessages(5, 5))
	r.NoError(err)
	in, err = InboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(uint64(3), in.LastConfirmed)
	r.Equal([]UnrewardedRelayer{
		{Relayer: relayerB.Bytes(), Begin: 4, End: 4},
		{Relayer: relayerC.Bytes(), Begin: 5, End: 5},
	}, in.Relayers)

	// limits on relayer entries and unconfirmed messages
	_, err = deliver(relayerA, 6, 6, source.proveMessages(6, 6))
	r.NoError(err)
	_, err = deliver(relayerB, 7, 7, source.proveMessages(7, 7))
	r.Equal(protocol.ErrTooManyUnrewardedRelayers, errors.Cause(err))
	_, err = deliver(relayerA, 7, 8, source.proveMessages(7, 8))
	r.NoError(err)
	in, err = InboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(uint64(5), in.Unconfirmed())

	source.put(OutboundLaneKey(_lane), &OutboundLaneData{LatestGenerated: 10, OldestUnpruned: 1, LatestReceived: 3})
	for n := uint64(9); n <= 10; n++ {
		source.put(MessageKey(_lane, n), &Message{Payload: []byte{byte(n)}})
	}
	block = source.finalize()
	_, err = deliver(relayerA, 9, 9, source.proveMessages(9, 9))
	r.NoError(err)
	_, err = deliver(relayerA, 10, 10, source.proveMessages(10, 10))
	r.Equal(protocol.ErrTooManyUnconfirmedMessages, errors.Cause(err))
	r.Equal([]uint64{1, 3, 4, 5, 6, 7, 8, 9}, dispatcher.dispatched)
}

func TestReceiveMessagesDeliveryProof(t *testing.T) {
	r := require.New(t)

	var (
		sm       = newTestState(t)
		target   = newBridgedChain(t)
		p        = NewProtocol(testBridgeConfig(), target)
		sender   = identityset.Address(0)
		relayerA = identityset.Address(3)
		relayerB = identityset.Address(4)
		relayerC = identityset.Address(5)
	)
	for i := 0; i < 5; i++ {
		_, err := p.Handle(callerCtx(sender), &action.SendMessage{Lane: _lane, Payload: []byte{byte(i)}}, sm)
		r.NoError(err)
	}
	confirm := func(confirmer address.Address, in *InboundLaneData) error {
		target.put(InboundLaneKey(_lane), in)
		_, err := p.Handle(callerCtx(confirmer), &action.ReceiveMessagesDeliveryProof{
			Lane:    _lane,
			AtBlock: target.finalize(),
			Proof:   target.prove(InboundLaneKey(_lane)),
		}, sm)
		return err
	}
	rewardOf := func(relayer address.Address) uint64 {
		reward, err := rewarding.RewardOf(sm, relayer, _lane)
		r.NoError(err)
		return reward.Uint64()
	}

	for _, test := range []struct {
		name string
		in   *InboundLaneData
		err  error
	}{
		{"nothing delivered", &InboundLaneData{}, protocol.ErrStale},
		{"over generated", &InboundLaneData{LastDelivered: 6, Relayers: []UnrewardedRelayer{{relayerA.Bytes(), 1, 6}}}, protocol.ErrProofVerificationFailed},
		{"uncovered range", &InboundLaneData{LastDelivered: 5, Relayers: []UnrewardedRelayer{{relayerA.Bytes(), 1, 2}}}, protocol.ErrProofVerificationFailed},
		{"gap in entries", &InboundLaneData{LastDelivered: 5, Relayers: []UnrewardedRelayer{
			{relayerA.Bytes(), 1, 2}, {relayerB.Bytes(), 4, 5},
		}}, protocol.ErrProofVerificationFailed},
	} {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.err, errors.Cause(confirm(relayerC, test.in)))
		})
	}

	_, err := p.Handle(callerCtx(relayerC), &action.ReceiveMessagesDeliveryProof{
		Lane:    _lane,
		AtBlock: target.finalize(),
		Proof:   target.prove(OutboundLaneKey(_lane)),
	}, sm)
	r.Equal(protocol.ErrProofVerificationFailed, errors.Cause(err))

	delivered := &InboundLaneData{LastDelivered: 5, Relayers: []UnrewardedRelayer{
		{relayerA.Bytes(), 1, 2}, {relayerB.Bytes(), 3, 5},
	}}
	r.NoError(confirm(relayerC, delivered))
	r.Equal(uint64(80), rewardOf(relayerA))
	r.Equal(uint64(120), rewardOf(relayerB))
	r.Equal(uint64(50), rewardOf(relayerC))
	f, err := rewarding.FundOf(sm)
	r.NoError(err)
	r.Equal(uint64(250), f.Unclaimed.Uint64())
	r.Equal(f.Balance, f.Unclaimed)

	// confirmed messages are pruned, a few at a time
	out, err := OutboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(OutboundLaneData{LatestGenerated: 5, OldestUnpruned: 4, LatestReceived: 5}, *out)
	_, err = MessageOf(sm, _lane, 3)
	r.Equal(state.ErrStateNotExist, errors.Cause(err))
	_, err = MessageOf(sm, _lane, 4)
	r.NoError(err)

	// resubmitting is stale
	r.Equal(protocol.ErrStale, errors.Cause(confirm(relayerC, delivered)))

	// the next confirmation only rewards the new range, entries already rewarded are ignored
	_, err = p.Handle(callerCtx(sender), &action.SendMessage{Lane: _lane, Payload: []byte{5}}, sm)
	r.NoError(err)
	r.NoError(confirm(relayerB, &InboundLaneData{LastDelivered: 6, Relayers: []UnrewardedRelayer{
		{relayerB.Bytes(), 3, 5}, {relayerA.Bytes(), 6, 6},
	}}))
	r.Equal(uint64(120), rewardOf(relayerA))
	r.Equal(uint64(130), rewardOf(relayerB))
	out, err = OutboundLane(sm, _lane)
	r.NoError(err)
	r.Equal(OutboundLaneData{LatestGenerated: 6, OldestUnpruned: 7, LatestReceived: 6}, *out)
}
