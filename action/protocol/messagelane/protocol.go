// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package messagelane

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/action/protocol/rewarding"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
)

const (
	// ProtocolID is the name of the message lane protocol, also its operating module name
	ProtocolID = "messagelane"

	// SentTopic is the receipt log topic of a sent message, carrying the nonce
	SentTopic = "messagelane.sent"
	// DispatchedTopic is the receipt log topic of a dispatched message, carrying the nonce
	DispatchedTopic = "messagelane.dispatched"
	// DispatchFailedTopic is the receipt log topic of a message whose dispatch failed, carrying the nonce
	DispatchFailedTopic = "messagelane.dispatchFailed"
	// ConfirmedTopic is the receipt log topic of a delivery confirmation, carrying the latest received nonce
	ConfirmedTopic = "messagelane.confirmed"
)

var _laneMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "iotex_bridge_message_lane",
		Help: "Message lane operations",
	},
	[]string{"type", "result"},
)

func init() {
	prometheus.MustRegister(_laneMtc)
}

type (
	// HeaderChain resolves the state root of a bridged chain block the light client retains
	HeaderChain interface {
		StateRoot(sr protocol.StateReader, blockHash hash.Hash256) (hash.Hash256, error)
	}

	// Dispatcher executes the payload of a delivered message
	Dispatcher interface {
		Dispatch(ctx context.Context, lane action.LaneID, nonce uint64, payload []byte) error
	}

	// Option sets the protocol options
	Option func(*Protocol)

	// Protocol is the message lane ledger of both lane directions
	Protocol struct {
		cfg             config.Bridge
		headers         HeaderChain
		dispatcher      Dispatcher
		lanes           map[action.LaneID]struct{}
		deliveryFee     *uint256.Int
		confirmationFee *uint256.Int
	}

	logDispatcher struct{}
)

func (logDispatcher) Dispatch(_ context.Context, lane action.LaneID, nonce uint64, payload []byte) error {
	log.L().Debug("Dispatched message.", zap.Stringer("lane", lane), zap.Uint64("nonce", nonce), zap.Int("size", len(payload)))
	return nil
}

// DispatcherOption sets the dispatcher of delivered messages
func DispatcherOption(d Dispatcher) Option {
	return func(p *Protocol) {
		p.dispatcher = d
	}
}

// NewProtocol creates the message lane protocol verifying bridged state against the header chain.
// Lanes not listed in the config are rejected unless the list is empty
func NewProtocol(cfg config.Bridge, headers HeaderChain, opts ...Option) *Protocol {
	p := &Protocol{
		cfg:             cfg,
		headers:         headers,
		dispatcher:      logDispatcher{},
		lanes:           make(map[action.LaneID]struct{}),
		deliveryFee:     cfg.DeliveryFeeValue(),
		confirmationFee: cfg.ConfirmationFeeValue(),
	}
	for _, lane := range cfg.LaneIDs() {
		p.lanes[lane] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// Handle handles SendMessage, ReceiveMessagesProof and ReceiveMessagesDeliveryProof
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	var (
		receipt *action.Receipt
		err     error
		name    string
	)
	switch act := act.(type) {
	case *action.SendMessage:
		name = "send"
		receipt, err = p.handleSend(ctx, act, sm)
	case *action.ReceiveMessagesProof:
		name = "deliver"
		receipt, err = p.handleReceiveMessages(ctx, act, sm)
	case *action.ReceiveMessagesDeliveryProof:
		name = "confirm"
		receipt, err = p.handleDeliveryProof(ctx, act, sm)
	default:
		return nil, nil
	}
	if err != nil {
		_laneMtc.WithLabelValues(name, "rejected").Inc()
		return nil, err
	}
	_laneMtc.WithLabelValues(name, "accepted").Inc()
	return receipt, nil
}

func (p *Protocol) checkLane(sr protocol.StateReader, lane action.LaneID) error {
	if err := operating.EnsureOperational(sr, ProtocolID); err != nil {
		return err
	}
	if len(p.lanes) == 0 {
		return nil
	}
	if _, ok := p.lanes[lane]; !ok {
		return errors.Wrapf(action.ErrInvalidAction, "unknown lane %s", lane)
	}
	return nil
}

func (p *Protocol) handleSend(ctx context.Context, act *action.SendMessage, sm protocol.StateManager) (*action.Receipt, error) {
	if err := p.checkLane(sm, act.Lane); err != nil {
		return nil, err
	}
	if uint64(len(act.Payload)) > p.cfg.MaxPayloadSize {
		return nil, errors.Wrapf(protocol.ErrMessageTooLarge, "payload size %d, limit %d", len(act.Payload), p.cfg.MaxPayloadSize)
	}
	out, err := OutboundLane(sm, act.Lane)
	if err != nil {
		return nil, err
	}
	if out.Unconfirmed() >= p.cfg.MaxUnconfirmedMessages {
		return nil, errors.Wrapf(protocol.ErrTooManyUnconfirmedMessages, "%d unconfirmed messages", out.Unconfirmed())
	}
	sender := protocol.MustGetActionCtx(ctx).Caller
	if err := rewarding.ChargeFee(sm, sender, p.deliveryFee); err != nil {
		return nil, err
	}
	out.LatestGenerated++
	nonce := out.LatestGenerated
	if err := sm.PutState(MessageKey(act.Lane, nonce), &Message{Payload: act.Payload}); err != nil {
		return nil, err
	}
	if err := sm.PutState(OutboundLaneKey(act.Lane), out); err != nil {
		return nil, err
	}
	nonceBytes := byteutil.Uint64ToBytesBigEndian(nonce)
	return (&action.Receipt{ReturnValue: nonceBytes}).AddLogs(&action.Log{Topic: SentTopic, Data: nonceBytes}), nil
}

func (p *Protocol) handleReceiveMessages(ctx context.Context, act *action.ReceiveMessagesProof, sm protocol.StateManager) (*action.Receipt, error) {
	if err := p.checkLane(sm, act.Lane); err != nil {
		return nil, err
	}
	in, err := InboundLane(sm, act.Lane)
	if err != nil {
		return nil, err
	}
	if act.End <= in.LastDelivered {
		return nil, errors.Wrapf(protocol.ErrAlreadyDelivered, "messages up to %d are delivered", in.LastDelivered)
	}
	if act.Begin != in.LastDelivered+1 {
		return nil, errors.Wrapf(protocol.ErrNonceOutOfOrder, "begin %d, expecting %d", act.Begin, in.LastDelivered+1)
	}
	if act.MessageCount() > p.cfg.MaxMessagesInDeliveryTx {
		return nil, errors.Wrapf(protocol.ErrTooManyMessages, "%d messages, limit %d", act.MessageCount(), p.cfg.MaxMessagesInDeliveryTx)
	}
	root, err := p.headers.StateRoot(sm, act.AtBlock)
	if err != nil {
		return nil, err
	}
	reader, err := protocol.NewProofReader(root, act.Proof)
	if err != nil {
		return nil, err
	}
	var source OutboundLaneData
	if err := readProven(reader, OutboundLaneKey(act.Lane), &source); err != nil {
		return nil, err
	}
	if act.End > source.LatestGenerated {
		return nil, errors.Wrapf(protocol.ErrProofVerificationFailed, "message %d is not generated, latest %d", act.End, source.LatestGenerated)
	}
	messages := make([]Message, 0, act.MessageCount())
	for nonce := act.Begin; nonce <= act.End; nonce++ {
		var m Message
		if err := readProven(reader, MessageKey(act.Lane, nonce), &m); err != nil {
			return nil, errors.Wrapf(err, "message %d", nonce)
		}
		messages = append(messages, m)
	}
	if err := reader.Close(); err != nil {
		return nil, err
	}

	in.confirm(source.LatestReceived)
	if act.End-in.LastConfirmed > p.cfg.MaxUnconfirmedMessages {
		return nil, errors.Wrapf(protocol.ErrTooManyUnconfirmedMessages, "%d unconfirmed messages", act.End-in.LastConfirmed)
	}
	relayer := protocol.MustGetActionCtx(ctx).Caller
	in.deliver(relayer.Bytes(), act.Begin, act.End)
	if uint64(len(in.Relayers)) > p.cfg.MaxUnrewardedRelayerEntries {
		return nil, errors.Wrapf(protocol.ErrTooManyUnrewardedRelayers, "%d unrewarded relayer entries", len(in.Relayers))
	}

	receipt := &action.Receipt{ReturnValue: byteutil.Uint64ToBytesBigEndian(act.End)}
	for i, m := range messages {
		nonce := act.Begin + uint64(i)
		nonceBytes := byteutil.Uint64ToBytesBigEndian(nonce)
		if err := p.dispatcher.Dispatch(ctx, act.Lane, nonce, m.Payload); err != nil {
			log.L().Debug("Failed to dispatch message.", zap.Stringer("lane", act.Lane), zap.Uint64("nonce", nonce), zap.Error(err))
			receipt.AddLogs(&action.Log{Topic: DispatchFailedTopic, Data: nonceBytes})
			continue
		}
		receipt.AddLogs(&action.Log{Topic: DispatchedTopic, Data: nonceBytes})
	}
	if err := sm.PutState(InboundLaneKey(act.Lane), in); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (p *Protocol) handleDeliveryProof(ctx context.Context, act *action.ReceiveMessagesDeliveryProof, sm protocol.StateManager) (*action.Receipt, error) {
	if err := p.checkLane(sm, act.Lane); err != nil {
		return nil, err
	}
	root, err := p.headers.StateRoot(sm, act.AtBlock)
	if err != nil {
		return nil, err
	}
	reader, err := protocol.NewProofReader(root, act.Proof)
	if err != nil {
		return nil, err
	}
	var target InboundLaneData
	if err := readProven(reader, InboundLaneKey(act.Lane), &target); err != nil {
		return nil, err
	}
	if err := reader.Close(); err != nil {
		return nil, err
	}
	out, err := OutboundLane(sm, act.Lane)
	if err != nil {
		return nil, err
	}
	if target.LastDelivered <= out.LatestReceived {
		return nil, errors.Wrapf(protocol.ErrStale, "delivered %d, already received %d", target.LastDelivered, out.LatestReceived)
	}
	if target.LastDelivered > out.LatestGenerated {
		return nil, errors.Wrapf(protocol.ErrProofVerificationFailed, "delivered %d, generated %d", target.LastDelivered, out.LatestGenerated)
	}
	counts, err := relayerCounts(target.Relayers, out.LatestReceived, target.LastDelivered)
	if err != nil {
		return nil, err
	}
	confirmer := protocol.MustGetActionCtx(ctx).Caller
	for _, reward := range SplitRewards(counts, confirmer, p.deliveryFee, p.confirmationFee) {
		if err := rewarding.RegisterRelayerReward(sm, act.Lane, reward.Relayer, reward.Amount); err != nil {
			return nil, err
		}
	}
	out.LatestReceived = target.LastDelivered
	for pruned := uint64(0); pruned < p.cfg.MaxMessagesToPruneAtOnce && out.OldestUnpruned <= out.LatestReceived; pruned++ {
		if err := sm.DelState(MessageKey(act.Lane, out.OldestUnpruned)); err != nil {
			return nil, err
		}
		out.OldestUnpruned++
	}
	if err := sm.PutState(OutboundLaneKey(act.Lane), out); err != nil {
		return nil, err
	}
	log.L().Debug("Confirmed message delivery.",
		zap.Stringer("lane", act.Lane),
		zap.Uint64("latestReceived", out.LatestReceived),
		zap.Int("relayers", len(counts)))
	return (&action.Receipt{}).AddLogs(&action.Log{
		Topic: ConfirmedTopic,
		Data:  byteutil.Uint64ToBytesBigEndian(out.LatestReceived),
	}), nil
}

// relayerCounts counts the messages of each relayer in (prev, latest]. The relayer entries must
// cover the range exactly
func relayerCounts(relayers []UnrewardedRelayer, prev, latest uint64) ([]RelayerCount, error) {
	var (
		counts = []RelayerCount{}
		index  = map[string]int{}
		next   = prev + 1
	)
	for _, r := range relayers {
		if r.End <= prev {
			continue
		}
		begin := r.Begin
		if begin <= prev {
			begin = prev + 1
		}
		if begin != next || r.End < begin || r.End > latest {
			return nil, errors.Wrapf(protocol.ErrProofVerificationFailed, "relayer entry [%d, %d] doesn't continue at %d", r.Begin, r.End, next)
		}
		addr, err := address.FromBytes(r.Relayer)
		if err != nil {
			return nil, errors.Wrap(protocol.ErrProofVerificationFailed, err.Error())
		}
		n := r.End - begin + 1
		if i, ok := index[string(r.Relayer)]; ok {
			counts[i].Count += n
		} else {
			index[string(r.Relayer)] = len(counts)
			counts = append(counts, RelayerCount{Relayer: addr, Count: n})
		}
		next = r.End + 1
	}
	if next != latest+1 {
		return nil, errors.Wrapf(protocol.ErrProofVerificationFailed, "relayer entries end at %d, expecting %d", next-1, latest)
	}
	return counts, nil
}

func readProven(reader *protocol.ProofReader, key []byte, s interface{}) error {
	err := reader.State(key, s)
	if errors.Cause(err) == state.ErrStateNotExist {
		return errors.Wrap(protocol.ErrProofVerificationFailed, err.Error())
	}
	return err
}
