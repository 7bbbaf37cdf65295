// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package lane adapts the bridge chain clients to the two races of a message lane. The delivery race
// relays messages of the source outbound lane into the target inbound lane. The confirmation race
// relays the target inbound lane state back into the source outbound lane.
package lane

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/relay/client"
	"github.com/iotexproject/iotex-bridge/relay/race"
)

type (
	// outboundSource reads the outbound lane of one chain at the header the other chain verifies against
	outboundSource struct {
		lane   action.LaneID
		source client.ChainClient
		target client.ChainClient
	}

	// inboundTarget reads the inbound lane at the best header and submits delivery proofs
	inboundTarget struct {
		lane      action.LaneID
		submitter *client.Submitter
	}

	// inboundSource reads the inbound lane of the target chain at the header the source chain verifies against
	inboundSource struct {
		lane   action.LaneID
		source client.ChainClient
		target client.ChainClient
	}

	// outboundTarget reads the outbound lane at the best header and submits confirmations
	outboundTarget struct {
		lane      action.LaneID
		submitter *client.Submitter
	}
)

// NewDeliveryRace creates the race delivering the messages of the lane from the source chain to
// the chain of the submitter
func NewDeliveryRace(
	lane action.LaneID,
	source client.ChainClient,
	target *client.Submitter,
	strategy race.Strategy,
	cfg race.Config,
	opts ...race.Option,
) *race.Engine {
	return race.NewEngine(
		raceName("delivery", lane, source, target.Client()),
		&outboundSource{lane: lane, source: source, target: target.Client()},
		&inboundTarget{lane: lane, submitter: target},
		strategy,
		cfg,
		opts...,
	)
}

// NewConfirmationRace creates the race confirming the deliveries of the lane on the target chain
// back to the chain of the submitter. Every delivery proof confirms all the nonces delivered
// at its block, so the strategy is unbounded
func NewConfirmationRace(
	lane action.LaneID,
	target client.ChainClient,
	source *client.Submitter,
	cfg race.Config,
	opts ...race.Option,
) *race.Engine {
	return race.NewEngine(
		raceName("confirmation", lane, target, source.Client()),
		&inboundSource{lane: lane, source: target, target: source.Client()},
		&outboundTarget{lane: lane, submitter: source},
		race.Strategy{},
		cfg,
		opts...,
	)
}

func raceName(kind string, lane action.LaneID, from, to client.ChainClient) string {
	return kind + "-" + lane.String() + "-" + from.Name() + "-" + to.Name()
}

func (s *outboundSource) Nonces(ctx context.Context) (*race.Nonces, error) {
	head, err := s.target.BridgedHead(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the bridged head of %s", s.target.Name())
	}
	out, err := s.source.OutboundLane(ctx, s.lane, head.Hash)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the outbound lane of %s", s.source.Name())
	}
	return &race.Nonces{
		AtNumber:  head.Number,
		AtBlock:   head.Hash,
		Latest:    out.LatestGenerated,
		Confirmed: out.LatestReceived,
	}, nil
}

func (s *outboundSource) MessageWeights(ctx context.Context, at hash.Hash256, begin, end uint64) ([]uint64, error) {
	return s.source.MessageSizes(ctx, s.lane, at, begin, end)
}

// GenerateProof proves the outbound lane state along with the messages, the target reads the
// latest received nonce from it
func (s *outboundSource) GenerateProof(ctx context.Context, at hash.Hash256, begin, end uint64) ([][]byte, error) {
	keys := make([][]byte, 0, end-begin+2)
	keys = append(keys, messagelane.OutboundLaneKey(s.lane))
	for nonce := begin; nonce <= end; nonce++ {
		keys = append(keys, messagelane.MessageKey(s.lane, nonce))
	}
	return s.source.Prove(ctx, at, keys...)
}

func (t *inboundTarget) Nonces(ctx context.Context) (*race.Nonces, error) {
	return bestNonces(ctx, t.submitter.Client(), func(at hash.Hash256) (uint64, uint64, error) {
		in, err := t.submitter.Client().InboundLane(ctx, t.lane, at)
		if err != nil {
			return 0, 0, err
		}
		return in.LastDelivered, in.LastConfirmed, nil
	})
}

func (t *inboundTarget) SubmitProof(ctx context.Context, at hash.Hash256, begin, end uint64, proof [][]byte) (uint64, uint64, error) {
	if _, err := t.submitter.Submit(ctx, &action.ReceiveMessagesProof{
		Lane:    t.lane,
		AtBlock: at,
		Begin:   begin,
		End:     end,
		Proof:   proof,
	}); err != nil {
		return 0, 0, err
	}
	return begin, end, nil
}

func (s *inboundSource) Nonces(ctx context.Context) (*race.Nonces, error) {
	head, err := s.target.BridgedHead(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the bridged head of %s", s.target.Name())
	}
	in, err := s.source.InboundLane(ctx, s.lane, head.Hash)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the inbound lane of %s", s.source.Name())
	}
	return &race.Nonces{
		AtNumber:  head.Number,
		AtBlock:   head.Hash,
		Latest:    in.LastDelivered,
		Confirmed: in.LastConfirmed,
	}, nil
}

// MessageWeights weighs every nonce one, a delivery proof has the same size whatever it confirms
func (s *inboundSource) MessageWeights(_ context.Context, _ hash.Hash256, begin, end uint64) ([]uint64, error) {
	weights := make([]uint64, 0, end-begin+1)
	for i := begin; i <= end; i++ {
		weights = append(weights, 1)
	}
	return weights, nil
}

func (s *inboundSource) GenerateProof(ctx context.Context, at hash.Hash256, _, _ uint64) ([][]byte, error) {
	return s.source.Prove(ctx, at, messagelane.InboundLaneKey(s.lane))
}

func (t *outboundTarget) Nonces(ctx context.Context) (*race.Nonces, error) {
	return bestNonces(ctx, t.submitter.Client(), func(at hash.Hash256) (uint64, uint64, error) {
		out, err := t.submitter.Client().OutboundLane(ctx, t.lane, at)
		if err != nil {
			return 0, 0, err
		}
		return out.LatestReceived, out.LatestReceived, nil
	})
}

func (t *outboundTarget) SubmitProof(ctx context.Context, at hash.Hash256, begin, end uint64, proof [][]byte) (uint64, uint64, error) {
	if _, err := t.submitter.Submit(ctx, &action.ReceiveMessagesDeliveryProof{
		Lane:    t.lane,
		AtBlock: at,
		Proof:   proof,
	}); err != nil {
		return 0, 0, err
	}
	return begin, end, nil
}

func bestNonces(ctx context.Context, c client.ChainClient, read func(hash.Hash256) (uint64, uint64, error)) (*race.Nonces, error) {
	best, err := c.BestHeader(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the best header of %s", c.Name())
	}
	at := best.Header.Hash()
	latest, confirmed, err := read(at)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the lane of %s", c.Name())
	}
	return &race.Nonces{
		AtNumber:  best.Header.Number,
		AtBlock:   at,
		Latest:    latest,
		Confirmed: confirmed,
	}, nil
}
