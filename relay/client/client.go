// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package client

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
	"github.com/iotexproject/iotex-bridge/pkg/log"
)

type (
	// ChainClient is the relay's view of one bridge chain
	ChainClient interface {
		// Name is the name of the chain in logs and metrics
		Name() string
		ChainMeta(context.Context) (*chainservice.ChainMeta, error)
		BestHeader(context.Context) (*block.Block, error)
		// HeadersSince returns up to limit finalized blocks starting at height from
		HeadersSince(ctx context.Context, from, limit uint64) ([]*block.Block, error)
		// BridgedBestFinalized returns the best header the chain's finality light client imported
		BridgedBestFinalized(context.Context) (*chainservice.HeaderRef, error)
		// BridgedHead returns the best bridged header the chain's lanes verify proofs against
		BridgedHead(context.Context) (*chainservice.HeaderRef, error)
		OutboundLane(ctx context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.OutboundLaneData, error)
		InboundLane(ctx context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.InboundLaneData, error)
		MessageSizes(ctx context.Context, lane action.LaneID, at hash.Hash256, begin, end uint64) ([]uint64, error)
		// Prove returns a merged storage proof of the keys in the state of the block
		Prove(ctx context.Context, at hash.Hash256, keys ...[]byte) ([][]byte, error)
		AccountNonce(context.Context, address.Address) (uint64, error)
		Balance(context.Context, address.Address) (*uint256.Int, error)
		Rewards(context.Context, address.Address, action.LaneID) (*uint256.Int, error)
		SendAction(context.Context, *action.SealedEnvelope) (*action.Receipt, error)
	}

	// Submitter signs actions with the relayer key and submits them one at a time
	Submitter struct {
		client  ChainClient
		sk      crypto.PrivateKey
		limiter *rate.Limiter
		mu      sync.Mutex
	}
)

// NewSubmitter creates a submitter of the relayer key, a nil limiter doesn't limit the rate
func NewSubmitter(client ChainClient, sk crypto.PrivateKey, limiter *rate.Limiter) *Submitter {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Submitter{
		client:  client,
		sk:      sk,
		limiter: limiter,
	}
}

// Address returns the relayer address
func (s *Submitter) Address() address.Address {
	addr, err := address.FromBytes(s.sk.PublicKey().Hash())
	if err != nil {
		log.L().Panic("Failed to derive relayer address.", zap.Error(err))
	}
	return addr
}

// Client returns the chain the submitter submits to
func (s *Submitter) Client() ChainClient { return s.client }

// Submit signs the action with the next account nonce and sends it
func (s *Submitter) Submit(ctx context.Context, act action.Action) (*action.Receipt, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.client.AccountNonce(ctx, s.Address())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account nonce")
	}
	selp, err := action.Sign(action.NewEnvelope(nonce+1, act), s.sk)
	if err != nil {
		return nil, err
	}
	receipt, err := s.client.SendAction(ctx, selp)
	if err != nil {
		return nil, err
	}
	log.L().Debug("Submitted action.",
		zap.String("chain", s.client.Name()),
		zap.Uint32("type", act.Type()),
		zap.Uint64("nonce", nonce+1),
		zap.Uint64("height", receipt.BlockHeight))
	return receipt, nil
}
