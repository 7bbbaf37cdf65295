// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package client

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
)

type localClient struct {
	name string
	cs   *chainservice.ChainService
}

// NewLocalClient creates a client of an in-process chain
func NewLocalClient(name string, cs *chainservice.ChainService) ChainClient {
	return &localClient{name: name, cs: cs}
}

func (c *localClient) Name() string { return c.name }

func (c *localClient) ChainMeta(context.Context) (*chainservice.ChainMeta, error) {
	return c.cs.ChainMeta(), nil
}

func (c *localClient) BestHeader(context.Context) (*block.Block, error) {
	return c.cs.BlockByHeight(c.cs.Height())
}

func (c *localClient) HeadersSince(_ context.Context, from, limit uint64) ([]*block.Block, error) {
	return c.cs.BlocksSince(from, limit)
}

func (c *localClient) BridgedBestFinalized(context.Context) (*chainservice.HeaderRef, error) {
	best, err := c.cs.BridgedBestFinalized()
	if err != nil {
		return nil, err
	}
	return &chainservice.HeaderRef{Number: best.Number, Hash: best.Hash}, nil
}

func (c *localClient) BridgedHead(context.Context) (*chainservice.HeaderRef, error) {
	return c.cs.BridgedHead()
}

func (c *localClient) OutboundLane(_ context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.OutboundLaneData, error) {
	return c.cs.OutboundLane(lane, at)
}

func (c *localClient) InboundLane(_ context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.InboundLaneData, error) {
	return c.cs.InboundLane(lane, at)
}

func (c *localClient) MessageSizes(_ context.Context, lane action.LaneID, at hash.Hash256, begin, end uint64) ([]uint64, error) {
	return c.cs.MessageSizes(lane, at, begin, end)
}

func (c *localClient) Prove(_ context.Context, at hash.Hash256, keys ...[]byte) ([][]byte, error) {
	return c.cs.Prove(at, keys...)
}

func (c *localClient) AccountNonce(_ context.Context, addr address.Address) (uint64, error) {
	acct, err := c.cs.Account(addr)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}

func (c *localClient) Balance(_ context.Context, addr address.Address) (*uint256.Int, error) {
	acct, err := c.cs.Account(addr)
	if err != nil {
		return nil, err
	}
	return acct.Balance, nil
}

func (c *localClient) Rewards(_ context.Context, addr address.Address, lane action.LaneID) (*uint256.Int, error) {
	return c.cs.Rewards(addr, lane)
}

func (c *localClient) SendAction(ctx context.Context, selp *action.SealedEnvelope) (*action.Receipt, error) {
	return c.cs.SendAction(ctx, selp)
}
