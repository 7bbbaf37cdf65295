// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"context"
	"testing"
	"time"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/relay/client"
	"github.com/iotexproject/iotex-bridge/relay/race"
	"github.com/iotexproject/iotex-bridge/test/identityset"
	"github.com/iotexproject/iotex-bridge/test/mock/mock_client"
)

var _lane = action.LaneID{0, 0, 0, 1}

func startChain(t *testing.T, authority int, modify func(*config.Config)) *chainservice.ChainService {
	cfg := config.Default
	cfg.Chain.AuthorityKeys = []string{identityset.PrivateKeyHex(authority)}
	cfg.Bridge.Lanes = []string{_lane.String()}
	if modify != nil {
		modify(&cfg)
	}
	cs, err := chainservice.New(cfg, chainservice.WithKVStore(db.NewMemKVStore()))
	require.NoError(t, err)
	require.NoError(t, cs.Start(context.Background()))
	t.Cleanup(func() { cs.Stop(context.Background()) })
	return cs
}

func sendMessages(t *testing.T, s *client.Submitter, n int) {
	for i := 0; i < n; i++ {
		_, err := s.Submit(context.Background(), &action.SendMessage{Lane: _lane, Payload: []byte{byte(i)}})
		require.NoError(t, err)
	}
}

func TestHeaderRelay(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	chainA, chainB := startChain(t, 0, nil), startChain(t, 1, nil)
	a, b := client.NewLocalClient("a", chainA), client.NewLocalClient("b", chainB)
	relayer := client.NewSubmitter(b, identityset.PrivateKey(3), nil)
	hr := NewHeaderRelay(a, relayer, 2, race.Config{PollInterval: time.Second, StallTimeout: time.Minute})
	r.Equal("headers-a-b", hr.Name())

	_, err := hr.Step(ctx)
	r.Equal(protocol.ErrNotInitialized, errors.Cause(err))

	sendMessages(t, client.NewSubmitter(a, identityset.PrivateKey(5), nil), 1)
	header, err := Initialize(ctx, a, relayer, false)
	r.NoError(err)
	r.Equal(uint64(1), header.Number)
	_, err = Initialize(ctx, a, relayer, false)
	r.Equal(protocol.ErrAlreadyInitialized, errors.Cause(err))

	// up to date
	header, err = hr.Step(ctx)
	r.NoError(err)
	r.Nil(header)

	// the latest of the polled headers
	sendMessages(t, client.NewSubmitter(a, identityset.PrivateKey(5), nil), 3)
	header, err = hr.Step(ctx)
	r.NoError(err)
	r.Equal(uint64(3), header.Number)
	best, err := chainB.BridgedBestFinalized()
	r.NoError(err)
	r.Equal(uint64(3), best.Number)

	// the authority change comes first, then the headers of the next set
	r.NoError(chainA.ScheduleAuthorityChange(identityset.PrivateKeys(6, 2)))
	sendMessages(t, client.NewSubmitter(a, identityset.PrivateKey(5), nil), 3)
	header, err = hr.Step(ctx)
	r.NoError(err)
	r.Equal(uint64(5), header.Number)
	r.True(header.Digest.HasAuthorityChange())
	header, err = hr.Step(ctx)
	r.NoError(err)
	r.Equal(uint64(7), header.Number)
	header, err = hr.Step(ctx)
	r.NoError(err)
	r.Nil(header)

	blk, err := chainA.BlockByHeight(7)
	r.NoError(err)
	head, err := chainB.BridgedHead()
	r.NoError(err)
	r.Equal(blk.Header.Hash(), head.Hash)
}

func TestHeaderRelayFails(t *testing.T) {
	cfg := race.Config{PollInterval: 10 * time.Millisecond, StallTimeout: time.Minute}
	next := []*block.Block{{Header: block.Header{Number: 4}}}
	mocks := func(ctrl *gomock.Controller) (*mock_client.MockChainClient, *mock_client.MockChainClient) {
		source, target := mock_client.NewMockChainClient(ctrl), mock_client.NewMockChainClient(ctrl)
		source.EXPECT().Name().Return("a").AnyTimes()
		target.EXPECT().Name().Return("b").AnyTimes()
		target.EXPECT().BridgedBestFinalized(gomock.Any()).Return(&chainservice.HeaderRef{Number: 3}, nil).AnyTimes()
		return source, target
	}

	t.Run("source unavailable", func(t *testing.T) {
		source, target := mocks(gomock.NewController(t))
		source.EXPECT().HeadersSince(gomock.Any(), uint64(4), uint64(8)).Return(nil, errors.New("unavailable")).Times(1)
		hr := NewHeaderRelay(source, client.NewSubmitter(target, identityset.PrivateKey(3), nil), 8, cfg)
		err := hr.Run(context.Background())
		require.Equal(t, race.ErrFailedClient, errors.Cause(err))
		require.Contains(t, err.Error(), "unavailable")
	})
	t.Run("submit rejected", func(t *testing.T) {
		source, target := mocks(gomock.NewController(t))
		source.EXPECT().HeadersSince(gomock.Any(), uint64(4), uint64(8)).Return(next, nil).Times(1)
		target.EXPECT().AccountNonce(gomock.Any(), identityset.Address(3)).Return(uint64(0), nil).Times(1)
		target.EXPECT().SendAction(gomock.Any(), gomock.Any()).Return(nil, protocol.ErrInvalidJustification).Times(1)
		hr := NewHeaderRelay(source, client.NewSubmitter(target, identityset.PrivateKey(3), nil), 8, cfg)
		err := hr.Run(context.Background())
		require.Equal(t, race.ErrFailedClient, errors.Cause(err))
		require.Contains(t, err.Error(), protocol.ErrInvalidJustification.Error())
	})
	t.Run("relayed by another relayer", func(t *testing.T) {
		source, target := mocks(gomock.NewController(t))
		source.EXPECT().HeadersSince(gomock.Any(), uint64(4), uint64(8)).Return(next, nil).MinTimes(1)
		target.EXPECT().AccountNonce(gomock.Any(), identityset.Address(3)).Return(uint64(0), nil).MinTimes(1)
		target.EXPECT().SendAction(gomock.Any(), gomock.Any()).Return(nil, errors.Wrap(protocol.ErrStale, "header 4")).MinTimes(1)
		hr := NewHeaderRelay(source, client.NewSubmitter(target, identityset.PrivateKey(3), nil), 8, cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		require.Equal(t, context.DeadlineExceeded, errors.Cause(hr.Run(ctx)))
	})
	t.Run("idle", func(t *testing.T) {
		source, target := mocks(gomock.NewController(t))
		source.EXPECT().HeadersSince(gomock.Any(), uint64(4), uint64(8)).Return([]*block.Block{}, nil).MinTimes(1)
		hr := NewHeaderRelay(source, client.NewSubmitter(target, identityset.PrivateKey(3), nil), 8, cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		require.Equal(t, context.DeadlineExceeded, errors.Cause(hr.Run(ctx)))
	})
}

func TestChildHeadsRelay(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	owner := identityset.Address(5).String()
	relayChain := startChain(t, 0, func(cfg *config.Config) { cfg.Chain.Owner = owner })
	consumer := startChain(t, 1, func(cfg *config.Config) {
		cfg.Bridge.BridgedChain = config.BridgedChain{Kind: config.ChildBridgedChain, ChildID: 7}
	})
	rc, cc := client.NewLocalClient("relay", relayChain), client.NewLocalClient("consumer", consumer)
	publisher := client.NewSubmitter(rc, identityset.PrivateKey(5), nil)
	relayer := client.NewSubmitter(cc, identityset.PrivateKey(3), nil)
	publish := func(number uint64) hash.Hash256 {
		header := block.Header{Number: number, StateRoot: hash.Hash256b([]byte{byte(number)})}
		_, err := publisher.Submit(ctx, &action.UpdateChildHead{ChildID: 7, Header: header})
		r.NoError(err)
		return header.Hash()
	}

	first := publish(10)
	_, err := Initialize(ctx, rc, relayer, false)
	r.NoError(err)
	chr := NewChildHeadsRelay(rc, relayer, []uint32{7}, race.Config{PollInterval: time.Second, StallTimeout: time.Minute})
	r.Equal("childheads-7-relay-consumer", chr.Name())

	relayed, err := chr.Step(ctx)
	r.NoError(err)
	r.True(relayed)
	head, err := consumer.BridgedHead()
	r.NoError(err)
	r.Equal(&chainservice.HeaderRef{Number: 10, Hash: first}, head)
	// once per finalized relay chain header
	relayed, err = chr.Step(ctx)
	r.NoError(err)
	r.False(relayed)

	second := publish(11)
	_, err = NewHeaderRelay(rc, relayer, 8, race.Config{}).Step(ctx)
	r.NoError(err)
	relayed, err = chr.Step(ctx)
	r.NoError(err)
	r.True(relayed)
	head, err = consumer.BridgedHead()
	r.NoError(err)
	r.Equal(second, head.Hash)
}
