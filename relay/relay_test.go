// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package relay

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/relay/race"
	"github.com/iotexproject/iotex-bridge/test/identityset"
	"github.com/iotexproject/iotex-bridge/test/mock/mock_client"
	"github.com/iotexproject/iotex-bridge/testutil"
)

type flakyRunner struct {
	failures int32
	runs     atomic.Int32
}

func (f *flakyRunner) Name() string { return "flaky" }

func (f *flakyRunner) Run(ctx context.Context) error {
	if f.runs.Inc() <= f.failures {
		return errors.Wrap(race.ErrFailedClient, "stalled")
	}
	<-ctx.Done()
	return ctx.Err()
}

func testConfig() config.Relay {
	cfg := config.Default.Relay
	cfg.ChainA = config.RelayChain{Name: "a", Endpoint: "http://127.0.0.1:14014", SignerKey: identityset.PrivateKeyHex(2)}
	cfg.ChainB = config.RelayChain{Name: "b", Endpoint: "http://127.0.0.1:14015", SignerKey: identityset.PrivateKeyHex(3)}
	cfg.RestartBackoff = config.Backoff{InitialInterval: 10 * time.Millisecond, MaxInterval: 20 * time.Millisecond}
	return cfg
}

func newRelay(t *testing.T, cfg config.Relay) *Relay {
	ctrl := gomock.NewController(t)
	a, b := mock_client.NewMockChainClient(ctrl), mock_client.NewMockChainClient(ctrl)
	a.EXPECT().Name().Return("a").AnyTimes()
	b.EXPECT().Name().Return("b").AnyTimes()
	return New(cfg, a, b)
}

func TestRunners(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	r.Empty(newRelay(t, cfg).Runners())
	r.Error(newRelay(t, cfg).Run(context.Background()))

	cfg.Lanes = []string{"00000001", "00000002"}
	cfg.RelayFinality = true
	cfg.ChildIDs = []uint32{3}
	rl := newRelay(t, cfg)
	names := make([]string, 0)
	for _, runner := range rl.Runners() {
		names = append(names, runner.Name())
	}
	r.Equal([]string{
		"delivery-00000001-a-b",
		"confirmation-00000001-b-a",
		"delivery-00000001-b-a",
		"confirmation-00000001-a-b",
		"delivery-00000002-a-b",
		"confirmation-00000002-b-a",
		"delivery-00000002-b-a",
		"confirmation-00000002-a-b",
		"headers-a-b",
		"headers-b-a",
		"childheads-3-a-b",
	}, names)
	r.Equal(identityset.Address(2).String(), rl.SubmitterA().Address().String())
	r.Equal(identityset.Address(3).String(), rl.SubmitterB().Address().String())
}

func TestRestarts(t *testing.T) {
	r := require.New(t)
	rl := newRelay(t, testConfig())
	flaky := &flakyRunner{failures: 2}
	rl.runners = []Runner{flaky}
	r.Equal(ErrNotReady, errors.Cause(rl.Ready(context.Background())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rl.Run(ctx) }()
	r.NoError(testutil.WaitUntil(10*time.Millisecond, 5*time.Second, func() (bool, error) {
		return flaky.runs.Load() == 3 && rl.Ready(ctx) == nil, nil
	}))
	cancel()
	r.NoError(<-done)
	r.Equal(ErrNotReady, errors.Cause(rl.Ready(context.Background())))
}

func TestGiveUp(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	cfg.RestartBackoff.MaxElapsedTime = 50 * time.Millisecond
	rl := newRelay(t, cfg)
	flaky := &flakyRunner{failures: 1 << 30}
	rl.runners = []Runner{flaky, &flakyRunner{}}
	r.Equal(race.ErrFailedClient, errors.Cause(rl.Run(context.Background())))
	r.Greater(flaky.runs.Load(), int32(1))
}
