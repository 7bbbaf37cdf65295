// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package relay runs the races of every configured lane between two bridge chains, and optionally the
// finality and child head relays, restarting each of them with backoff after it fails.
package relay

import (
	"context"

	"github.com/cenkalti/backoff"
	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/relay/client"
	"github.com/iotexproject/iotex-bridge/relay/finality"
	"github.com/iotexproject/iotex-bridge/relay/lane"
	"github.com/iotexproject/iotex-bridge/relay/race"
)

var (
	// ErrNotReady indicates some relay is not running
	ErrNotReady = errors.New("relay is not ready")

	_restartMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_bridge_relay_restarts",
			Help: "Restarts of the relay components",
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(_restartMtc)
}

type (
	// Runner is a relay component running until its context is done or it fails
	Runner interface {
		Name() string
		Run(context.Context) error
	}

	// Option sets the relay options
	Option func(*Relay)

	// Relay supervises the relay components of a chain pair
	Relay struct {
		cfg        config.Relay
		clk        clock.Clock
		chainA     client.ChainClient
		chainB     client.ChainClient
		submitterA *client.Submitter
		submitterB *client.Submitter
		runners    []Runner
		down       atomic.Int32
		started    atomic.Bool
	}
)

// WithClock sets the clock of the races and the finality relays
func WithClock(clk clock.Clock) Option {
	return func(r *Relay) {
		r.clk = clk
	}
}

// NewClients creates the json-rpc clients of the configured chains
func NewClients(cfg config.Relay) (client.ChainClient, client.ChainClient) {
	return client.NewHTTPClient(cfg.ChainA.Name, cfg.ChainA.Endpoint, cfg.RequestTimeout),
		client.NewHTTPClient(cfg.ChainB.Name, cfg.ChainB.Endpoint, cfg.RequestTimeout)
}

// New creates the relay of the two chains. Each chain has its own submitter signing with the
// configured key and limited to the submit rate
func New(cfg config.Relay, chainA, chainB client.ChainClient, opts ...Option) *Relay {
	r := &Relay{
		cfg:    cfg,
		clk:    clock.New(),
		chainA: chainA,
		chainB: chainB,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.submitterA = client.NewSubmitter(chainA, cfg.ChainA.SignerPrivateKey(), rate.NewLimiter(rate.Limit(cfg.SubmitRateLimit), cfg.SubmitBurst))
	r.submitterB = client.NewSubmitter(chainB, cfg.ChainB.SignerPrivateKey(), rate.NewLimiter(rate.Limit(cfg.SubmitRateLimit), cfg.SubmitBurst))
	r.runners = r.buildRunners()
	return r
}

func (r *Relay) buildRunners() []Runner {
	var (
		timing   = race.Config{PollInterval: r.cfg.PollInterval, StallTimeout: r.cfg.StallTimeout}
		strategy = race.Strategy(r.cfg.Strategy)
		raceOpts = []race.Option{race.WithClock(r.clk)}
		runners  []Runner
	)
	for _, id := range r.cfg.LaneIDs() {
		runners = append(runners,
			lane.NewDeliveryRace(id, r.chainA, r.submitterB, strategy, timing, raceOpts...),
			lane.NewConfirmationRace(id, r.chainB, r.submitterA, timing, raceOpts...),
			lane.NewDeliveryRace(id, r.chainB, r.submitterA, strategy, timing, raceOpts...),
			lane.NewConfirmationRace(id, r.chainA, r.submitterB, timing, raceOpts...),
		)
	}
	if r.cfg.RelayFinality {
		runners = append(runners,
			finality.NewHeaderRelay(r.chainA, r.submitterB, r.cfg.HeadersPerPoll, timing, finality.WithClock(r.clk)),
			finality.NewHeaderRelay(r.chainB, r.submitterA, r.cfg.HeadersPerPoll, timing, finality.WithClock(r.clk)),
		)
	}
	if len(r.cfg.ChildIDs) > 0 {
		runners = append(runners, finality.NewChildHeadsRelay(r.chainA, r.submitterB, r.cfg.ChildIDs, timing, finality.WithClock(r.clk)))
	}
	return runners
}

// Runners returns the supervised components
func (r *Relay) Runners() []Runner { return r.runners }

// SubmitterA returns the submitter of chain a
func (r *Relay) SubmitterA() *client.Submitter { return r.submitterA }

// SubmitterB returns the submitter of chain b
func (r *Relay) SubmitterB() *client.Submitter { return r.submitterB }

// Initialize bootstraps the light clients of both chains with the best header of the other
func (r *Relay) Initialize(ctx context.Context) error {
	if _, err := finality.Initialize(ctx, r.chainA, r.submitterB, false); err != nil {
		return errors.Wrapf(err, "failed to initialize the light client of %s", r.chainB.Name())
	}
	if _, err := finality.Initialize(ctx, r.chainB, r.submitterA, false); err != nil {
		return errors.Wrapf(err, "failed to initialize the light client of %s", r.chainA.Name())
	}
	return nil
}

// Run runs every component until the context is done. A failed component is restarted with
// exponential backoff, Run returns the error of a component giving up after the max elapsed time
func (r *Relay) Run(ctx context.Context) error {
	if len(r.runners) == 0 {
		return errors.Wrap(config.ErrInvalidCfg, "nothing to relay")
	}
	r.down.Store(int32(len(r.runners)))
	r.started.Store(true)
	defer r.started.Store(false)
	g, ctx := errgroup.WithContext(ctx)
	for _, runner := range r.runners {
		runner := runner
		g.Go(func() error {
			return r.supervise(ctx, runner)
		})
	}
	err := g.Wait()
	if errors.Cause(err) == context.Canceled || errors.Cause(err) == context.DeadlineExceeded {
		return nil
	}
	return err
}

func (r *Relay) supervise(ctx context.Context, runner Runner) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.RestartBackoff.InitialInterval
	policy.MaxInterval = r.cfg.RestartBackoff.MaxInterval
	policy.MaxElapsedTime = r.cfg.RestartBackoff.MaxElapsedTime
	policy.Clock = r.clk

	err := backoff.Retry(func() error {
		r.down.Dec()
		start := r.clk.Now()
		err := runner.Run(ctx)
		r.down.Inc()
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errors.Errorf("%s returned", runner.Name())
		}
		if r.clk.Now().Sub(start) > policy.MaxInterval {
			// the component made progress, start over from the initial interval
			policy.Reset()
		}
		_restartMtc.WithLabelValues(runner.Name()).Inc()
		log.L().Warn("Relay component failed, restarting.", zap.String("component", runner.Name()), zap.Error(err))
		return err
	}, backoff.WithContext(policy, ctx))
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.L().Error("Relay component gave up.", zap.String("component", runner.Name()), zap.Error(err))
	return err
}

// Ready returns nil if every component is running
func (r *Relay) Ready(context.Context) error {
	if !r.started.Load() {
		return errors.Wrap(ErrNotReady, "not started")
	}
	if down := r.down.Load(); down > 0 {
		return errors.Wrapf(ErrNotReady, "%d components are restarting", down)
	}
	return nil
}
