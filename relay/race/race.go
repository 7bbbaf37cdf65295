// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package race

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/routine"
)

// ErrFailedClient indicates a race failed to read or write a side, or made no progress within the
// stall timeout. The engine stops and the caller decides whether to restart it
var ErrFailedClient = errors.New("race client failed")

var _raceMtc = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "iotex_bridge_race",
		Help: "Relay race nonces",
	},
	[]string{"race", "kind"},
)

func init() {
	prometheus.MustRegister(_raceMtc)
}

//go:generate mockgen -destination=../../test/mock/mock_race/mock_race.go -source=race.go -package=mock_race NonceObserver,ProofGenerator,ProofSubmitter

type (
	// Nonces is the lane state of one side read at a block
	Nonces struct {
		AtNumber uint64
		AtBlock  hash.Hash256
		// Latest is the latest nonce of the side, generated on the source and received on the target
		Latest uint64
		// Confirmed is the latest nonce whose relay is confirmed
		Confirmed uint64
	}

	// NonceObserver reads the lane state of one side
	NonceObserver interface {
		Nonces(context.Context) (*Nonces, error)
	}

	// ProofGenerator is the source side of a race
	ProofGenerator interface {
		NonceObserver
		// MessageWeights returns the weight of each nonce of the range at the block
		MessageWeights(ctx context.Context, at hash.Hash256, begin, end uint64) ([]uint64, error)
		// GenerateProof proves the range at the block
		GenerateProof(ctx context.Context, at hash.Hash256, begin, end uint64) ([][]byte, error)
	}

	// ProofSubmitter is the target side of a race
	ProofSubmitter interface {
		NonceObserver
		// SubmitProof submits the proof of the range and returns the range it covered
		SubmitProof(ctx context.Context, at hash.Hash256, begin, end uint64, proof [][]byte) (uint64, uint64, error)
	}

	// Config is the timing of a race
	Config struct {
		PollInterval time.Duration
		// StallTimeout is the longest time without forward progress before the race fails
		StallTimeout time.Duration
	}

	// Option sets the engine options
	Option func(*Engine)

	// Engine relays nonce ranges from the source to the target of one lane direction
	Engine struct {
		name         string
		source       ProofGenerator
		target       ProofSubmitter
		strategy     Strategy
		clk          clock.Clock
		pollInterval time.Duration
		stallTimeout time.Duration

		submitted atomic.Uint64
		relayed   atomic.Uint64
	}
)

// WithClock sets the clock driving polls and the stall timeout
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clk = clk
	}
}

// NewEngine creates a race engine
func NewEngine(
	name string,
	source ProofGenerator,
	target ProofSubmitter,
	strategy Strategy,
	cfg Config,
	opts ...Option,
) *Engine {
	e := &Engine{
		name:         name,
		source:       source,
		target:       target,
		strategy:     strategy,
		clk:          clock.New(),
		pollInterval: cfg.PollInterval,
		stallTimeout: cfg.StallTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the name of the race
func (e *Engine) Name() string { return e.name }

// Submitted returns the highest nonce submitted by this engine
func (e *Engine) Submitted() uint64 { return e.submitted.Load() }

// Relayed returns the number of nonces relayed by this engine
func (e *Engine) Relayed() uint64 { return e.relayed.Load() }

// observe polls the observer and keeps the latest nonces in the channel. The first failure goes to
// the error channel
func (e *Engine) observe(ctx context.Context, side string, observer NonceObserver, ch chan *Nonces, errCh chan error) *routine.RecurringTask {
	return routine.NewRecurringTask(func() {
		nonces, err := observer.Nonces(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case errCh <- errors.Wrapf(err, "failed to observe the %s", side):
			default:
			}
			return
		}
		_raceMtc.WithLabelValues(e.name, side+"_latest").Set(float64(nonces.Latest))
		_raceMtc.WithLabelValues(e.name, side+"_confirmed").Set(float64(nonces.Confirmed))
		select {
		case <-ch:
		default:
		}
		ch <- nonces
	}, e.pollInterval, routine.WithClock(e.clk), routine.RunImmediately())
}

// Run relays until the context is done or the race fails. Any error reading or writing either side
// fails the race with ErrFailedClient, so does a target making no progress within the stall timeout
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	sourceCh, targetCh := make(chan *Nonces, 1), make(chan *Nonces, 1)
	errCh := make(chan error, 1)
	pollers := []*routine.RecurringTask{
		e.observe(ctx, "source", e.source, sourceCh, errCh),
		e.observe(ctx, "target", e.target, targetCh, errCh),
	}
	defer func() {
		cancel()
		for _, p := range pollers {
			p.Stop(context.Background())
		}
	}()
	for _, p := range pollers {
		if err := p.Start(ctx); err != nil {
			return err
		}
	}
	ticker := e.clk.Ticker(e.pollInterval)
	defer ticker.Stop()

	var (
		source, target *Nonces
		lastProgress   = e.clk.Now()
	)
	log.L().Info("Started race.", zap.String("race", e.name))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return e.fail(ctx, err)
		case source = <-sourceCh:
		case n := <-targetCh:
			if target == nil || n.Latest > target.Latest || n.Confirmed > target.Confirmed {
				lastProgress = e.clk.Now()
			}
			target = n
		case <-ticker.C:
			if e.clk.Now().Sub(lastProgress) > e.stallTimeout {
				log.L().Error("Race stalled.", zap.String("race", e.name), zap.Duration("timeout", e.stallTimeout))
				return errors.Wrapf(ErrFailedClient, "race %s made no progress in %v", e.name, e.stallTimeout)
			}
			continue
		}
		if source == nil || target == nil {
			continue
		}
		if source.Latest <= target.Latest {
			// nothing to relay
			lastProgress = e.clk.Now()
			continue
		}
		submitted, err := e.step(ctx, source, target)
		if err != nil {
			return e.fail(ctx, err)
		}
		if submitted {
			lastProgress = e.clk.Now()
		}
	}
}

func (e *Engine) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.L().Error("Race failed.", zap.String("race", e.name), zap.Error(err))
	return errors.Wrapf(ErrFailedClient, "race %s: %v", e.name, err)
}

// step relays the next range if there is one, returns true if the target accepted it
func (e *Engine) step(ctx context.Context, source, target *Nonces) (bool, error) {
	begin, end, ok := e.strategy.NextRange(source, target, e.submitted.Load())
	if !ok {
		return false, nil
	}
	if e.strategy.MaxBatchWeight > 0 {
		weights, err := e.source.MessageWeights(ctx, source.AtBlock, begin, end)
		if err != nil {
			return false, errors.Wrapf(err, "failed to read the weights of [%d, %d]", begin, end)
		}
		end = e.strategy.FitWeight(begin, weights)
		if end < begin {
			return false, nil
		}
	}
	proof, err := e.source.GenerateProof(ctx, source.AtBlock, begin, end)
	if err != nil {
		return false, errors.Wrapf(err, "failed to prove [%d, %d]", begin, end)
	}
	covered, coveredEnd, err := e.target.SubmitProof(ctx, source.AtBlock, begin, end, proof)
	if err != nil {
		return false, errors.Wrapf(err, "failed to submit [%d, %d]", begin, end)
	}
	if coveredEnd > e.submitted.Load() {
		e.submitted.Store(coveredEnd)
	}
	e.relayed.Add(coveredEnd - covered + 1)
	_raceMtc.WithLabelValues(e.name, "submitted").Set(float64(coveredEnd))
	log.L().Info("Relayed nonces.",
		zap.String("race", e.name),
		zap.Uint64("begin", covered),
		zap.Uint64("end", coveredEnd),
		zap.Uint64("atBlock", source.AtNumber))
	return true, nil
}
