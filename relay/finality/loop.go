// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/relay/race"
)

type (
	// Option sets the relay options
	Option func(*loop)

	loop struct {
		name         string
		clk          clock.Clock
		pollInterval time.Duration
		step         func(context.Context) error
	}
)

// WithClock sets the clock driving polls
func WithClock(clk clock.Clock) Option {
	return func(l *loop) {
		l.clk = clk
	}
}

func newLoop(name string, cfg race.Config, step func(context.Context) error, opts ...Option) *loop {
	l := &loop{
		name:         name,
		clk:          clock.New(),
		pollInterval: cfg.PollInterval,
		step:         step,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// run steps at every poll until the context is done. A failed step fails the relay with
// ErrFailedClient
func (l *loop) run(ctx context.Context) error {
	ticker := l.clk.Ticker(l.pollInterval)
	defer ticker.Stop()
	log.L().Info("Started relay.", zap.String("relay", l.name))
	for {
		if err := l.step(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.L().Error("Relay failed.", zap.String("relay", l.name), zap.Error(err))
			return errors.Wrapf(race.ErrFailedClient, "relay %s: %v", l.name, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
