// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package finality relays finalized headers of one bridge chain into the finality light client of
// the other, and the child chain heads published on a relay chain.
package finality

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/relay/client"
	"github.com/iotexproject/iotex-bridge/relay/race"
)

var _relayMtc = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "iotex_bridge_finality_relay",
		Help: "Best header relayed by the finality relays",
	},
	[]string{"relay"},
)

func init() {
	prometheus.MustRegister(_relayMtc)
}

// HeaderRelay submits the finalized headers of the source chain to the light client of the target
type HeaderRelay struct {
	name   string
	source client.ChainClient
	target *client.Submitter
	limit  uint64
	loop   *loop
}

// NewHeaderRelay creates a header relay reading up to headersPerPoll headers at each poll
func NewHeaderRelay(source client.ChainClient, target *client.Submitter, headersPerPoll uint64, cfg race.Config, opts ...Option) *HeaderRelay {
	hr := &HeaderRelay{
		name:   "headers-" + source.Name() + "-" + target.Client().Name(),
		source: source,
		target: target,
		limit:  headersPerPoll,
	}
	hr.loop = newLoop(hr.name, cfg, func(ctx context.Context) error {
		_, err := hr.Step(ctx)
		return err
	}, opts...)
	return hr
}

// Name returns the name of the relay
func (hr *HeaderRelay) Name() string { return hr.name }

// Run relays headers until the context is done or a step fails
func (hr *HeaderRelay) Run(ctx context.Context) error { return hr.loop.run(ctx) }

// Step submits the next header past the best finalized header of the target. The first header
// changing the authority set is submitted before any later one, a light client can't verify
// headers of the next set without it. Returns the submitted header, nil if the target is up to date
func (hr *HeaderRelay) Step(ctx context.Context) (*block.Header, error) {
	best, err := hr.target.Client().BridgedBestFinalized(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the best finalized header of the target")
	}
	blks, err := hr.source.HeadersSince(ctx, best.Number+1, hr.limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the headers of the source")
	}
	next := selectHeader(blks)
	if next == nil {
		return nil, nil
	}
	if _, err := hr.target.Submit(ctx, &action.SubmitFinalityProof{
		Header:        next.Header,
		Justification: next.Justification,
	}); err != nil {
		if errors.Cause(err) == protocol.ErrStale {
			// another relayer got there first
			return nil, nil
		}
		return nil, err
	}
	_relayMtc.WithLabelValues(hr.name).Set(float64(next.Header.Number))
	log.L().Info("Relayed finalized header.",
		zap.String("relay", hr.name),
		zap.Uint64("number", next.Header.Number),
		zap.Bool("authorityChange", next.Header.Digest.HasAuthorityChange()))
	return &next.Header, nil
}

func selectHeader(blks []*block.Block) *block.Block {
	if len(blks) == 0 {
		return nil
	}
	for _, blk := range blks {
		if blk.Header.Digest.HasAuthorityChange() {
			return blk
		}
	}
	return blks[len(blks)-1]
}

// Initialize bootstraps the light client of the target with the best header of the source and the
// authority set finalizing the headers after it
func Initialize(ctx context.Context, source client.ChainClient, target *client.Submitter, halted bool) (*block.Header, error) {
	meta, err := source.ChainMeta(ctx)
	if err != nil {
		return nil, err
	}
	blks, err := source.HeadersSince(ctx, meta.Height, 1)
	if err != nil {
		return nil, err
	}
	if len(blks) == 0 {
		return nil, errors.Errorf("header %d is missing on %s", meta.Height, source.Name())
	}
	header := blks[0].Header
	if _, err := target.Submit(ctx, &action.Initialize{
		Header:      header,
		Authorities: meta.Authorities,
		SetID:       meta.SetID,
		Halted:      halted,
	}); err != nil {
		return nil, err
	}
	log.L().Info("Initialized light client.",
		zap.String("source", source.Name()),
		zap.String("target", target.Client().Name()),
		zap.Uint64("number", header.Number),
		zap.Uint64("setID", meta.SetID))
	return &header, nil
}
