// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/childchain"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/relay/client"
	"github.com/iotexproject/iotex-bridge/relay/race"
)

// ChildHeadsRelay submits the child heads published on the relay chain, proven against the relay
// chain header the target finalized last
type ChildHeadsRelay struct {
	name      string
	relay     client.ChainClient
	target    *client.Submitter
	childIDs  []uint32
	relayedAt uint64
	loop      *loop
}

// NewChildHeadsRelay creates a child heads relay
func NewChildHeadsRelay(relay client.ChainClient, target *client.Submitter, childIDs []uint32, cfg race.Config, opts ...Option) *ChildHeadsRelay {
	ids := make([]string, 0, len(childIDs))
	for _, id := range childIDs {
		ids = append(ids, strconv.FormatUint(uint64(id), 10))
	}
	chr := &ChildHeadsRelay{
		name:     "childheads-" + strings.Join(ids, ",") + "-" + relay.Name() + "-" + target.Client().Name(),
		relay:    relay,
		target:   target,
		childIDs: childIDs,
	}
	chr.loop = newLoop(chr.name, cfg, func(ctx context.Context) error {
		_, err := chr.Step(ctx)
		return err
	}, opts...)
	return chr
}

// Name returns the name of the relay
func (chr *ChildHeadsRelay) Name() string { return chr.name }

// Run relays child heads until the context is done or a step fails
func (chr *ChildHeadsRelay) Run(ctx context.Context) error { return chr.loop.run(ctx) }

// Step submits the child heads at the best finalized relay chain header of the target once per
// header. Returns true if the heads were submitted
func (chr *ChildHeadsRelay) Step(ctx context.Context) (bool, error) {
	best, err := chr.target.Client().BridgedBestFinalized(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to read the best finalized header of the target")
	}
	if best.Number <= chr.relayedAt {
		return false, nil
	}
	keys := make([][]byte, 0, len(chr.childIDs))
	for _, id := range chr.childIDs {
		keys = append(keys, childchain.HeadKey(id))
	}
	proof, err := chr.relay.Prove(ctx, best.Hash, keys...)
	if err != nil {
		return false, errors.Wrap(err, "failed to prove the child heads")
	}
	_, err = chr.target.Submit(ctx, &action.SubmitChildHeads{
		RelayBlock: best.Hash,
		ChildIDs:   chr.childIDs,
		Proof:      proof,
	})
	switch errors.Cause(err) {
	case nil:
	case protocol.ErrStale:
		// the heads didn't move or another relayer submitted them
		chr.relayedAt = best.Number
		return false, nil
	default:
		return false, err
	}
	chr.relayedAt = best.Number
	log.L().Info("Relayed child heads.", zap.String("relay", chr.name), zap.Uint64("relayNumber", best.Number))
	return true, nil
}
