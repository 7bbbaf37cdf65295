// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/blockchain/block"
)

type (
	// UpdateChildHead publishes the head of a child chain on the relay chain
	UpdateChildHead struct {
		ChildID uint32
		Header  block.Header
	}

	// SubmitChildHeads relays child chain heads proven against a finalized relay chain header
	SubmitChildHeads struct {
		RelayBlock hash.Hash256
		ChildIDs   []uint32
		Proof      [][]byte
	}
)

// Type returns the action type
func (act *UpdateChildHead) Type() uint32 { return UpdateChildHeadType }

// SanityCheck is a no-op
func (act *UpdateChildHead) SanityCheck() error { return nil }

// Type returns the action type
func (act *SubmitChildHeads) Type() uint32 { return SubmitChildHeadsType }

// SanityCheck requires at least one distinct child id
func (act *SubmitChildHeads) SanityCheck() error {
	if len(act.ChildIDs) == 0 {
		return errors.Wrap(ErrInvalidAction, "no child id")
	}
	seen := make(map[uint32]struct{}, len(act.ChildIDs))
	for _, id := range act.ChildIDs {
		if _, ok := seen[id]; ok {
			return errors.Wrapf(ErrInvalidAction, "duplicate child id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
