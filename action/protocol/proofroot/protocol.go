// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package proofroot

import (
	"context"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
)

const (
	// ProtocolID is the name of the proof root protocol
	ProtocolID = "proofroot"

	// RootsNamespace is the namespace of the store fed by NoteNewRoots
	RootsNamespace = "ProofRoots"
)

// Protocol exposes a proof root store to the owner through NoteNewRoots
type Protocol struct {
	store *Store
}

// NewProtocol creates the proof root protocol
func NewProtocol(rootsToKeep uint64) *Protocol {
	return &Protocol{store: NewStore(RootsNamespace, rootsToKeep)}
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// Store returns the underlying store
func (p *Protocol) Store() *Store { return p.store }

// Handle handles NoteNewRoots
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	note, ok := act.(*action.NoteNewRoots)
	if !ok {
		return nil, nil
	}
	if err := operating.EnsureOwner(ctx, sm); err != nil {
		return nil, err
	}
	n, err := p.store.NoteNewRoots(sm, note.Entries)
	if err != nil {
		return nil, err
	}
	return &action.Receipt{ReturnValue: byteutil.Uint64ToBytesBigEndian(uint64(n))}, nil
}
