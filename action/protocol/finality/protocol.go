// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/pkg/log"
)

const (
	// ProtocolID is the name of the finality light client protocol, also its operating module name
	ProtocolID = "finality"

	// ImportedTopic is the receipt log topic of an imported header
	ImportedTopic = "finality.imported"
	// AuthoritySetChangedTopic is the receipt log topic of an authority set change
	AuthoritySetChangedTopic = "finality.authoritySetChanged"
)

var _finalityMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "iotex_bridge_finality",
		Help: "Finality light client header imports",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(_finalityMtc)
}

// Protocol is the light client of the bridged chain's finality gadget
type Protocol struct {
	headersToKeep uint64
}

// NewProtocol creates the finality light client retaining headersToKeep headers
func NewProtocol(headersToKeep uint64) *Protocol {
	return &Protocol{headersToKeep: headersToKeep}
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// HeadersToKeep returns the ring capacity
func (p *Protocol) HeadersToKeep() uint64 { return p.headersToKeep }

// Handle handles Initialize and SubmitFinalityProof
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	switch act := act.(type) {
	case *action.Initialize:
		return p.handleInitialize(ctx, act, sm)
	case *action.SubmitFinalityProof:
		r, err := p.handleSubmitFinalityProof(act, sm)
		if err != nil {
			_finalityMtc.WithLabelValues("rejected").Inc()
			return nil, err
		}
		_finalityMtc.WithLabelValues("imported").Inc()
		return r, nil
	}
	return nil, nil
}

func (p *Protocol) handleInitialize(ctx context.Context, act *action.Initialize, sm protocol.StateManager) (*action.Receipt, error) {
	hasOwner, err := operating.HasOwner(sm)
	if err != nil {
		return nil, err
	}
	if hasOwner {
		if err := operating.EnsureOwner(ctx, sm); err != nil {
			return nil, err
		}
	}
	initialized, err := IsInitialized(sm)
	if err != nil {
		return nil, err
	}
	if initialized {
		return nil, protocol.ErrAlreadyInitialized
	}
	if err := putAuthoritySet(sm, &AuthoritySet{Authorities: act.Authorities, SetID: act.SetID}); err != nil {
		return nil, err
	}
	h := newStoredHeader(&act.Header)
	if _, err := importHeader(sm, h, p.headersToKeep); err != nil {
		return nil, err
	}
	if err := operating.SetHalted(sm, ProtocolID, act.Halted); err != nil {
		return nil, err
	}
	log.L().Info("Finality light client initialized.",
		zap.Uint64("number", h.Number),
		log.Hex("hash", h.Hash[:]),
		zap.Uint64("setID", act.SetID),
		zap.Int("authorities", len(act.Authorities)))
	return (&action.Receipt{}).AddLogs(&action.Log{Topic: ImportedTopic, Data: h.Hash[:]}), nil
}

func (p *Protocol) handleSubmitFinalityProof(act *action.SubmitFinalityProof, sm protocol.StateManager) (*action.Receipt, error) {
	if err := operating.EnsureOperational(sm, ProtocolID); err != nil {
		return nil, err
	}
	best, err := BestFinalized(sm)
	if err != nil {
		return nil, err
	}
	if act.Header.Number <= best.Number {
		return nil, errors.Wrapf(protocol.ErrStale, "header %d, best finalized %d", act.Header.Number, best.Number)
	}
	set, err := CurrentAuthoritySet(sm)
	if err != nil {
		return nil, err
	}
	if err := VerifyJustification(&act.Header, &act.Justification, set); err != nil {
		return nil, err
	}
	h := newStoredHeader(&act.Header)
	evicted, err := importHeader(sm, h, p.headersToKeep)
	if err != nil {
		return nil, err
	}
	receipt := (&action.Receipt{}).AddLogs(&action.Log{Topic: ImportedTopic, Data: h.Hash[:]})
	if act.Header.Digest.HasAuthorityChange() {
		next := &AuthoritySet{
			Authorities: act.Header.Digest.NextAuthorities,
			SetID:       set.SetID + 1,
		}
		if err := putAuthoritySet(sm, next); err != nil {
			return nil, err
		}
		receipt.AddLogs(&action.Log{Topic: AuthoritySetChangedTopic, Data: h.Hash[:]})
		log.L().Info("Bridged authority set changed.", zap.Uint64("number", h.Number), zap.Uint64("setID", next.SetID))
	}
	fields := []zap.Field{zap.Uint64("number", h.Number), log.Hex("hash", h.Hash[:])}
	if evicted != nil {
		fields = append(fields, log.Hex("evicted", evicted[:]))
	}
	log.L().Debug("Imported finalized header.", fields...)
	return receipt, nil
}

// StateRoot returns the state root of a retained header
func (p *Protocol) StateRoot(sr protocol.StateReader, blockHash hash.Hash256) (hash.Hash256, error) {
	h, err := ImportedHeader(sr, blockHash)
	if err != nil {
		return hash.ZeroHash256, err
	}
	return h.StateRoot, nil
}

// ImportedHashes returns the hashes of the retained headers in import order
func (p *Protocol) ImportedHashes(sr protocol.StateReader) ([]hash.Hash256, error) {
	return ImportedHashes(sr, p.headersToKeep)
}
