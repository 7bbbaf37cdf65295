// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package operating

import (
	"context"

	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/state"
)

const (
	// ProtocolID is the name of the operating protocol
	ProtocolID = "operating"

	_operatingNamespace = "Operating"
)

var _ownerKey = state.Key(_operatingNamespace, []byte("owner"))

type (
	// Mode is the operating mode of a module
	Mode struct {
		Halted bool
	}

	ownerState struct {
		Owner []byte
	}

	// Protocol manages the owner and the operating modes of the bridge modules
	Protocol struct {
		owner   address.Address
		modules map[string]struct{}
	}
)

// NewProtocol creates the operating protocol. The owner may be nil, in which case owner-only
// operations are rejected. Modules lists the names accepted by SetOperatingMode
func NewProtocol(owner address.Address, modules ...string) *Protocol {
	p := &Protocol{
		owner:   owner,
		modules: make(map[string]struct{}, len(modules)),
	}
	for _, m := range modules {
		p.modules[m] = struct{}{}
	}
	return p
}

func modeKey(module string) []byte {
	return state.Key(_operatingNamespace, []byte("mode."), []byte(module))
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// CreateGenesisStates stores the owner
func (p *Protocol) CreateGenesisStates(_ context.Context, sm protocol.StateManager) error {
	if p.owner == nil {
		return nil
	}
	return sm.PutState(_ownerKey, &ownerState{Owner: p.owner.Bytes()})
}

// Handle handles SetOperatingMode
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	setMode, ok := act.(*action.SetOperatingMode)
	if !ok {
		return nil, nil
	}
	if err := EnsureOwner(ctx, sm); err != nil {
		return nil, err
	}
	if _, ok := p.modules[setMode.Module]; !ok {
		return nil, errors.Wrapf(action.ErrInvalidAction, "unknown module %s", setMode.Module)
	}
	if err := sm.PutState(modeKey(setMode.Module), &Mode{Halted: setMode.Halted}); err != nil {
		return nil, err
	}
	log.L().Info("Operating mode changed.", zap.String("module", setMode.Module), zap.Bool("halted", setMode.Halted))
	return &action.Receipt{}, nil
}

// Owner returns the owner address, nil if there is none
func Owner(sr protocol.StateReader) (address.Address, error) {
	var s ownerState
	err := sr.State(_ownerKey, &s)
	switch errors.Cause(err) {
	case nil:
		return address.FromBytes(s.Owner)
	case state.ErrStateNotExist:
		return nil, nil
	default:
		return nil, err
	}
}

// HasOwner returns true if an owner is configured
func HasOwner(sr protocol.StateReader) (bool, error) {
	owner, err := Owner(sr)
	if err != nil {
		return false, err
	}
	return owner != nil, nil
}

// EnsureOwner fails with ErrUnauthorized unless the caller is the owner
func EnsureOwner(ctx context.Context, sr protocol.StateReader) error {
	owner, err := Owner(sr)
	if err != nil {
		return err
	}
	caller := protocol.MustGetActionCtx(ctx).Caller
	if owner == nil || owner.String() != caller.String() {
		return errors.Wrapf(protocol.ErrUnauthorized, "caller %s", caller.String())
	}
	return nil
}

// IsHalted returns true if the module is halted
func IsHalted(sr protocol.StateReader, module string) (bool, error) {
	var mode Mode
	err := sr.State(modeKey(module), &mode)
	switch errors.Cause(err) {
	case nil:
		return mode.Halted, nil
	case state.ErrStateNotExist:
		return false, nil
	default:
		return false, err
	}
}

// EnsureOperational fails with ErrHalted if the module is halted
func EnsureOperational(sr protocol.StateReader, module string) error {
	halted, err := IsHalted(sr, module)
	if err != nil {
		return err
	}
	if halted {
		return errors.Wrapf(protocol.ErrHalted, "module %s", module)
	}
	return nil
}

// SetHalted sets the mode of a module directly, used when a module is initialized
func SetHalted(sm protocol.StateManager, module string, halted bool) error {
	return sm.PutState(modeKey(module), &Mode{Halted: halted})
}
