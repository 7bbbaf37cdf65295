// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package account

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/state"
)

const (
	// ProtocolID is the name of the account protocol
	ProtocolID = "account"

	_accountNamespace = "Account"
)

// Protocol tracks the balances and nonces of accounts
type Protocol struct {
	genesisBalances map[string]*uint256.Int
}

// NewProtocol instantiates the account protocol with the genesis balances keyed by address
func NewProtocol(genesisBalances map[string]*uint256.Int) *Protocol {
	return &Protocol{genesisBalances: genesisBalances}
}

// AccountKey returns the state key of an account
func AccountKey(addr address.Address) []byte {
	return state.Key(_accountNamespace, addr.Bytes())
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// CreateGenesisStates puts the genesis balances into the state
func (p *Protocol) CreateGenesisStates(_ context.Context, sm protocol.StateManager) error {
	for s, balance := range p.genesisBalances {
		addr, err := address.FromString(s)
		if err != nil {
			return errors.Wrapf(err, "invalid genesis account %s", s)
		}
		acct := NewAccount()
		acct.Balance = balance.Clone()
		if err := StoreAccount(sm, addr, acct); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the nonce of the caller
func (p *Protocol) Validate(ctx context.Context, _ action.Action, sr protocol.StateReader) error {
	actCtx := protocol.MustGetActionCtx(ctx)
	acct, err := LoadAccount(sr, actCtx.Caller)
	if err != nil {
		return err
	}
	if actCtx.Nonce != acct.Nonce+1 {
		return errors.Wrapf(protocol.ErrInvalidNonce, "expecting %d, got %d", acct.Nonce+1, actCtx.Nonce)
	}
	return nil
}

// Handle handles no action
func (p *Protocol) Handle(context.Context, action.Action, protocol.StateManager) (*action.Receipt, error) {
	return nil, nil
}

// PostHandle increases the nonce of the caller
func (p *Protocol) PostHandle(ctx context.Context, sm protocol.StateManager) error {
	actCtx := protocol.MustGetActionCtx(ctx)
	acct, err := LoadAccount(sm, actCtx.Caller)
	if err != nil {
		return err
	}
	acct.Nonce = actCtx.Nonce
	return StoreAccount(sm, actCtx.Caller, acct)
}

// LoadAccount loads an account, a missing account is empty
func LoadAccount(sr protocol.StateReader, addr address.Address) (*Account, error) {
	acct := NewAccount()
	err := sr.State(AccountKey(addr), acct)
	switch errors.Cause(err) {
	case nil:
		return acct, nil
	case state.ErrStateNotExist:
		return NewAccount(), nil
	default:
		return nil, errors.Wrapf(err, "failed to load account %s", addr.String())
	}
}

// StoreAccount puts an account into the state
func StoreAccount(sm protocol.StateManager, addr address.Address, acct *Account) error {
	if err := sm.PutState(AccountKey(addr), acct); err != nil {
		return errors.Wrapf(err, "failed to store account %s", addr.String())
	}
	return nil
}

// Transfer moves balance between accounts
func Transfer(sm protocol.StateManager, from, to address.Address, amount *uint256.Int) error {
	sender, err := LoadAccount(sm, from)
	if err != nil {
		return err
	}
	if err := sender.SubBalance(amount); err != nil {
		return err
	}
	if err := StoreAccount(sm, from, sender); err != nil {
		return err
	}
	recipient, err := LoadAccount(sm, to)
	if err != nil {
		return err
	}
	if err := recipient.AddBalance(amount); err != nil {
		return err
	}
	return StoreAccount(sm, to, recipient)
}
