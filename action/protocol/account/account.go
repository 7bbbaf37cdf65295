// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package account

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/state"
)

type (
	// Account is the state of an account
	Account struct {
		// Nonce is the nonce of the last applied action, actions' nonces start from 1
		Nonce   uint64
		Balance *uint256.Int
	}

	accountState struct {
		Nonce   uint64
		Balance []byte
	}
)

// NewAccount creates an empty account
func NewAccount() *Account {
	return &Account{Balance: uint256.NewInt(0)}
}

// Serialize serializes account state into bytes
func (acct *Account) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(&accountState{
		Nonce:   acct.Nonce,
		Balance: acct.Balance.Bytes(),
	})
}

// Deserialize deserializes bytes into account state
func (acct *Account) Deserialize(b []byte) error {
	var s accountState
	if err := rlp.DecodeBytes(b, &s); err != nil {
		return errors.Wrapf(state.ErrStateDeserialization, "account: %v", err)
	}
	if len(s.Balance) > 32 {
		return errors.Wrapf(state.ErrStateDeserialization, "account balance of %d bytes", len(s.Balance))
	}
	acct.Nonce = s.Nonce
	acct.Balance = new(uint256.Int).SetBytes(s.Balance)
	return nil
}

// AddBalance adds balance, failing on overflow
func (acct *Account) AddBalance(amount *uint256.Int) error {
	sum, overflow := new(uint256.Int).AddOverflow(acct.Balance, amount)
	if overflow {
		return errors.Errorf("balance overflow adding %s to %s", amount, acct.Balance)
	}
	acct.Balance = sum
	return nil
}

// SubBalance subtracts balance
func (acct *Account) SubBalance(amount *uint256.Int) error {
	// make sure there's enough fund to spend
	if amount.Gt(acct.Balance) {
		return errors.Wrapf(protocol.ErrInsufficientBalance, "balance %s, required %s", acct.Balance, amount)
	}
	acct.Balance = new(uint256.Int).Sub(acct.Balance, amount)
	return nil
}
