// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package rewarding

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/account"
	"github.com/iotexproject/iotex-bridge/pkg/util/mathutil"
	"github.com/iotexproject/iotex-bridge/state"
)

// Fund stores the balance of the relayer fund. Unclaimed is the sum of the registered but not
// yet claimed relayer rewards, which the balance is expected to cover
type Fund struct {
	Balance   *uint256.Int
	Unclaimed *uint256.Int
}

type fundState struct {
	Balance   []byte
	Unclaimed []byte
}

func newFund() *Fund {
	return &Fund{Balance: uint256.NewInt(0), Unclaimed: uint256.NewInt(0)}
}

// Serialize serializes fund state into bytes
func (f *Fund) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(&fundState{
		Balance:   f.Balance.Bytes(),
		Unclaimed: f.Unclaimed.Bytes(),
	})
}

// Deserialize deserializes bytes into fund state
func (f *Fund) Deserialize(data []byte) error {
	var fs fundState
	if err := rlp.DecodeBytes(data, &fs); err != nil {
		return err
	}
	if len(fs.Balance) > 32 || len(fs.Unclaimed) > 32 {
		return errors.New("fund balance overflows")
	}
	f.Balance = new(uint256.Int).SetBytes(fs.Balance)
	f.Unclaimed = new(uint256.Int).SetBytes(fs.Unclaimed)
	return nil
}

// FundOf returns the relayer fund
func FundOf(sr protocol.StateReader) (*Fund, error) {
	f := newFund()
	err := sr.State(_fundKey, f)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return f, nil
	default:
		return nil, err
	}
}

func putFund(sm protocol.StateManager, f *Fund) error {
	return sm.PutState(_fundKey, f)
}

// ChargeFee moves the fee from the payer's account into the relayer fund
func ChargeFee(sm protocol.StateManager, payer address.Address, fee *uint256.Int) error {
	if fee.IsZero() {
		return nil
	}
	acct, err := account.LoadAccount(sm, payer)
	if err != nil {
		return err
	}
	if err := acct.SubBalance(fee); err != nil {
		return err
	}
	if err := account.StoreAccount(sm, payer, acct); err != nil {
		return err
	}
	f, err := FundOf(sm)
	if err != nil {
		return err
	}
	f.Balance = mathutil.SaturatingAdd(f.Balance, fee)
	return putFund(sm, f)
}

// PaymentProcedure pays a claimed reward to a relayer
type PaymentProcedure interface {
	Pay(sm protocol.StateManager, relayer address.Address, amount *uint256.Int) error
}

// fundPayment pays rewards from the relayer fund into the relayer's account
type fundPayment struct{}

func (fundPayment) Pay(sm protocol.StateManager, relayer address.Address, amount *uint256.Int) error {
	f, err := FundOf(sm)
	if err != nil {
		return err
	}
	if amount.Gt(f.Balance) {
		return errors.Wrapf(protocol.ErrInsufficientBalance, "fund balance %s, required %s", f.Balance, amount)
	}
	f.Balance = new(uint256.Int).Sub(f.Balance, amount)
	if err := putFund(sm, f); err != nil {
		return err
	}
	acct, err := account.LoadAccount(sm, relayer)
	if err != nil {
		return err
	}
	if err := acct.AddBalance(amount); err != nil {
		return err
	}
	return account.StoreAccount(sm, relayer, acct)
}
