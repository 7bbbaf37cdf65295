// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"math/big"

	"github.com/pkg/errors"
)

type (
	// ClaimRewards pays the caller's accumulated relayer rewards of a lane
	ClaimRewards struct {
		Lane LaneID
	}

	// DepositFund moves balance from the caller's account into the relayer fund
	DepositFund struct {
		Amount *big.Int
	}
)

// Type returns the action type
func (act *ClaimRewards) Type() uint32 { return ClaimRewardsType }

// SanityCheck is a no-op
func (act *ClaimRewards) SanityCheck() error { return nil }

// Type returns the action type
func (act *DepositFund) Type() uint32 { return DepositFundType }

// SanityCheck requires a positive amount
func (act *DepositFund) SanityCheck() error {
	if act.Amount == nil || act.Amount.Sign() <= 0 {
		return errors.Wrap(ErrInvalidAction, "deposit amount must be positive")
	}
	if act.Amount.BitLen() > 256 {
		return errors.Wrap(ErrInvalidAction, "deposit amount overflows")
	}
	return nil
}
