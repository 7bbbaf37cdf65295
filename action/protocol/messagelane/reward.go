// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package messagelane

import (
	"github.com/holiman/uint256"
	"github.com/iotexproject/iotex-address/address"

	"github.com/iotexproject/iotex-bridge/pkg/util/mathutil"
)

type (
	// RelayerCount is the number of messages a relayer delivered in a confirmed range
	RelayerCount struct {
		Relayer address.Address
		Count   uint64
	}

	// Reward is an amount owed to a relayer
	Reward struct {
		Relayer address.Address
		Amount  *uint256.Int
	}
)

// SplitRewards splits the fees of a confirmed range. Every delivering relayer earns the delivery
// fee per message, minus a confirmation fee per message capped at its earning. The cuts go to the
// confirming relayer, which also keeps its own delivery earning whole. The rewards are returned in
// the relayers' order with the confirming relayer last, and add up to the delivery fees of the range.
func SplitRewards(counts []RelayerCount, confirmer address.Address, deliveryFee, confirmationFee *uint256.Int) []Reward {
	var (
		rewards = make([]Reward, 0, len(counts)+1)
		pool    = uint256.NewInt(0)
	)
	for _, c := range counts {
		count := uint256.NewInt(c.Count)
		reward := mathutil.SaturatingMul(count, deliveryFee)
		if c.Relayer.String() == confirmer.String() {
			pool = mathutil.SaturatingAdd(pool, reward)
			continue
		}
		cut := mathutil.Min(mathutil.SaturatingMul(count, confirmationFee), reward)
		reward = mathutil.SaturatingSub(reward, cut)
		pool = mathutil.SaturatingAdd(pool, cut)
		rewards = append(rewards, Reward{Relayer: c.Relayer, Amount: reward})
	}
	return append(rewards, Reward{Relayer: confirmer, Amount: pool})
}
