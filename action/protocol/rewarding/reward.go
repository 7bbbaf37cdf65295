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

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/pkg/util/mathutil"
	"github.com/iotexproject/iotex-bridge/state"
)

// rewardAccount stores the unclaimed reward of a relayer on a lane
type rewardAccount struct {
	balance *uint256.Int
}

// Serialize serializes reward account state into bytes
func (a *rewardAccount) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(a.balance.Bytes())
}

// Deserialize deserializes bytes into reward account state
func (a *rewardAccount) Deserialize(data []byte) error {
	var b []byte
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return err
	}
	if len(b) > 32 {
		return errors.New("reward overflows")
	}
	a.balance = new(uint256.Int).SetBytes(b)
	return nil
}

// RewardKey is the key of the reward of a relayer on a lane
func RewardKey(relayer address.Address, lane action.LaneID) []byte {
	return state.Key(_namespace, []byte("reward"), relayer.Bytes(), lane[:])
}

// RewardOf returns the unclaimed reward of a relayer on a lane
func RewardOf(sr protocol.StateReader, relayer address.Address, lane action.LaneID) (*uint256.Int, error) {
	a := rewardAccount{balance: uint256.NewInt(0)}
	err := sr.State(RewardKey(relayer, lane), &a)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return a.balance, nil
	default:
		return nil, err
	}
}

// RegisterRelayerReward adds the amount to the relayer's reward on the lane, saturating at the
// maximum value
func RegisterRelayerReward(sm protocol.StateManager, lane action.LaneID, relayer address.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	balance, err := RewardOf(sm, relayer, lane)
	if err != nil {
		return err
	}
	if err := sm.PutState(RewardKey(relayer, lane), &rewardAccount{balance: mathutil.SaturatingAdd(balance, amount)}); err != nil {
		return err
	}
	f, err := FundOf(sm)
	if err != nil {
		return err
	}
	f.Unclaimed = mathutil.SaturatingAdd(f.Unclaimed, amount)
	return putFund(sm, f)
}
