// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package rewarding

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/mathutil"
	"github.com/iotexproject/iotex-bridge/state"
)

const (
	// ProtocolID is the name of the relayer reward protocol
	ProtocolID = "rewarding"

	// ClaimedTopic is the receipt log topic of a paid reward
	ClaimedTopic = "rewarding.claimed"
	// DepositedTopic is the receipt log topic of a fund deposit
	DepositedTopic = "rewarding.deposited"

	_namespace = "Rewarding"
)

var (
	_fundKey = state.Key(_namespace, []byte("fund"))

	_claimMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_bridge_reward_claims",
			Help: "Relayer reward claims",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(_claimMtc)
}

type (
	// Option sets the protocol options
	Option func(*Protocol)

	// Protocol defines the relayer reward ledger and the relayer fund paying it
	Protocol struct {
		fundBalance *uint256.Int
		payment     PaymentProcedure
	}
)

// PaymentProcedureOption replaces the payment from the relayer fund
func PaymentProcedureOption(payment PaymentProcedure) Option {
	return func(p *Protocol) {
		p.payment = payment
	}
}

// NewProtocol creates the rewarding protocol with the genesis fund balance
func NewProtocol(fundBalance *uint256.Int, opts ...Option) *Protocol {
	p := &Protocol{
		fundBalance: fundBalance,
		payment:     fundPayment{},
	}
	if p.fundBalance == nil {
		p.fundBalance = uint256.NewInt(0)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name of protocol
func (p *Protocol) Name() string { return ProtocolID }

// CreateGenesisStates initializes the relayer fund
func (p *Protocol) CreateGenesisStates(_ context.Context, sm protocol.StateManager) error {
	f := newFund()
	f.Balance = new(uint256.Int).Set(p.fundBalance)
	return putFund(sm, f)
}

// Handle handles ClaimRewards and DepositFund
func (p *Protocol) Handle(ctx context.Context, act action.Action, sm protocol.StateManager) (*action.Receipt, error) {
	switch act := act.(type) {
	case *action.ClaimRewards:
		r, err := p.claim(ctx, act, sm)
		if err != nil {
			_claimMtc.WithLabelValues("failed").Inc()
			return nil, err
		}
		_claimMtc.WithLabelValues("paid").Inc()
		return r, nil
	case *action.DepositFund:
		return p.deposit(ctx, act, sm)
	}
	return nil, nil
}

// claim pays the caller's reward of the lane. A failed payment fails the action, so the reward
// stays claimable
func (p *Protocol) claim(ctx context.Context, act *action.ClaimRewards, sm protocol.StateManager) (*action.Receipt, error) {
	relayer := protocol.MustGetActionCtx(ctx).Caller
	balance, err := RewardOf(sm, relayer, act.Lane)
	if err != nil {
		return nil, err
	}
	receipt := &action.Receipt{ReturnValue: balance.Bytes()}
	if balance.IsZero() {
		return receipt, nil
	}
	if err := p.payment.Pay(sm, relayer, balance); err != nil {
		log.L().Debug("Failed to pay relayer reward.", zap.String("relayer", relayer.String()), zap.Error(err))
		return nil, errors.Wrap(protocol.ErrPaymentFailed, err.Error())
	}
	if err := sm.DelState(RewardKey(relayer, act.Lane)); err != nil {
		return nil, err
	}
	f, err := FundOf(sm)
	if err != nil {
		return nil, err
	}
	f.Unclaimed = mathutil.SaturatingSub(f.Unclaimed, balance)
	if err := putFund(sm, f); err != nil {
		return nil, err
	}
	return receipt.AddLogs(&action.Log{Topic: ClaimedTopic, Data: balance.Bytes()}), nil
}

func (p *Protocol) deposit(ctx context.Context, act *action.DepositFund, sm protocol.StateManager) (*action.Receipt, error) {
	caller := protocol.MustGetActionCtx(ctx).Caller
	amount, overflow := uint256.FromBig(act.Amount)
	if overflow {
		return nil, errors.Wrap(action.ErrInvalidAction, "deposit amount overflows")
	}
	if err := ChargeFee(sm, caller, amount); err != nil {
		return nil, err
	}
	return (&action.Receipt{}).AddLogs(&action.Log{Topic: DepositedTopic, Data: amount.Bytes()}), nil
}
