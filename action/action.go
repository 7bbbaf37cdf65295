// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/pkg/errors"
)

// action types
const (
	InitializeType uint32 = iota + 1
	SubmitFinalityProofType
	SubmitChildHeadsType
	UpdateChildHeadType
	SendMessageType
	ReceiveMessagesProofType
	ReceiveMessagesDeliveryProofType
	ClaimRewardsType
	DepositFundType
	NoteNewRootsType
	SetOperatingModeType
)

var (
	// ErrInvalidSignature indicates the signature does not match the sender public key
	ErrInvalidSignature = errors.New("invalid action signature")
	// ErrUnknownType indicates the payload type is not supported
	ErrUnknownType = errors.New("unknown action type")
	// ErrInvalidAction indicates an action failing its sanity check
	ErrInvalidAction = errors.New("invalid action")
)

// Action is the payload of an envelope
type Action interface {
	Type() uint32
	SanityCheck() error
}

func newPayload(t uint32) (Action, error) {
	switch t {
	case InitializeType:
		return &Initialize{}, nil
	case SubmitFinalityProofType:
		return &SubmitFinalityProof{}, nil
	case SubmitChildHeadsType:
		return &SubmitChildHeads{}, nil
	case UpdateChildHeadType:
		return &UpdateChildHead{}, nil
	case SendMessageType:
		return &SendMessage{}, nil
	case ReceiveMessagesProofType:
		return &ReceiveMessagesProof{}, nil
	case ReceiveMessagesDeliveryProofType:
		return &ReceiveMessagesDeliveryProof{}, nil
	case ClaimRewardsType:
		return &ClaimRewards{}, nil
	case DepositFundType:
		return &DepositFund{}, nil
	case NoteNewRootsType:
		return &NoteNewRoots{}, nil
	case SetOperatingModeType:
		return &SetOperatingMode{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownType, "type %d", t)
	}
}
