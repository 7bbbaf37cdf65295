// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"encoding/hex"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

type (
	// LaneID identifies a message lane
	LaneID [4]byte

	// SendMessage appends a message to an outbound lane
	SendMessage struct {
		Lane    LaneID
		Payload []byte
	}

	// ReceiveMessagesProof delivers the messages [Begin, End] of the bridged outbound lane
	ReceiveMessagesProof struct {
		Lane    LaneID
		AtBlock hash.Hash256
		Begin   uint64
		End     uint64
		Proof   [][]byte
	}

	// ReceiveMessagesDeliveryProof confirms delivery with the bridged inbound lane state
	ReceiveMessagesDeliveryProof struct {
		Lane    LaneID
		AtBlock hash.Hash256
		Proof   [][]byte
	}
)

// LaneIDFromString parses a lane id from 8 hex digits
func LaneIDFromString(s string) (LaneID, error) {
	var id LaneID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, errors.Wrapf(err, "invalid lane id %s", s)
	}
	if len(b) != len(id) {
		return id, errors.Errorf("invalid lane id %s, expecting %d bytes", s, len(id))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the lane id in hex
func (id LaneID) String() string {
	return hex.EncodeToString(id[:])
}

// Type returns the action type
func (act *SendMessage) Type() uint32 { return SendMessageType }

// SanityCheck is a no-op, payload limits are lane configuration
func (act *SendMessage) SanityCheck() error { return nil }

// Type returns the action type
func (act *ReceiveMessagesProof) Type() uint32 { return ReceiveMessagesProofType }

// SanityCheck validates the nonce range
func (act *ReceiveMessagesProof) SanityCheck() error {
	if act.Begin == 0 || act.End < act.Begin {
		return errors.Wrapf(ErrInvalidAction, "invalid nonce range [%d, %d]", act.Begin, act.End)
	}
	return nil
}

// MessageCount returns the number of messages in the range
func (act *ReceiveMessagesProof) MessageCount() uint64 {
	return act.End - act.Begin + 1
}

// Type returns the action type
func (act *ReceiveMessagesDeliveryProof) Type() uint32 { return ReceiveMessagesDeliveryProofType }

// SanityCheck is a no-op
func (act *ReceiveMessagesDeliveryProof) SanityCheck() error { return nil }
