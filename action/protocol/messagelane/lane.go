// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package messagelane

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
	"github.com/iotexproject/iotex-bridge/state"
)

const _namespace = "MessageLane"

type (
	// OutboundLaneData is the state of the sending side of a lane
	OutboundLaneData struct {
		// LatestGenerated is the nonce of the latest sent message
		LatestGenerated uint64
		// OldestUnpruned is the nonce of the oldest message still stored
		OldestUnpruned uint64
		// LatestReceived is the latest nonce confirmed delivered by the bridged chain
		LatestReceived uint64
	}

	// UnrewardedRelayer is a relayer and the nonce range it delivered, not yet confirmed
	UnrewardedRelayer struct {
		Relayer []byte
		Begin   uint64
		End     uint64
	}

	// InboundLaneData is the state of the receiving side of a lane
	InboundLaneData struct {
		// LastDelivered is the nonce of the latest delivered message
		LastDelivered uint64
		// LastConfirmed is the latest nonce the bridged chain confirmed as delivered
		LastConfirmed uint64
		// Relayers are the ordered, contiguous ranges delivered after LastConfirmed
		Relayers []UnrewardedRelayer
	}

	// Message is a stored outbound message
	Message struct {
		Payload []byte
	}
)

// OutboundLaneKey is the key of the outbound lane data
func OutboundLaneKey(lane action.LaneID) []byte {
	return state.Key(_namespace, []byte("outbound"), lane[:])
}

// InboundLaneKey is the key of the inbound lane data
func InboundLaneKey(lane action.LaneID) []byte {
	return state.Key(_namespace, []byte("inbound"), lane[:])
}

// MessageKey is the key of an outbound message
func MessageKey(lane action.LaneID, nonce uint64) []byte {
	return state.Key(_namespace, []byte("message"), lane[:], byteutil.Uint64ToBytesBigEndian(nonce))
}

func newOutboundLaneData() *OutboundLaneData {
	return &OutboundLaneData{OldestUnpruned: 1}
}

// Unconfirmed returns the number of sent messages not confirmed delivered
func (o *OutboundLaneData) Unconfirmed() uint64 {
	return o.LatestGenerated - o.LatestReceived
}

// Unconfirmed returns the number of delivered messages the bridged chain didn't confirm yet
func (in *InboundLaneData) Unconfirmed() uint64 {
	return in.LastDelivered - in.LastConfirmed
}

// confirm advances LastConfirmed up to the nonce and drops the relayer entries it covers
func (in *InboundLaneData) confirm(nonce uint64) {
	if nonce > in.LastDelivered {
		nonce = in.LastDelivered
	}
	if nonce <= in.LastConfirmed {
		return
	}
	in.LastConfirmed = nonce
	kept := in.Relayers[:0]
	for _, r := range in.Relayers {
		if r.End <= nonce {
			continue
		}
		if r.Begin <= nonce {
			r.Begin = nonce + 1
		}
		kept = append(kept, r)
	}
	in.Relayers = kept
}

// deliver records that the relayer delivered [begin, end]
func (in *InboundLaneData) deliver(relayer []byte, begin, end uint64) {
	if n := len(in.Relayers); n > 0 && string(in.Relayers[n-1].Relayer) == string(relayer) {
		in.Relayers[n-1].End = end
	} else {
		in.Relayers = append(in.Relayers, UnrewardedRelayer{Relayer: relayer, Begin: begin, End: end})
	}
	in.LastDelivered = end
}

// OutboundLane returns the outbound lane data, an unused lane is empty
func OutboundLane(sr protocol.StateReader, lane action.LaneID) (*OutboundLaneData, error) {
	out := newOutboundLaneData()
	err := sr.State(OutboundLaneKey(lane), out)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return out, nil
	default:
		return nil, err
	}
}

// InboundLane returns the inbound lane data, an unused lane is empty
func InboundLane(sr protocol.StateReader, lane action.LaneID) (*InboundLaneData, error) {
	var in InboundLaneData
	err := sr.State(InboundLaneKey(lane), &in)
	switch errors.Cause(err) {
	case nil, state.ErrStateNotExist:
		return &in, nil
	default:
		return nil, err
	}
}

// MessageOf returns a stored outbound message
func MessageOf(sr protocol.StateReader, lane action.LaneID, nonce uint64) (*Message, error) {
	var m Message
	if err := sr.State(MessageKey(lane, nonce), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
