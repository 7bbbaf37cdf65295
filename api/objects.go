// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/finality"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
)

type (
	chainMetaObject struct {
		ChainID     uint32   `json:"chainID"`
		Height      uint64   `json:"height"`
		SetID       uint64   `json:"setID"`
		Authorities []string `json:"authorities"`
	}

	blockObject struct {
		Number        uint64 `json:"number"`
		Hash          string `json:"hash"`
		ParentHash    string `json:"parentHash"`
		StateRoot     string `json:"stateRoot"`
		Timestamp     uint64 `json:"timestamp"`
		Header        string `json:"header"`
		Justification string `json:"justification"`
	}

	headerRefObject struct {
		Number    uint64 `json:"number"`
		Hash      string `json:"hash"`
		StateRoot string `json:"stateRoot,omitempty"`
	}

	outboundLaneObject struct {
		LatestGenerated uint64 `json:"latestGenerated"`
		OldestUnpruned  uint64 `json:"oldestUnpruned"`
		LatestReceived  uint64 `json:"latestReceived"`
	}

	relayerObject struct {
		Relayer string `json:"relayer"`
		Begin   uint64 `json:"begin"`
		End     uint64 `json:"end"`
	}

	inboundLaneObject struct {
		LastDelivered uint64          `json:"lastDelivered"`
		LastConfirmed uint64          `json:"lastConfirmed"`
		Relayers      []relayerObject `json:"relayers"`
	}

	logObject struct {
		Topic string `json:"topic"`
		Data  string `json:"data"`
	}

	receiptObject struct {
		ActionHash  string      `json:"actionHash"`
		BlockHeight uint64      `json:"blockHeight"`
		ReturnValue string      `json:"returnValue"`
		Logs        []logObject `json:"logs"`
	}
)

func hashHex(h hash.Hash256) string {
	return hexutil.Encode(h[:])
}

func newChainMetaObject(meta *chainservice.ChainMeta) *chainMetaObject {
	obj := &chainMetaObject{
		ChainID:     meta.ChainID,
		Height:      meta.Height,
		SetID:       meta.SetID,
		Authorities: make([]string, 0, len(meta.Authorities)),
	}
	for _, pk := range meta.Authorities {
		obj.Authorities = append(obj.Authorities, hexutil.Encode(pk))
	}
	return obj
}

func newBlockObject(blk *block.Block) (*blockObject, error) {
	header, err := blk.Header.Serialize()
	if err != nil {
		return nil, err
	}
	justification, err := blk.Justification.Serialize()
	if err != nil {
		return nil, err
	}
	return &blockObject{
		Number:        blk.Header.Number,
		Hash:          hashHex(blk.Header.Hash()),
		ParentHash:    hashHex(blk.Header.ParentHash),
		StateRoot:     hashHex(blk.Header.StateRoot),
		Timestamp:     blk.Header.Timestamp,
		Header:        hexutil.Encode(header),
		Justification: hexutil.Encode(justification),
	}, nil
}

func newStoredHeaderObject(h *finality.StoredHeader) *headerRefObject {
	return &headerRefObject{
		Number:    h.Number,
		Hash:      hashHex(h.Hash),
		StateRoot: hashHex(h.StateRoot),
	}
}

func newOutboundLaneObject(out *messagelane.OutboundLaneData) *outboundLaneObject {
	return &outboundLaneObject{
		LatestGenerated: out.LatestGenerated,
		OldestUnpruned:  out.OldestUnpruned,
		LatestReceived:  out.LatestReceived,
	}
}

func newInboundLaneObject(in *messagelane.InboundLaneData) *inboundLaneObject {
	obj := &inboundLaneObject{
		LastDelivered: in.LastDelivered,
		LastConfirmed: in.LastConfirmed,
		Relayers:      make([]relayerObject, 0, len(in.Relayers)),
	}
	for _, r := range in.Relayers {
		relayer := hexutil.Encode(r.Relayer)
		if addr, err := address.FromBytes(r.Relayer); err == nil {
			relayer = addr.String()
		}
		obj.Relayers = append(obj.Relayers, relayerObject{
			Relayer: relayer,
			Begin:   r.Begin,
			End:     r.End,
		})
	}
	return obj
}

func newReceiptObject(receipt *action.Receipt) *receiptObject {
	obj := &receiptObject{
		ActionHash:  hashHex(receipt.ActionHash),
		BlockHeight: receipt.BlockHeight,
		ReturnValue: hexutil.Encode(receipt.ReturnValue),
		Logs:        make([]logObject, 0, len(receipt.Logs)),
	}
	for _, l := range receipt.Logs {
		obj.Logs = append(obj.Logs, logObject{Topic: l.Topic, Data: hexutil.Encode(l.Data)})
	}
	return obj
}
