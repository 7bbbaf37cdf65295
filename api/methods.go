// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iotexproject/iotex-bridge/action"
)

func (svr *Server) chainMeta() (interface{}, error) {
	return newChainMetaObject(svr.core.ChainMeta()), nil
}

func (svr *Server) bestHeader() (interface{}, error) {
	blk, err := svr.core.BlockByHeight(svr.core.Height())
	if err != nil {
		return nil, err
	}
	return newBlockObject(blk)
}

func (svr *Server) headerByNumber(params gjson.Result) (interface{}, error) {
	num, err := parseUint64(params, 0)
	if err != nil {
		return nil, err
	}
	blk, err := svr.core.BlockByHeight(num)
	if err != nil {
		return nil, err
	}
	return newBlockObject(blk)
}

func (svr *Server) justification(params gjson.Result) (interface{}, error) {
	num, err := parseUint64(params, 0)
	if err != nil {
		return nil, err
	}
	blk, err := svr.core.BlockByHeight(num)
	if err != nil {
		return nil, err
	}
	b, err := blk.Justification.Serialize()
	if err != nil {
		return nil, err
	}
	return hexutil.Encode(b), nil
}

func (svr *Server) headersSince(params gjson.Result) (interface{}, error) {
	from, err := parseUint64(params, 0)
	if err != nil {
		return nil, err
	}
	limit, err := parseUint64(params, 1)
	if err != nil {
		return nil, err
	}
	if limit > svr.cfg.RangeQueryLimit {
		limit = svr.cfg.RangeQueryLimit
	}
	blks, err := svr.core.BlocksSince(from, limit)
	if err != nil {
		return nil, err
	}
	objs := make([]*blockObject, 0, len(blks))
	for _, blk := range blks {
		obj, err := newBlockObject(blk)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func (svr *Server) bridgedBestFinalized() (interface{}, error) {
	best, err := svr.core.BridgedBestFinalized()
	if err != nil {
		return nil, err
	}
	return newStoredHeaderObject(best), nil
}

func (svr *Server) bridgedHead() (interface{}, error) {
	head, err := svr.core.BridgedHead()
	if err != nil {
		return nil, err
	}
	return &headerRefObject{Number: head.Number, Hash: hashHex(head.Hash)}, nil
}

func (svr *Server) outboundLane(params gjson.Result) (interface{}, error) {
	lane, err := parseLane(params, 0)
	if err != nil {
		return nil, err
	}
	at, err := parseHash(params, 1)
	if err != nil {
		return nil, err
	}
	out, err := svr.core.OutboundLane(lane, at)
	if err != nil {
		return nil, err
	}
	return newOutboundLaneObject(out), nil
}

func (svr *Server) inboundLane(params gjson.Result) (interface{}, error) {
	lane, err := parseLane(params, 0)
	if err != nil {
		return nil, err
	}
	at, err := parseHash(params, 1)
	if err != nil {
		return nil, err
	}
	in, err := svr.core.InboundLane(lane, at)
	if err != nil {
		return nil, err
	}
	return newInboundLaneObject(in), nil
}

func (svr *Server) messageSizes(params gjson.Result) (interface{}, error) {
	lane, err := parseLane(params, 0)
	if err != nil {
		return nil, err
	}
	at, err := parseHash(params, 1)
	if err != nil {
		return nil, err
	}
	begin, err := parseUint64(params, 2)
	if err != nil {
		return nil, err
	}
	end, err := parseUint64(params, 3)
	if err != nil {
		return nil, err
	}
	if begin == 0 || end < begin {
		return nil, errors.Wrapf(ErrInvalidParams, "invalid range [%d, %d]", begin, end)
	}
	if end-begin >= svr.cfg.RangeQueryLimit {
		return nil, errors.Wrapf(ErrInvalidParams, "range [%d, %d] exceeds the limit %d", begin, end, svr.cfg.RangeQueryLimit)
	}
	return svr.core.MessageSizes(lane, at, begin, end)
}

func (svr *Server) prove(params gjson.Result) (interface{}, error) {
	at, err := parseHash(params, 0)
	if err != nil {
		return nil, err
	}
	keysParam, err := param(params, 1)
	if err != nil {
		return nil, err
	}
	if !keysParam.IsArray() || len(keysParam.Array()) == 0 {
		return nil, errors.Wrap(ErrInvalidParams, "param 1 is not a list of keys")
	}
	keys := make([][]byte, 0)
	for _, k := range keysParam.Array() {
		key, err := decodeHex(k, 1)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	proof, err := svr.core.Prove(at, keys...)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(proof))
	for _, node := range proof {
		nodes = append(nodes, hexutil.Encode(node))
	}
	return nodes, nil
}

func (svr *Server) sendAction(ctx context.Context, params gjson.Result) (interface{}, error) {
	b, err := parseBytes(params, 0)
	if err != nil {
		return nil, err
	}
	selp := &action.SealedEnvelope{}
	if err := selp.Deserialize(b); err != nil {
		return nil, errors.Wrapf(ErrInvalidParams, "invalid action: %v", err)
	}
	receipt, err := svr.core.SendAction(ctx, selp)
	if err != nil {
		return nil, err
	}
	return newReceiptObject(receipt), nil
}

func (svr *Server) rewards(params gjson.Result) (interface{}, error) {
	relayer, err := parseAddress(params, 0)
	if err != nil {
		return nil, err
	}
	lane, err := parseLane(params, 1)
	if err != nil {
		return nil, err
	}
	amount, err := svr.core.Rewards(relayer, lane)
	if err != nil {
		return nil, err
	}
	return amount.Dec(), nil
}

func (svr *Server) balance(params gjson.Result) (interface{}, error) {
	addr, err := parseAddress(params, 0)
	if err != nil {
		return nil, err
	}
	acct, err := svr.core.Account(addr)
	if err != nil {
		return nil, err
	}
	return acct.Balance.Dec(), nil
}

func (svr *Server) accountNonce(params gjson.Result) (interface{}, error) {
	addr, err := parseAddress(params, 0)
	if err != nil {
		return nil, err
	}
	acct, err := svr.core.Account(addr)
	if err != nil {
		return nil, err
	}
	return acct.Nonce, nil
}
