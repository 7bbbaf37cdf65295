// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package client

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.uber.org/atomic"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/api"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
)

// ErrInvalidResponse indicates the node returned a malformed response
var ErrInvalidResponse = errors.New("invalid json-rpc response")

var _clientMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "iotex_bridge_relay_client_requests",
		Help: "Relay json-rpc client requests",
	},
	[]string{"chain", "method", "result"},
)

func init() {
	prometheus.MustRegister(_clientMtc)
}

type httpClient struct {
	name   string
	client *resty.Client
	nextID atomic.Uint64
}

// NewHTTPClient creates a client of the json-rpc api of a bridge node
func NewHTTPClient(name, endpoint string, timeout time.Duration) ChainClient {
	return &httpClient{
		name: name,
		client: resty.New().
			SetBaseURL(endpoint).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *httpClient) Name() string { return c.name }

func (c *httpClient) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if params == nil {
		params = []interface{}{}
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      c.nextID.Inc(),
			"method":  method,
			"params":  params,
		}).
		Post("")
	if err != nil {
		_clientMtc.WithLabelValues(c.name, method, "transport").Inc()
		return gjson.Result{}, errors.Wrapf(err, "failed to call %s on %s", method, c.name)
	}
	if resp.IsError() {
		_clientMtc.WithLabelValues(c.name, method, "transport").Inc()
		return gjson.Result{}, errors.Errorf("failed to call %s on %s: http status %d", method, c.name, resp.StatusCode())
	}
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		_clientMtc.WithLabelValues(c.name, method, "invalid").Inc()
		return gjson.Result{}, errors.Wrapf(ErrInvalidResponse, "%s on %s", method, c.name)
	}
	parsed := gjson.ParseBytes(body)
	if e := parsed.Get("error"); e.Exists() {
		_clientMtc.WithLabelValues(c.name, method, "failure").Inc()
		return gjson.Result{}, api.ErrorFromCode(int(e.Get("code").Int()), e.Get("message").String())
	}
	result := parsed.Get("result")
	if !result.Exists() {
		_clientMtc.WithLabelValues(c.name, method, "invalid").Inc()
		return gjson.Result{}, errors.Wrapf(ErrInvalidResponse, "%s on %s has no result", method, c.name)
	}
	_clientMtc.WithLabelValues(c.name, method, "success").Inc()
	return result, nil
}

func (c *httpClient) ChainMeta(ctx context.Context) (*chainservice.ChainMeta, error) {
	res, err := c.call(ctx, "bridge_chainMeta")
	if err != nil {
		return nil, err
	}
	meta := &chainservice.ChainMeta{
		ChainID: uint32(res.Get("chainID").Uint()),
		Height:  res.Get("height").Uint(),
		SetID:   res.Get("setID").Uint(),
	}
	for _, pk := range res.Get("authorities").Array() {
		b, err := decodeHex(pk)
		if err != nil {
			return nil, err
		}
		meta.Authorities = append(meta.Authorities, b)
	}
	return meta, nil
}

func (c *httpClient) BestHeader(ctx context.Context) (*block.Block, error) {
	res, err := c.call(ctx, "bridge_bestHeader")
	if err != nil {
		return nil, err
	}
	return decodeBlock(res)
}

func (c *httpClient) HeadersSince(ctx context.Context, from, limit uint64) ([]*block.Block, error) {
	res, err := c.call(ctx, "bridge_headersSince", from, limit)
	if err != nil {
		return nil, err
	}
	blks := make([]*block.Block, 0)
	for _, r := range res.Array() {
		blk, err := decodeBlock(r)
		if err != nil {
			return nil, err
		}
		blks = append(blks, blk)
	}
	return blks, nil
}

func (c *httpClient) BridgedBestFinalized(ctx context.Context) (*chainservice.HeaderRef, error) {
	res, err := c.call(ctx, "bridge_bridgedBestFinalized")
	if err != nil {
		return nil, err
	}
	return decodeHeaderRef(res)
}

func (c *httpClient) BridgedHead(ctx context.Context) (*chainservice.HeaderRef, error) {
	res, err := c.call(ctx, "bridge_bridgedHead")
	if err != nil {
		return nil, err
	}
	return decodeHeaderRef(res)
}

func (c *httpClient) OutboundLane(ctx context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.OutboundLaneData, error) {
	res, err := c.call(ctx, "bridge_outboundLane", lane.String(), hexutil.Encode(at[:]))
	if err != nil {
		return nil, err
	}
	return &messagelane.OutboundLaneData{
		LatestGenerated: res.Get("latestGenerated").Uint(),
		OldestUnpruned:  res.Get("oldestUnpruned").Uint(),
		LatestReceived:  res.Get("latestReceived").Uint(),
	}, nil
}

func (c *httpClient) InboundLane(ctx context.Context, lane action.LaneID, at hash.Hash256) (*messagelane.InboundLaneData, error) {
	res, err := c.call(ctx, "bridge_inboundLane", lane.String(), hexutil.Encode(at[:]))
	if err != nil {
		return nil, err
	}
	in := &messagelane.InboundLaneData{
		LastDelivered: res.Get("lastDelivered").Uint(),
		LastConfirmed: res.Get("lastConfirmed").Uint(),
	}
	for _, r := range res.Get("relayers").Array() {
		relayer, err := decodeRelayer(r.Get("relayer").String())
		if err != nil {
			return nil, err
		}
		in.Relayers = append(in.Relayers, messagelane.UnrewardedRelayer{
			Relayer: relayer,
			Begin:   r.Get("begin").Uint(),
			End:     r.Get("end").Uint(),
		})
	}
	return in, nil
}

func (c *httpClient) MessageSizes(ctx context.Context, lane action.LaneID, at hash.Hash256, begin, end uint64) ([]uint64, error) {
	res, err := c.call(ctx, "bridge_messageSizes", lane.String(), hexutil.Encode(at[:]), begin, end)
	if err != nil {
		return nil, err
	}
	sizes := make([]uint64, 0)
	for _, s := range res.Array() {
		sizes = append(sizes, s.Uint())
	}
	return sizes, nil
}

func (c *httpClient) Prove(ctx context.Context, at hash.Hash256, keys ...[]byte) ([][]byte, error) {
	hexKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		hexKeys = append(hexKeys, hexutil.Encode(k))
	}
	res, err := c.call(ctx, "bridge_prove", hexutil.Encode(at[:]), hexKeys)
	if err != nil {
		return nil, err
	}
	proof := make([][]byte, 0)
	for _, node := range res.Array() {
		b, err := decodeHex(node)
		if err != nil {
			return nil, err
		}
		proof = append(proof, b)
	}
	return proof, nil
}

func (c *httpClient) AccountNonce(ctx context.Context, addr address.Address) (uint64, error) {
	res, err := c.call(ctx, "bridge_accountNonce", addr.String())
	if err != nil {
		return 0, err
	}
	return res.Uint(), nil
}

func (c *httpClient) Balance(ctx context.Context, addr address.Address) (*uint256.Int, error) {
	res, err := c.call(ctx, "bridge_balance", addr.String())
	if err != nil {
		return nil, err
	}
	return decodeAmount(res)
}

func (c *httpClient) Rewards(ctx context.Context, addr address.Address, lane action.LaneID) (*uint256.Int, error) {
	res, err := c.call(ctx, "bridge_rewards", addr.String(), lane.String())
	if err != nil {
		return nil, err
	}
	return decodeAmount(res)
}

func (c *httpClient) SendAction(ctx context.Context, selp *action.SealedEnvelope) (*action.Receipt, error) {
	b, err := selp.Serialize()
	if err != nil {
		return nil, err
	}
	res, err := c.call(ctx, "bridge_sendAction", hexutil.Encode(b))
	if err != nil {
		return nil, err
	}
	actHash, err := decodeHash(res.Get("actionHash"))
	if err != nil {
		return nil, err
	}
	returnValue, err := decodeHex(res.Get("returnValue"))
	if err != nil {
		return nil, err
	}
	receipt := &action.Receipt{
		ActionHash:  actHash,
		BlockHeight: res.Get("blockHeight").Uint(),
		ReturnValue: returnValue,
	}
	for _, l := range res.Get("logs").Array() {
		data, err := decodeHex(l.Get("data"))
		if err != nil {
			return nil, err
		}
		receipt.AddLogs(&action.Log{Topic: l.Get("topic").String(), Data: data})
	}
	return receipt, nil
}

func decodeHex(r gjson.Result) ([]byte, error) {
	b, err := hexutil.Decode(r.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "invalid hex %s: %v", r.Raw, err)
	}
	return b, nil
}

func decodeHash(r gjson.Result) (hash.Hash256, error) {
	b, err := decodeHex(r)
	if err != nil {
		return hash.ZeroHash256, err
	}
	if len(b) != len(hash.ZeroHash256) {
		return hash.ZeroHash256, errors.Wrapf(ErrInvalidResponse, "invalid hash %s", r.Raw)
	}
	return hash.BytesToHash256(b), nil
}

func decodeAmount(r gjson.Result) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(r.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "invalid amount %s: %v", r.Raw, err)
	}
	return v, nil
}

func decodeRelayer(s string) ([]byte, error) {
	if addr, err := address.FromString(s); err == nil {
		return addr.Bytes(), nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "invalid relayer %s", s)
	}
	return b, nil
}

func decodeHeaderRef(r gjson.Result) (*chainservice.HeaderRef, error) {
	h, err := decodeHash(r.Get("hash"))
	if err != nil {
		return nil, err
	}
	return &chainservice.HeaderRef{Number: r.Get("number").Uint(), Hash: h}, nil
}

func decodeBlock(r gjson.Result) (*block.Block, error) {
	header, err := decodeHex(r.Get("header"))
	if err != nil {
		return nil, err
	}
	justification, err := decodeHex(r.Get("justification"))
	if err != nil {
		return nil, err
	}
	blk := &block.Block{}
	if err := blk.Header.Deserialize(header); err != nil {
		return nil, errors.Wrap(ErrInvalidResponse, err.Error())
	}
	if err := blk.Justification.Deserialize(justification); err != nil {
		return nil, errors.Wrap(ErrInvalidResponse, err.Error())
	}
	return blk, nil
}
