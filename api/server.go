// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol/account"
	"github.com/iotexproject/iotex-bridge/action/protocol/finality"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/chainservice"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/httputil"
)

const _acquireTimeout = 10 * time.Second

var _apiMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "iotex_bridge_api_requests",
		Help: "Bridge api requests",
	},
	[]string{"method", "result"},
)

func init() {
	prometheus.MustRegister(_apiMtc)
}

type (
	// CoreService is the chain the api serves
	CoreService interface {
		ChainMeta() *chainservice.ChainMeta
		Height() uint64
		BlockByHeight(uint64) (*block.Block, error)
		BlocksSince(from, limit uint64) ([]*block.Block, error)
		BridgedBestFinalized() (*finality.StoredHeader, error)
		BridgedHead() (*chainservice.HeaderRef, error)
		OutboundLane(action.LaneID, hash.Hash256) (*messagelane.OutboundLaneData, error)
		InboundLane(action.LaneID, hash.Hash256) (*messagelane.InboundLaneData, error)
		MessageSizes(lane action.LaneID, at hash.Hash256, begin, end uint64) ([]uint64, error)
		Prove(hash.Hash256, ...[]byte) ([][]byte, error)
		SendAction(context.Context, *action.SealedEnvelope) (*action.Receipt, error)
		Account(address.Address) (*account.Account, error)
		Rewards(address.Address, action.LaneID) (*uint256.Int, error)
	}

	// Server serves the bridge json-rpc api over http
	Server struct {
		core   CoreService
		cfg    config.API
		server http.Server
		sem    *semaphore.Weighted
	}

	jsonrpcResp struct {
		Jsonrpc string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  interface{}     `json:"result,omitempty"`
		Error   *jsonrpcErr     `json:"error,omitempty"`
	}

	jsonrpcErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
)

// NewServer creates the api server of the chain
func NewServer(core CoreService, cfg config.API) *Server {
	svr := &Server{
		core: core,
		cfg:  cfg,
		sem:  semaphore.NewWeighted(cfg.MaxConcurrentRequests),
	}
	svr.server = httputil.NewServer(":"+strconv.Itoa(cfg.Port), svr, httputil.ReadHeaderTimeout(10*time.Second))
	return svr
}

// Start starts the http server
func (svr *Server) Start(_ context.Context) error {
	ln, err := httputil.LimitListener(svr.server.Addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen on api port")
	}
	go func() {
		if err := svr.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.L().Fatal("Node failed to serve.", zap.Error(err))
		}
	}()
	log.L().Info("Started api server.", zap.Int("port", svr.cfg.Port))
	return nil
}

// Stop stops the http server
func (svr *Server) Stop(ctx context.Context) error {
	return svr.server.Shutdown(ctx)
}

func (svr *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Write([]byte("IoTeX bridge RPC endpoint is ready."))
		return
	}
	acquireCtx, cancel := context.WithTimeout(req.Context(), _acquireTimeout)
	defer cancel()
	if err := svr.sem.Acquire(acquireCtx, 1); err != nil {
		w.WriteHeader(http.StatusTooManyRequests)
		log.L().Error("fail to acquire semaphore", zap.Error(err))
		return
	}
	defer svr.sem.Release(1)

	body, err := io.ReadAll(req.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(svr.HandleRequest(req.Context(), body)); err != nil {
		log.L().Warn("fail to respond request.", zap.Error(err))
	}
}

// HandleRequest handles a json-rpc request or a batch of requests
func (svr *Server) HandleRequest(ctx context.Context, body []byte) interface{} {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return packErr(nil, CodeParseError, "invalid json")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return svr.handle(ctx, parsed)
	}
	reqs := parsed.Array()
	if len(reqs) == 0 {
		return packErr(nil, CodeInvalidRequest, "empty batch")
	}
	resps := make([]*jsonrpcResp, 0, len(reqs))
	for _, r := range reqs {
		resps = append(resps, svr.handle(ctx, r))
	}
	return resps
}

func (svr *Server) handle(ctx context.Context, req gjson.Result) *jsonrpcResp {
	var id json.RawMessage
	if raw := req.Get("id").Raw; raw != "" {
		id = json.RawMessage(raw)
	}
	method := req.Get("method")
	if !req.IsObject() || method.Type != gjson.String {
		return packErr(id, CodeInvalidRequest, "request field is incomplete")
	}
	params := req.Get("params")
	if params.Exists() && !params.IsArray() {
		return packErr(id, CodeInvalidParams, "params must be an array")
	}

	var (
		res interface{}
		err error
	)
	switch method.String() {
	case "bridge_chainMeta":
		res, err = svr.chainMeta()
	case "bridge_bestHeader":
		res, err = svr.bestHeader()
	case "bridge_headerByNumber":
		res, err = svr.headerByNumber(params)
	case "bridge_justification":
		res, err = svr.justification(params)
	case "bridge_headersSince":
		res, err = svr.headersSince(params)
	case "bridge_bridgedBestFinalized":
		res, err = svr.bridgedBestFinalized()
	case "bridge_bridgedHead":
		res, err = svr.bridgedHead()
	case "bridge_outboundLane":
		res, err = svr.outboundLane(params)
	case "bridge_inboundLane":
		res, err = svr.inboundLane(params)
	case "bridge_messageSizes":
		res, err = svr.messageSizes(params)
	case "bridge_prove":
		res, err = svr.prove(params)
	case "bridge_sendAction":
		res, err = svr.sendAction(ctx, params)
	case "bridge_rewards":
		res, err = svr.rewards(params)
	case "bridge_balance":
		res, err = svr.balance(params)
	case "bridge_accountNonce":
		res, err = svr.accountNonce(params)
	default:
		err = errors.Wrapf(ErrMethodNotFound, "method: %s", method.String())
	}
	if err != nil {
		_apiMtc.WithLabelValues(method.String(), "failure").Inc()
		log.L().Debug("API request failed.", zap.String("method", method.String()), zap.Error(err))
		return packErr(id, ErrorCode(err), err.Error())
	}
	_apiMtc.WithLabelValues(method.String(), "success").Inc()
	return &jsonrpcResp{Jsonrpc: "2.0", ID: id, Result: res}
}

func packErr(id json.RawMessage, code int, msg string) *jsonrpcResp {
	return &jsonrpcResp{
		Jsonrpc: "2.0",
		ID:      id,
		Error: &jsonrpcErr{
			Code:    code,
			Message: msg,
		},
	}
}
