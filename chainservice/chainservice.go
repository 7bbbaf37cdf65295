// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package chainservice

import (
	"bytes"
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/action/protocol/account"
	"github.com/iotexproject/iotex-bridge/action/protocol/childchain"
	"github.com/iotexproject/iotex-bridge/action/protocol/finality"
	"github.com/iotexproject/iotex-bridge/action/protocol/messagelane"
	"github.com/iotexproject/iotex-bridge/action/protocol/operating"
	"github.com/iotexproject/iotex-bridge/action/protocol/proofroot"
	"github.com/iotexproject/iotex-bridge/action/protocol/rewarding"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/blockchain/blockdao"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/state/factory"
)

const _chainMetaNS = "ChainMeta"

var (
	_authorityKey = []byte("authoritySet")

	// ErrNotStarted indicates the chain service has no genesis block yet
	ErrNotStarted = errors.New("chain service is not started")
	// ErrAuthorityMismatch indicates the configured authority keys differ from the stored set
	ErrAuthorityMismatch = errors.New("authority keys mismatch the stored authority set")
)

type (
	// Option sets the chain service options
	Option func(*ChainService)

	// ChainMeta describes the chain and the authority set finalizing blocks after its tip
	ChainMeta struct {
		ChainID     uint32
		Height      uint64
		Authorities [][]byte
		SetID       uint64
	}

	// HeaderRef identifies a header
	HeaderRef struct {
		Number uint64
		Hash   hash.Hash256
	}

	authorityState struct {
		SetID       uint64
		Authorities [][]byte
	}

	// ChainService is the bridge chain. It applies one signed action per block and finalizes every
	// block with a justification of its authority set
	ChainService struct {
		cfg        config.Config
		lifecycle  lifecycle.Lifecycle
		kvstore    db.KVStore
		registry   *protocol.Registry
		sf         factory.Factory
		dao        blockdao.BlockDAO
		finality   *finality.Protocol
		childchain *childchain.Protocol
		clk        clock.Clock
		dispatcher messagelane.Dispatcher
		payment    rewarding.PaymentProcedure

		mu          sync.Mutex
		tip         atomic.Uint64
		keys        []crypto.PrivateKey
		setID       uint64
		pendingKeys []crypto.PrivateKey
	}
)

// WithKVStore sets the kv store instead of the one built from the chain db config
func WithKVStore(kvstore db.KVStore) Option {
	return func(cs *ChainService) {
		cs.kvstore = kvstore
	}
}

// WithClock sets the clock stamping blocks
func WithClock(clk clock.Clock) Option {
	return func(cs *ChainService) {
		cs.clk = clk
	}
}

// WithDispatcher sets the dispatcher of delivered messages
func WithDispatcher(d messagelane.Dispatcher) Option {
	return func(cs *ChainService) {
		cs.dispatcher = d
	}
}

// WithPaymentProcedure sets the procedure paying claimed rewards
func WithPaymentProcedure(payment rewarding.PaymentProcedure) Option {
	return func(cs *ChainService) {
		cs.payment = payment
	}
}

// New creates a chain service from the config
func New(cfg config.Config, opts ...Option) (*ChainService, error) {
	cs := &ChainService{
		cfg:   cfg,
		clk:   clock.New(),
		keys:  cfg.Chain.AuthorityPrivateKeys(),
		setID: cfg.Chain.AuthoritySetID,
	}
	for _, opt := range opts {
		opt(cs)
	}
	if len(cs.keys) == 0 {
		return nil, errors.Wrap(config.ErrInvalidCfg, "no authority key")
	}
	if cs.kvstore == nil {
		kvstore, err := db.CreateKVStore(cfg.Chain.DB)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create chain db")
		}
		cs.kvstore = kvstore
	}
	registry, err := cs.buildRegistry()
	if err != nil {
		return nil, err
	}
	cs.registry = registry
	cs.sf = factory.NewFactory(cs.kvstore, registry)
	cs.dao = blockdao.NewBlockDAO(cs.kvstore)
	cs.lifecycle.AddModels(cs.kvstore, cs.sf, cs.dao)
	return cs, nil
}

func (cs *ChainService) buildRegistry() (*protocol.Registry, error) {
	balances := make(map[string]*uint256.Int, len(cs.cfg.Chain.GenesisBalances))
	for addr, amount := range cs.cfg.Chain.GenesisBalances {
		v, err := config.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		balances[addr] = v
	}
	fund, err := config.ParseAmount(cs.cfg.Chain.FundBalance)
	if err != nil {
		return nil, err
	}
	bridge := cs.cfg.Bridge
	cs.finality = finality.NewProtocol(bridge.HeadersToKeep)
	cs.childchain = childchain.NewProtocol(bridge.ChildHeadsToKeep)
	var headers messagelane.HeaderChain = cs.finality
	if bridge.BridgedChain.Kind == config.ChildBridgedChain {
		headers = cs.childchain.HeaderChain(bridge.BridgedChain.ChildID)
	}
	var laneOpts []messagelane.Option
	if cs.dispatcher != nil {
		laneOpts = append(laneOpts, messagelane.DispatcherOption(cs.dispatcher))
	}
	var rewardOpts []rewarding.Option
	if cs.payment != nil {
		rewardOpts = append(rewardOpts, rewarding.PaymentProcedureOption(cs.payment))
	}

	registry := protocol.NewRegistry()
	for _, p := range []protocol.Protocol{
		account.NewProtocol(balances),
		operating.NewProtocol(cs.cfg.Chain.OwnerAddress(), finality.ProtocolID, childchain.ProtocolID, messagelane.ProtocolID),
		cs.finality,
		cs.childchain,
		proofroot.NewProtocol(bridge.RootsToKeep),
		rewarding.NewProtocol(fund, rewardOpts...),
		messagelane.NewProtocol(bridge, headers, laneOpts...),
	} {
		if err := registry.Register(p); err != nil {
			return nil, errors.Wrapf(err, "failed to register protocol %s", p.Name())
		}
	}
	return registry, nil
}

// Start starts the storage and creates the genesis block on an empty db
func (cs *ChainService) Start(ctx context.Context) error {
	if err := cs.lifecycle.OnStart(ctx); err != nil {
		return err
	}
	tip, ok, err := cs.dao.Height()
	if err != nil {
		return err
	}
	if !ok {
		return cs.createGenesis(ctx)
	}
	if err := cs.loadAuthoritySet(); err != nil {
		return err
	}
	cs.tip.Store(tip)
	log.L().Info("Loaded bridge chain.", zap.Uint32("chainID", cs.cfg.Chain.ID), zap.Uint64("height", tip))
	return nil
}

// Stop stops the storage
func (cs *ChainService) Stop(ctx context.Context) error {
	return cs.lifecycle.OnStop(ctx)
}

func (cs *ChainService) createGenesis(ctx context.Context) error {
	ws, err := cs.sf.NewWorkingSet(0)
	if err != nil {
		return err
	}
	ctx = protocol.WithBlockCtx(ctx, protocol.BlockCtx{
		BlockHeight:    0,
		BlockTimeStamp: uint64(cs.cfg.Chain.GenesisTimestamp),
	})
	if err := ws.CreateGenesisStates(ctx); err != nil {
		return err
	}
	root, err := ws.RootHash()
	if err != nil {
		return err
	}
	header := block.Header{
		Number:    0,
		StateRoot: root,
		Timestamp: uint64(cs.cfg.Chain.GenesisTimestamp),
	}
	batch := db.NewBatch()
	if err := cs.commitBlock(ws, batch, &header, nil, nil); err != nil {
		return errors.Wrap(err, "failed to create genesis block")
	}
	log.L().Info("Created genesis block.", zap.Uint32("chainID", cs.cfg.Chain.ID), log.Hex("root", root[:]))
	return nil
}

func (cs *ChainService) loadAuthoritySet() error {
	value, err := cs.kvstore.Get(_chainMetaNS, _authorityKey)
	if err != nil {
		return errors.Wrap(err, "failed to read authority set")
	}
	var stored authorityState
	if err := rlp.DecodeBytes(value, &stored); err != nil {
		return errors.Wrap(err, "failed to decode authority set")
	}
	keys := publicKeys(cs.keys)
	if len(keys) != len(stored.Authorities) {
		return errors.Wrapf(ErrAuthorityMismatch, "set %d", stored.SetID)
	}
	for i := range keys {
		if !bytes.Equal(keys[i], stored.Authorities[i]) {
			return errors.Wrapf(ErrAuthorityMismatch, "set %d", stored.SetID)
		}
	}
	cs.setID = stored.SetID
	return nil
}

// commitBlock signs the header and writes the block together with the working set
func (cs *ChainService) commitBlock(
	ws factory.WorkingSet,
	batch *db.Batch,
	header *block.Header,
	selp *action.SealedEnvelope,
	receipt *action.Receipt,
) error {
	justification, err := block.NewJustification(header, 0, cs.setID, cs.keys)
	if err != nil {
		return errors.Wrap(err, "failed to sign block")
	}
	blk := &block.Block{Header: *header, Justification: *justification}
	if err := cs.dao.PutBlock(batch, blk, selp, receipt); err != nil {
		return err
	}
	keys, setID := cs.keys, cs.setID
	if header.Digest.HasAuthorityChange() {
		keys, setID = cs.pendingKeys, cs.setID+1
	}
	value, err := rlp.EncodeToBytes(&authorityState{SetID: setID, Authorities: publicKeys(keys)})
	if err != nil {
		return err
	}
	batch.Put(_chainMetaNS, _authorityKey, value)
	if err := cs.sf.Commit(ws, batch); err != nil {
		return err
	}
	if header.Digest.HasAuthorityChange() {
		cs.keys, cs.setID, cs.pendingKeys = keys, setID, nil
		log.L().Info("Switched authority set.", zap.Uint64("setID", setID), zap.Int("size", len(keys)))
	}
	cs.tip.Store(header.Number)
	return nil
}

// ScheduleAuthorityChange makes the next block announce the new authority set, which finalizes
// the blocks after it
func (cs *ChainService) ScheduleAuthorityChange(keys []crypto.PrivateKey) error {
	if len(keys) == 0 {
		return errors.New("empty authority set")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.pendingKeys = keys
	return nil
}

// SendAction applies the action in a new block. A rejected action creates no block
func (cs *ChainService) SendAction(ctx context.Context, selp *action.SealedEnvelope) (*action.Receipt, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	parent, err := cs.dao.GetBlockByHeight(cs.tip.Load())
	if err != nil {
		return nil, err
	}
	height := parent.Header.Number + 1
	timestamp := uint64(cs.clk.Now().Unix())
	if timestamp <= parent.Header.Timestamp {
		timestamp = parent.Header.Timestamp + 1
	}
	ws, err := cs.sf.NewWorkingSet(height)
	if err != nil {
		return nil, err
	}
	ctx = protocol.WithBlockCtx(ctx, protocol.BlockCtx{
		BlockHeight:    height,
		BlockTimeStamp: timestamp,
	})
	receipt, err := ws.RunAction(ctx, selp)
	if err != nil {
		log.L().Debug("Rejected action.", zap.Uint64("height", height), zap.Error(err))
		return nil, err
	}
	root, err := ws.RootHash()
	if err != nil {
		return nil, err
	}
	header := block.Header{
		ParentHash: parent.Header.Hash(),
		Number:     height,
		StateRoot:  root,
		Timestamp:  timestamp,
	}
	if len(cs.pendingKeys) > 0 {
		header.Digest.NextAuthorities = publicKeys(cs.pendingKeys)
	}
	if err := cs.commitBlock(ws, db.NewBatch(), &header, selp, receipt); err != nil {
		return nil, err
	}
	blkHash := header.Hash()
	log.L().Debug("Produced block.",
		zap.Uint64("height", height),
		log.Hex("hash", blkHash[:]),
		zap.Int("logs", len(receipt.Logs)))
	return receipt, nil
}

// ChainID returns the id of the chain
func (cs *ChainService) ChainID() uint32 { return cs.cfg.Chain.ID }

// Height returns the tip height
func (cs *ChainService) Height() uint64 { return cs.tip.Load() }

// ChainMeta returns the chain id, tip and the authority set finalizing the blocks after the tip
func (cs *ChainService) ChainMeta() *ChainMeta {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return &ChainMeta{
		ChainID:     cs.cfg.Chain.ID,
		Height:      cs.tip.Load(),
		Authorities: publicKeys(cs.keys),
		SetID:       cs.setID,
	}
}

// BlockByHeight returns the block at height
func (cs *ChainService) BlockByHeight(height uint64) (*block.Block, error) {
	return cs.dao.GetBlockByHeight(height)
}

// BlockByHash returns the block of hash
func (cs *ChainService) BlockByHash(h hash.Hash256) (*block.Block, error) {
	return cs.dao.GetBlock(h)
}

// BlocksSince returns up to limit blocks starting at height from
func (cs *ChainService) BlocksSince(from, limit uint64) ([]*block.Block, error) {
	tip := cs.tip.Load()
	blks := make([]*block.Block, 0)
	for h := from; h <= tip && uint64(len(blks)) < limit; h++ {
		blk, err := cs.dao.GetBlockByHeight(h)
		if err != nil {
			return nil, err
		}
		blks = append(blks, blk)
	}
	return blks, nil
}

// ReceiptByActionHash returns the receipt of an applied action
func (cs *ChainService) ReceiptByActionHash(h hash.Hash256) (*action.Receipt, error) {
	return cs.dao.GetReceiptByActionHash(h)
}

// StateReaderAt returns a reader of the state committed by the block
func (cs *ChainService) StateReaderAt(blockHash hash.Hash256) (protocol.StateReader, error) {
	blk, err := cs.dao.GetBlock(blockHash)
	if err != nil {
		return nil, err
	}
	return &stateReaderAt{sf: cs.sf, height: blk.Header.Number, root: blk.Header.StateRoot}, nil
}

func (cs *ChainService) tipReader() (protocol.StateReader, error) {
	blk, err := cs.dao.GetBlockByHeight(cs.tip.Load())
	if err != nil {
		return nil, err
	}
	return &stateReaderAt{sf: cs.sf, height: blk.Header.Number, root: blk.Header.StateRoot}, nil
}

// Prove returns a merged storage proof of the keys in the state committed by the block
func (cs *ChainService) Prove(blockHash hash.Hash256, keys ...[]byte) ([][]byte, error) {
	blk, err := cs.dao.GetBlock(blockHash)
	if err != nil {
		return nil, err
	}
	return cs.sf.Prove(blk.Header.StateRoot, keys...)
}

// Account returns the account at the tip
func (cs *ChainService) Account(addr address.Address) (*account.Account, error) {
	sr, err := cs.tipReader()
	if err != nil {
		return nil, err
	}
	return account.LoadAccount(sr, addr)
}

// Rewards returns the unclaimed reward of the relayer on the lane at the tip
func (cs *ChainService) Rewards(relayer address.Address, lane action.LaneID) (*uint256.Int, error) {
	sr, err := cs.tipReader()
	if err != nil {
		return nil, err
	}
	return rewarding.RewardOf(sr, relayer, lane)
}

// Fund returns the relayer fund at the tip
func (cs *ChainService) Fund() (*rewarding.Fund, error) {
	sr, err := cs.tipReader()
	if err != nil {
		return nil, err
	}
	return rewarding.FundOf(sr)
}

// OutboundLane returns the outbound lane state committed by the block
func (cs *ChainService) OutboundLane(lane action.LaneID, at hash.Hash256) (*messagelane.OutboundLaneData, error) {
	sr, err := cs.StateReaderAt(at)
	if err != nil {
		return nil, err
	}
	return messagelane.OutboundLane(sr, lane)
}

// InboundLane returns the inbound lane state committed by the block
func (cs *ChainService) InboundLane(lane action.LaneID, at hash.Hash256) (*messagelane.InboundLaneData, error) {
	sr, err := cs.StateReaderAt(at)
	if err != nil {
		return nil, err
	}
	return messagelane.InboundLane(sr, lane)
}

// MessageSizes returns the payload sizes of the outbound messages [begin, end] committed by the block
func (cs *ChainService) MessageSizes(lane action.LaneID, at hash.Hash256, begin, end uint64) ([]uint64, error) {
	sr, err := cs.StateReaderAt(at)
	if err != nil {
		return nil, err
	}
	sizes := make([]uint64, 0)
	for nonce := begin; nonce <= end; nonce++ {
		msg, err := messagelane.MessageOf(sr, lane, nonce)
		if err != nil {
			return nil, errors.Wrapf(err, "message %d", nonce)
		}
		sizes = append(sizes, uint64(len(msg.Payload)))
	}
	return sizes, nil
}

// BridgedBestFinalized returns the best header imported by the finality light client at the tip
func (cs *ChainService) BridgedBestFinalized() (*finality.StoredHeader, error) {
	sr, err := cs.tipReader()
	if err != nil {
		return nil, err
	}
	return finality.BestFinalized(sr)
}

// BridgedHead returns the best bridged header the message lanes verify proofs against, a relayed
// child head when the bridged chain is a child chain
func (cs *ChainService) BridgedHead() (*HeaderRef, error) {
	sr, err := cs.tipReader()
	if err != nil {
		return nil, err
	}
	if cs.cfg.Bridge.BridgedChain.Kind == config.ChildBridgedChain {
		best, err := childchain.BestChildHead(sr, cs.cfg.Bridge.BridgedChain.ChildID)
		if err != nil {
			return nil, err
		}
		return &HeaderRef{Number: best.Number, Hash: best.Hash}, nil
	}
	best, err := finality.BestFinalized(sr)
	if err != nil {
		return nil, err
	}
	return &HeaderRef{Number: best.Number, Hash: best.Hash}, nil
}

type stateReaderAt struct {
	sf     factory.Factory
	height uint64
	root   hash.Hash256
}

func (sr *stateReaderAt) Height() uint64 { return sr.height }

func (sr *stateReaderAt) State(key []byte, s interface{}) error {
	return sr.sf.StateAt(sr.root, key, s)
}

func publicKeys(keys []crypto.PrivateKey) [][]byte {
	pks := make([][]byte, len(keys))
	for i, sk := range keys {
		pks[i] = sk.PublicKey().Bytes()
	}
	return pks
}
