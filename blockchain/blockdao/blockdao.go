// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package blockdao

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/pkg/util/byteutil"
)

const (
	blockNS                  = "blk"
	blockHashHeightMappingNS = "h2h"
	actionNS                 = "act"
	receiptNS                = "rcpt"
	actionHeightMappingNS    = "a2h"
)

var (
	hashPrefix   = []byte("hash.")
	heightPrefix = []byte("height.")
	topHeightKey = []byte("top-height")

	// ErrNotExist indicates the block, action or receipt doesn't exist
	ErrNotExist = errors.New("not exist in block dao")

	_blockDAOMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_bridge_blockdao",
			Help: "Block dao operations",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(_blockDAOMtc)
}

type (
	// BlockDAO represents the block data access object. Every block carries at most one action
	BlockDAO interface {
		Start(context.Context) error
		Stop(context.Context) error
		// Height returns the tip height, false if no block is stored
		Height() (uint64, bool, error)
		GetBlockHash(uint64) (hash.Hash256, error)
		GetBlockHeight(hash.Hash256) (uint64, error)
		GetBlockByHeight(uint64) (*block.Block, error)
		GetBlock(hash.Hash256) (*block.Block, error)
		// GetAction returns the action of the block, nil for a block without action
		GetAction(uint64) (*action.SealedEnvelope, error)
		GetReceipt(uint64) (*action.Receipt, error)
		GetReceiptByActionHash(hash.Hash256) (*action.Receipt, error)
		// PutBlock stages the block, its action and receipt into the batch
		PutBlock(*db.Batch, *block.Block, *action.SealedEnvelope, *action.Receipt) error
	}

	blockDAO struct {
		kvstore db.KVStore
	}
)

// NewBlockDAO instantiates a block DAO over the kv store, which is started and stopped by its owner
func NewBlockDAO(kvstore db.KVStore) BlockDAO {
	return &blockDAO{kvstore: kvstore}
}

func (dao *blockDAO) Start(context.Context) error { return nil }

func (dao *blockDAO) Stop(context.Context) error { return nil }

func (dao *blockDAO) Height() (uint64, bool, error) {
	value, err := dao.kvstore.Get(blockNS, topHeightKey)
	switch errors.Cause(err) {
	case nil:
		return byteutil.BytesToUint64BigEndian(value), true, nil
	case db.ErrNotExist:
		return 0, false, nil
	default:
		return 0, false, errors.Wrap(err, "failed to get top height")
	}
}

func (dao *blockDAO) get(ns string, key []byte, format string, args ...interface{}) ([]byte, error) {
	value, err := dao.kvstore.Get(ns, key)
	switch errors.Cause(err) {
	case nil:
		return value, nil
	case db.ErrNotExist:
		return nil, errors.Wrapf(ErrNotExist, format, args...)
	default:
		return nil, err
	}
}

func (dao *blockDAO) GetBlockHash(height uint64) (hash.Hash256, error) {
	_blockDAOMtc.WithLabelValues("get_block_hash").Inc()
	value, err := dao.get(blockHashHeightMappingNS, append(heightPrefix, byteutil.Uint64ToBytesBigEndian(height)...), "block %d", height)
	if err != nil {
		return hash.ZeroHash256, err
	}
	return hash.BytesToHash256(value), nil
}

func (dao *blockDAO) GetBlockHeight(h hash.Hash256) (uint64, error) {
	_blockDAOMtc.WithLabelValues("get_block_height").Inc()
	value, err := dao.get(blockHashHeightMappingNS, append(hashPrefix, h[:]...), "block %x", h)
	if err != nil {
		return 0, err
	}
	return byteutil.BytesToUint64BigEndian(value), nil
}

func (dao *blockDAO) GetBlockByHeight(height uint64) (*block.Block, error) {
	h, err := dao.GetBlockHash(height)
	if err != nil {
		return nil, err
	}
	return dao.GetBlock(h)
}

func (dao *blockDAO) GetBlock(h hash.Hash256) (*block.Block, error) {
	_blockDAOMtc.WithLabelValues("get_block").Inc()
	value, err := dao.get(blockNS, h[:], "block %x", h)
	if err != nil {
		return nil, err
	}
	blk := &block.Block{}
	if err := blk.Deserialize(value); err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize block %x", h)
	}
	return blk, nil
}

func (dao *blockDAO) GetAction(height uint64) (*action.SealedEnvelope, error) {
	value, err := dao.get(actionNS, byteutil.Uint64ToBytesBigEndian(height), "action of block %d", height)
	if err != nil {
		if errors.Cause(err) == ErrNotExist {
			return nil, nil
		}
		return nil, err
	}
	selp := &action.SealedEnvelope{}
	if err := selp.Deserialize(value); err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize action of block %d", height)
	}
	return selp, nil
}

func (dao *blockDAO) GetReceipt(height uint64) (*action.Receipt, error) {
	value, err := dao.get(receiptNS, byteutil.Uint64ToBytesBigEndian(height), "receipt of block %d", height)
	if err != nil {
		return nil, err
	}
	receipt := &action.Receipt{}
	if err := receipt.Deserialize(value); err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize receipt of block %d", height)
	}
	return receipt, nil
}

func (dao *blockDAO) GetReceiptByActionHash(h hash.Hash256) (*action.Receipt, error) {
	value, err := dao.get(actionHeightMappingNS, h[:], "action %x", h)
	if err != nil {
		return nil, err
	}
	return dao.GetReceipt(byteutil.BytesToUint64BigEndian(value))
}

func (dao *blockDAO) PutBlock(batch *db.Batch, blk *block.Block, selp *action.SealedEnvelope, receipt *action.Receipt) error {
	_blockDAOMtc.WithLabelValues("put_block").Inc()
	height := byteutil.Uint64ToBytesBigEndian(blk.Header.Number)
	serialized, err := blk.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize block")
	}
	h := blk.Header.Hash()
	batch.Put(blockNS, h[:], serialized)
	batch.Put(blockHashHeightMappingNS, append(hashPrefix, h[:]...), height)
	batch.Put(blockHashHeightMappingNS, append(heightPrefix, height...), h[:])

	top, ok, err := dao.Height()
	if err != nil {
		return err
	}
	if !ok || blk.Header.Number > top {
		batch.Put(blockNS, topHeightKey, height)
	}
	if selp == nil {
		return nil
	}
	serialized, err = selp.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize action")
	}
	batch.Put(actionNS, height, serialized)
	actHash, err := selp.Hash()
	if err != nil {
		return err
	}
	batch.Put(actionHeightMappingNS, actHash[:], height)
	if receipt == nil {
		return nil
	}
	serialized, err = receipt.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize receipt")
	}
	batch.Put(receiptNS, height, serialized)
	return nil
}
