// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package blockdao

import (
	"context"
	"testing"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/test/identityset"
)

func TestBlockDAO(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	kv := db.NewMemKVStore()
	r.NoError(kv.Start(ctx))
	dao := NewBlockDAO(kv)
	r.NoError(dao.Start(ctx))
	defer func() { r.NoError(dao.Stop(ctx)) }()

	_, ok, err := dao.Height()
	r.NoError(err)
	r.False(ok)

	genesis := &block.Block{Header: block.Header{StateRoot: hash.Hash256b([]byte("genesis"))}}
	b := db.NewBatch()
	r.NoError(dao.PutBlock(b, genesis, nil, nil))
	r.NoError(kv.WriteBatch(b))

	selp, err := action.Sign(action.NewEnvelope(1, &action.SendMessage{Payload: []byte("hello")}), identityset.PrivateKey(0))
	r.NoError(err)
	actHash, err := selp.Hash()
	r.NoError(err)
	blk := &block.Block{Header: block.Header{ParentHash: genesis.Header.Hash(), Number: 1, Timestamp: 5}}
	j, err := block.NewJustification(&blk.Header, 0, 0, identityset.PrivateKeys(0, 2))
	r.NoError(err)
	blk.Justification = *j
	receipt := &action.Receipt{ActionHash: actHash, BlockHeight: 1, ReturnValue: []byte{1}}
	b = db.NewBatch()
	r.NoError(dao.PutBlock(b, blk, selp, receipt))
	r.NoError(kv.WriteBatch(b))

	height, ok, err := dao.Height()
	r.NoError(err)
	r.True(ok)
	r.Equal(uint64(1), height)

	h, err := dao.GetBlockHash(1)
	r.NoError(err)
	r.Equal(blk.Header.Hash(), h)
	n, err := dao.GetBlockHeight(genesis.Header.Hash())
	r.NoError(err)
	r.Zero(n)
	stored, err := dao.GetBlockByHeight(1)
	r.NoError(err)
	r.Equal(blk.Header.Hash(), stored.Header.Hash())
	r.Len(stored.Justification.Commit.Precommits, 2)

	act, err := dao.GetAction(0)
	r.NoError(err)
	r.Nil(act)
	act, err = dao.GetAction(1)
	r.NoError(err)
	storedHash, err := act.Hash()
	r.NoError(err)
	r.Equal(actHash, storedHash)
	rcpt, err := dao.GetReceiptByActionHash(actHash)
	r.NoError(err)
	r.Equal(receipt.ReturnValue, rcpt.ReturnValue)

	_, err = dao.GetBlockByHeight(2)
	r.Equal(ErrNotExist, errors.Cause(err))
	_, err = dao.GetReceipt(0)
	r.Equal(ErrNotExist, errors.Cause(err))
	_, err = dao.GetReceiptByActionHash(hash.ZeroHash256)
	r.Equal(ErrNotExist, errors.Cause(err))
}
