// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"

	"github.com/iotexproject/iotex-bridge/pkg/log"
)

type (
	blockCtxKey struct{}

	actionCtxKey struct{}

	// BlockCtx provides the block being built
	BlockCtx struct {
		// height of the block containing the action
		BlockHeight uint64
		// unix timestamp of the block
		BlockTimeStamp uint64
	}

	// ActionCtx provides the action being applied
	ActionCtx struct {
		// Caller is the sender of the action, the relayer identity for rewards
		Caller address.Address
		// ActionHash is the hash of the sealed envelope
		ActionHash hash.Hash256
		// Nonce is the nonce of the envelope
		Nonce uint64
	}
)

// WithBlockCtx adds BlockCtx into context
func WithBlockCtx(ctx context.Context, blk BlockCtx) context.Context {
	return context.WithValue(ctx, blockCtxKey{}, blk)
}

// GetBlockCtx gets BlockCtx
func GetBlockCtx(ctx context.Context) (BlockCtx, bool) {
	blk, ok := ctx.Value(blockCtxKey{}).(BlockCtx)
	return blk, ok
}

// MustGetBlockCtx must get BlockCtx
func MustGetBlockCtx(ctx context.Context) BlockCtx {
	blk, ok := ctx.Value(blockCtxKey{}).(BlockCtx)
	if !ok {
		log.S().Panic("Miss block context")
	}
	return blk
}

// WithActionCtx adds ActionCtx into context
func WithActionCtx(ctx context.Context, act ActionCtx) context.Context {
	return context.WithValue(ctx, actionCtxKey{}, act)
}

// GetActionCtx gets ActionCtx
func GetActionCtx(ctx context.Context) (ActionCtx, bool) {
	act, ok := ctx.Value(actionCtxKey{}).(ActionCtx)
	return act, ok
}

// MustGetActionCtx must get ActionCtx
func MustGetActionCtx(ctx context.Context) ActionCtx {
	act, ok := ctx.Value(actionCtxKey{}).(ActionCtx)
	if !ok {
		log.S().Panic("Miss action context")
	}
	return act
}
