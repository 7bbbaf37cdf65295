// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iotexproject/iotex-bridge/action"
)

func param(params gjson.Result, i int) (gjson.Result, error) {
	p := params.Get(strconv.Itoa(i))
	if !p.Exists() {
		return p, errors.Wrapf(ErrInvalidParams, "missing param %d", i)
	}
	return p, nil
}

func parseUint64(params gjson.Result, i int) (uint64, error) {
	p, err := param(params, i)
	if err != nil {
		return 0, err
	}
	switch p.Type {
	case gjson.Number:
		v, err := strconv.ParseUint(p.Raw, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidParams, "param %d: %v", i, err)
		}
		return v, nil
	case gjson.String:
		v, err := hexutil.DecodeUint64(p.String())
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidParams, "param %d: %v", i, err)
		}
		return v, nil
	default:
		return 0, errors.Wrapf(ErrInvalidParams, "param %d is not a number", i)
	}
}

func parseBytes(params gjson.Result, i int) ([]byte, error) {
	p, err := param(params, i)
	if err != nil {
		return nil, err
	}
	return decodeHex(p, i)
}

func decodeHex(p gjson.Result, i int) ([]byte, error) {
	if p.Type != gjson.String {
		return nil, errors.Wrapf(ErrInvalidParams, "param %d is not a hex string", i)
	}
	b, err := hexutil.Decode(p.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidParams, "param %d: %v", i, err)
	}
	return b, nil
}

func parseHash(params gjson.Result, i int) (hash.Hash256, error) {
	b, err := parseBytes(params, i)
	if err != nil {
		return hash.ZeroHash256, err
	}
	if len(b) != len(hash.ZeroHash256) {
		return hash.ZeroHash256, errors.Wrapf(ErrInvalidParams, "param %d is not a 32-byte hash", i)
	}
	return hash.BytesToHash256(b), nil
}

func parseLane(params gjson.Result, i int) (action.LaneID, error) {
	p, err := param(params, i)
	if err != nil {
		return action.LaneID{}, err
	}
	lane, err := action.LaneIDFromString(p.String())
	if err != nil {
		return action.LaneID{}, errors.Wrapf(ErrInvalidParams, "param %d: %v", i, err)
	}
	return lane, nil
}

func parseAddress(params gjson.Result, i int) (address.Address, error) {
	p, err := param(params, i)
	if err != nil {
		return nil, err
	}
	addr, err := address.FromString(p.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidParams, "param %d: %v", i, err)
	}
	return addr, nil
}
