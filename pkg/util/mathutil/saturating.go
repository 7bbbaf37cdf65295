// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mathutil

import (
	"github.com/holiman/uint256"
)

var _max = new(uint256.Int).SetAllOne()

// SaturatingAdd returns a+b, clipped at the maximum value
func SaturatingAdd(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return new(uint256.Int).Set(_max)
	}
	return sum
}

// SaturatingSub returns a-b, clipped at zero
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return uint256.NewInt(0)
	}
	return diff
}

// SaturatingMul returns a*b, clipped at the maximum value
func SaturatingMul(a, b *uint256.Int) *uint256.Int {
	prod, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return new(uint256.Int).Set(_max)
	}
	return prod
}

// Min returns the smaller of a and b
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}
