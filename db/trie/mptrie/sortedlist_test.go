// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedList(t *testing.T) {
	r := require.New(t)
	sl := NewSortedList(map[byte][]byte{9: nil, 1: nil, 5: nil})
	r.Equal([]uint8{1, 5, 9}, sl.List())
	sl.Insert(3)
	sl.Insert(5)
	sl.Insert(255)
	sl.Insert(0)
	r.Equal([]uint8{0, 1, 3, 5, 9, 255}, sl.List())
	sl.Delete(5)
	sl.Delete(7)
	sl.Delete(0)
	r.Equal([]uint8{1, 3, 9, 255}, sl.List())
	r.Empty(NewSortedList(nil).List())
}
