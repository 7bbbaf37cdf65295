// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"sort"
)

// SortedList is a data structure where elements are in ascending order
type SortedList struct {
	li []uint8
}

// NewSortedList create SortedList from keys in the children map
func NewSortedList(children map[byte][]byte) *SortedList {
	li := make([]uint8, 0, len(children))
	for k := range children {
		li = append(li, k)
	}
	sort.Slice(li, func(i, j int) bool {
		return li[i] < li[j]
	})
	return &SortedList{li: li}
}

// Insert insert key into sortedlist
func (sl *SortedList) Insert(key uint8) {
	i := sort.Search(len(sl.li), func(i int) bool {
		return sl.li[i] >= key
	})
	if i < len(sl.li) && sl.li[i] == key {
		return
	}
	sl.li = append(sl.li, 0)
	copy(sl.li[i+1:], sl.li[i:])
	sl.li[i] = key
}

// List returns sorted indices
func (sl *SortedList) List() []uint8 {
	return sl.li
}

// Delete deletes key in the sortedlist
func (sl *SortedList) Delete(key uint8) {
	i := sort.Search(len(sl.li), func(i int) bool {
		return sl.li[i] >= key
	})
	if i < len(sl.li) && sl.li[i] == key {
		sl.li = append(sl.li[:i], sl.li[i+1:]...)
	}
}
