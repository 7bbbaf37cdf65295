// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

// WriteType is the type of write
type WriteType uint8

const (
	// Put indicate the type of write operation to be Put
	Put WriteType = iota
	// Delete indicate the type of write operation to be Delete
	Delete
)

type writeInfo struct {
	writeType WriteType
	namespace string
	key       []byte
	value     []byte
}

// Batch collects writes which are committed together by KVStore.WriteBatch
type Batch struct {
	entries []writeInfo
}

// NewBatch returns an empty batch
func NewBatch() *Batch {
	return &Batch{}
}

// Put adds a put operation to the batch
func (b *Batch) Put(namespace string, key, value []byte) {
	b.entries = append(b.entries, writeInfo{
		writeType: Put,
		namespace: namespace,
		key:       key,
		value:     value,
	})
}

// Delete adds a delete operation to the batch
func (b *Batch) Delete(namespace string, key []byte) {
	b.entries = append(b.entries, writeInfo{
		writeType: Delete,
		namespace: namespace,
		key:       key,
	})
}

// Size returns the number of writes in the batch
func (b *Batch) Size() int {
	return len(b.entries)
}

// Clear empties the batch
func (b *Batch) Clear() {
	b.entries = nil
}

func (b *Batch) mapValues(f func([]byte) []byte) *Batch {
	nb := &Batch{entries: make([]writeInfo, len(b.entries))}
	for i, w := range b.entries {
		nb.entries[i] = w
		if w.writeType == Put {
			nb.entries[i].value = f(w.value)
		}
	}
	return nb
}
