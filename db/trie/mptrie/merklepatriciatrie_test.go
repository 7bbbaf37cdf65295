// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mptrie

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-bridge/db/trie"
)

var (
	ham = []byte{1, 2, 3, 4, 2, 3, 4, 5}
	car = []byte{1, 2, 3, 4, 5, 6, 7, 7}
	cat = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	rat = []byte{1, 2, 3, 4, 5, 6, 7, 9}
	egg = []byte{1, 2, 3, 4, 5, 8, 1, 0}
	dog = []byte{1, 2, 3, 4, 6, 7, 1, 0}
	fox = []byte{1, 2, 3, 5, 6, 7, 8, 9}
	cow = []byte{1, 2, 5, 6, 7, 8, 9, 0}
	ant = []byte{2, 3, 4, 5, 6, 7, 8, 9}

	testKeys = [][]byte{ham, car, cat, rat, egg, dog, fox, cow, ant}
	testV    = [][]byte{
		[]byte("ham"), []byte("car"), []byte("cat"), []byte("rat"), []byte("egg"),
		[]byte("dog"), []byte("fox"), []byte("cow"), []byte("ant"),
	}
)

func newTestTrie(r *require.Assertions, store trie.KVStore, opts ...Option) trie.Trie {
	opts = append([]Option{KeyLengthOption(8), KVStoreOption(store)}, opts...)
	tr, err := New(opts...)
	r.NoError(err)
	r.NoError(tr.Start(context.Background()))
	return tr
}

func TestEmptyTrie(t *testing.T) {
	r := require.New(t)
	tr := newTestTrie(r, trie.NewMemKVStore())
	r.True(tr.IsEmpty())
	root, err := tr.RootHash()
	r.NoError(err)
	r.Equal(EmptyRootHash(), root)
	_, err = tr.Get(cat)
	r.Equal(trie.ErrNotExist, errors.Cause(err))
	r.NoError(tr.Stop(context.Background()))
}

func TestUpsertGetDelete(t *testing.T) {
	r := require.New(t)
	tr := newTestTrie(r, trie.NewMemKVStore())

	for i, k := range testKeys {
		r.NoError(tr.Upsert(k, testV[i]))
		for j := 0; j <= i; j++ {
			v, err := tr.Get(testKeys[j])
			r.NoError(err)
			r.Equal(testV[j], v)
		}
	}
	r.False(tr.IsEmpty())

	// update an existing key
	r.NoError(tr.Upsert(cat, []byte("kitten")))
	v, err := tr.Get(cat)
	r.NoError(err)
	r.Equal([]byte("kitten"), v)

	// wrong key length
	r.Error(tr.Upsert([]byte{1, 2}, []byte("x")))

	for i, k := range testKeys {
		r.NoError(tr.Delete(k))
		_, err := tr.Get(k)
		r.Equal(trie.ErrNotExist, errors.Cause(err))
		for j := i + 1; j < len(testKeys); j++ {
			_, err := tr.Get(testKeys[j])
			r.NoError(err)
		}
	}
	r.True(tr.IsEmpty())
	root, err := tr.RootHash()
	r.NoError(err)
	r.Equal(EmptyRootHash(), root)
	r.Equal(trie.ErrNotExist, errors.Cause(tr.Delete(cat)))
}

func TestRootIsOrderIndependent(t *testing.T) {
	r := require.New(t)
	tr1 := newTestTrie(r, trie.NewMemKVStore())
	tr2 := newTestTrie(r, trie.NewMemKVStore())
	for i, k := range testKeys {
		r.NoError(tr1.Upsert(k, testV[i]))
	}
	perm := rand.New(rand.NewSource(7)).Perm(len(testKeys))
	for _, i := range perm {
		r.NoError(tr2.Upsert(testKeys[i], testV[i]))
	}
	root1, err := tr1.RootHash()
	r.NoError(err)
	root2, err := tr2.RootHash()
	r.NoError(err)
	r.Equal(root1, root2)

	// deleting restores the previous shape
	r.NoError(tr1.Upsert([]byte{1, 2, 3, 4, 5, 6, 0, 0}, []byte("tmp")))
	r.NoError(tr1.Delete([]byte{1, 2, 3, 4, 5, 6, 0, 0}))
	root1, err = tr1.RootHash()
	r.NoError(err)
	r.Equal(root2, root1)
}

func TestHistoricalRoots(t *testing.T) {
	r := require.New(t)
	store := trie.NewMemKVStore()
	tr := newTestTrie(r, store)
	r.NoError(tr.Upsert(cat, testV[2]))
	r.NoError(tr.Upsert(dog, testV[5]))
	oldRoot, err := tr.RootHash()
	r.NoError(err)
	r.NoError(tr.Upsert(cat, []byte("tiger")))
	r.NoError(tr.Delete(dog))

	// nodes are never removed, the old root still reads the old values
	old := newTestTrie(r, store, RootHashOption(oldRoot))
	v, err := old.Get(cat)
	r.NoError(err)
	r.Equal(testV[2], v)
	v, err = old.Get(dog)
	r.NoError(err)
	r.Equal(testV[5], v)

	r.NoError(old.SetRootHash(EmptyRootHash()))
	r.True(old.IsEmpty())
}

func TestNotStarted(t *testing.T) {
	r := require.New(t)
	tr, err := New()
	r.NoError(err)
	_, err = tr.Get(make([]byte, 32))
	r.Equal(trie.ErrInvalidTrie, errors.Cause(err))
	_, err = New(KeyLengthOption(0))
	r.Error(err)
}
