// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

var (
	// ErrStateNotExist is the error that the state does not exist
	ErrStateNotExist = errors.New("state does not exist")

	// ErrStateSerialization is the error that the state marshaling is failed
	ErrStateSerialization = errors.New("failed to marshal state")

	// ErrStateDeserialization is the error that the state un-marshaling is failed
	ErrStateDeserialization = errors.New("failed to unmarshal state")
)

type (
	// Serializer has Serialize method to serialize a struct to bytes
	Serializer interface {
		Serialize() ([]byte, error)
	}

	// Deserializer has Deserialize method to deserialize bytes to a struct
	Deserializer interface {
		Deserialize([]byte) error
	}
)

// Serialize check if input is Serializer, if it is, use the input's Serialize method, otherwise rlp encode it
func Serialize(d interface{}) ([]byte, error) {
	if s, ok := d.(Serializer); ok {
		return s.Serialize()
	}
	b, err := rlp.EncodeToBytes(d)
	if err != nil {
		return nil, errors.Wrapf(ErrStateSerialization, "%T: %v", d, err)
	}
	return b, nil
}

// Deserialize check if input is Deserializer, if it is, use the input's Deserialize method, otherwise rlp decode it
func Deserialize(x interface{}, data []byte) error {
	if s, ok := x.(Deserializer); ok {
		return s.Deserialize(data)
	}
	if err := rlp.DecodeBytes(data, x); err != nil {
		return errors.Wrapf(ErrStateDeserialization, "%T: %v", x, err)
	}
	return nil
}

// Key returns the 32-byte trie key of an entry in a namespace
func Key(namespace string, parts ...[]byte) []byte {
	n := len(namespace)
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	b = append(b, namespace...)
	for _, p := range parts {
		b = append(b, p...)
	}
	h := hash.Hash256b(b)
	return h[:]
}
