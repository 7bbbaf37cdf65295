// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

type (
	// Receipt represents the result of an applied action
	Receipt struct {
		ActionHash  hash.Hash256
		BlockHeight uint64
		ReturnValue []byte
		Logs        []*Log
	}

	// Log is an event emitted while applying an action
	Log struct {
		Topic string
		Data  []byte
	}
)

// AddLogs appends logs to the receipt
func (receipt *Receipt) AddLogs(logs ...*Log) *Receipt {
	receipt.Logs = append(receipt.Logs, logs...)
	return receipt
}

// Serialize returns the rlp encoded receipt
func (receipt *Receipt) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(receipt)
}

// Deserialize decodes a receipt
func (receipt *Receipt) Deserialize(b []byte) error {
	if err := rlp.DecodeBytes(b, receipt); err != nil {
		return errors.Wrap(err, "failed to decode receipt")
	}
	return nil
}
