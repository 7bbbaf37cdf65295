// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

type (
	// RootEntry is a key and the proof root noted under it
	RootEntry struct {
		Key  hash.Hash256
		Root hash.Hash256
	}

	// NoteNewRoots inserts entries into the proof root store
	NoteNewRoots struct {
		Entries []RootEntry
	}
)

// Type returns the action type
func (act *NoteNewRoots) Type() uint32 { return NoteNewRootsType }

// SanityCheck requires at least one entry
func (act *NoteNewRoots) SanityCheck() error {
	if len(act.Entries) == 0 {
		return errors.Wrap(ErrInvalidAction, "no root entry")
	}
	return nil
}
