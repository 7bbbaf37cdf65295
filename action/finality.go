// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/blockchain/block"
)

type (
	// Initialize bootstraps the finality light client of the bridged chain
	Initialize struct {
		Header      block.Header
		Authorities [][]byte
		SetID       uint64
		Halted      bool
	}

	// SubmitFinalityProof imports a bridged header finalized by the justification
	SubmitFinalityProof struct {
		Header        block.Header
		Justification block.Justification
	}
)

// Type returns the action type
func (act *Initialize) Type() uint32 { return InitializeType }

// SanityCheck validates the authority list
func (act *Initialize) SanityCheck() error {
	if len(act.Authorities) == 0 {
		return errors.Wrap(ErrInvalidAction, "empty authority set")
	}
	for i, a := range act.Authorities {
		if _, err := crypto.BytesToPublicKey(a); err != nil {
			return errors.Wrapf(ErrInvalidAction, "authority %d: %v", i, err)
		}
	}
	return nil
}

// Type returns the action type
func (act *SubmitFinalityProof) Type() uint32 { return SubmitFinalityProofType }

// SanityCheck is a no-op, the justification is checked by the light client
func (act *SubmitFinalityProof) SanityCheck() error { return nil }
