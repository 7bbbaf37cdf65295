// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package block

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

const _precommitTag = "bridge-precommit"

type (
	// Precommit is a vote for a block
	Precommit struct {
		TargetHash   hash.Hash256
		TargetNumber uint64
	}

	// SignedPrecommit is a precommit signed by an authority
	SignedPrecommit struct {
		Precommit Precommit
		Signature []byte
		ID        []byte
	}

	// Commit is a set of signed precommits for a target block
	Commit struct {
		TargetHash   hash.Hash256
		TargetNumber uint64
		Precommits   []SignedPrecommit
	}

	// Justification proves the finality of a header by the authority set SetID
	Justification struct {
		Round           uint64
		SetID           uint64
		Commit          Commit
		VotesAncestries []Header
	}

	precommitMessage struct {
		Tag          string
		TargetHash   hash.Hash256
		TargetNumber uint64
		Round        uint64
		SetID        uint64
	}
)

// PrecommitHash returns the message an authority signs for a precommit
func PrecommitHash(p *Precommit, round, setID uint64) hash.Hash256 {
	b, err := rlp.EncodeToBytes(&precommitMessage{
		Tag:          _precommitTag,
		TargetHash:   p.TargetHash,
		TargetNumber: p.TargetNumber,
		Round:        round,
		SetID:        setID,
	})
	if err != nil {
		panic(err)
	}
	return hash.Hash256b(b)
}

// SignPrecommit signs a precommit with an authority key
func SignPrecommit(sk crypto.PrivateKey, p Precommit, round, setID uint64) (SignedPrecommit, error) {
	h := PrecommitHash(&p, round, setID)
	sig, err := sk.Sign(h[:])
	if err != nil {
		return SignedPrecommit{}, errors.Wrap(err, "failed to sign precommit")
	}
	return SignedPrecommit{
		Precommit: p,
		Signature: sig,
		ID:        sk.PublicKey().Bytes(),
	}, nil
}

// VerifySignature checks the signature of a precommit against its authority id
func (sp *SignedPrecommit) VerifySignature(round, setID uint64) bool {
	pk, err := crypto.BytesToPublicKey(sp.ID)
	if err != nil {
		return false
	}
	h := PrecommitHash(&sp.Precommit, round, setID)
	return pk.Verify(h[:], sp.Signature)
}

// NewJustification creates a justification of the header signed by every given authority key
func NewJustification(h *Header, round, setID uint64, keys []crypto.PrivateKey) (*Justification, error) {
	target := Precommit{
		TargetHash:   h.Hash(),
		TargetNumber: h.Number,
	}
	j := Justification{
		Round: round,
		SetID: setID,
		Commit: Commit{
			TargetHash:   target.TargetHash,
			TargetNumber: target.TargetNumber,
		},
	}
	for _, sk := range keys {
		sp, err := SignPrecommit(sk, target, round, setID)
		if err != nil {
			return nil, err
		}
		j.Commit.Precommits = append(j.Commit.Precommits, sp)
	}
	return &j, nil
}

// Serialize returns the rlp encoded justification
func (j *Justification) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(j)
}

// Deserialize decodes a justification
func (j *Justification) Deserialize(b []byte) error {
	if err := rlp.DecodeBytes(b, j); err != nil {
		return errors.Wrap(err, "failed to decode justification")
	}
	return nil
}
