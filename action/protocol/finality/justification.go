// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package finality

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/blockchain/block"
)

// RequiredPrecommits returns the number of precommits finalizing a block with n authorities
func RequiredPrecommits(n int) int {
	return n*2/3 + 1
}

// VerifyJustification checks that the justification finalizes the header by the authority set
func VerifyJustification(h *block.Header, j *block.Justification, set *AuthoritySet) error {
	target := h.Hash()
	if j.Commit.TargetHash != target || j.Commit.TargetNumber != h.Number {
		return errors.Wrapf(protocol.ErrInvalidJustification, "commit target %x doesn't match header %x", j.Commit.TargetHash, target)
	}
	if j.SetID != set.SetID {
		return errors.Wrapf(protocol.ErrInvalidJustification, "set id %d, expecting %d", j.SetID, set.SetID)
	}
	authorities := make(map[string]struct{}, len(set.Authorities))
	for _, a := range set.Authorities {
		authorities[string(a)] = struct{}{}
	}
	ancestry := make(map[hash.Hash256]*block.Header, len(j.VotesAncestries))
	for i := range j.VotesAncestries {
		a := &j.VotesAncestries[i]
		ah := a.Hash()
		if _, ok := ancestry[ah]; ok {
			return errors.Wrapf(protocol.ErrInvalidJustification, "duplicate ancestry header %x", ah)
		}
		ancestry[ah] = a
	}

	visited := make(map[hash.Hash256]struct{}, len(ancestry))
	signers := make(map[string]struct{}, len(j.Commit.Precommits))
	for i := range j.Commit.Precommits {
		sp := &j.Commit.Precommits[i]
		id := string(sp.ID)
		if _, ok := authorities[id]; !ok {
			return errors.Wrapf(protocol.ErrInvalidJustification, "precommit %d is signed by an unknown authority", i)
		}
		if _, ok := signers[id]; ok {
			return errors.Wrapf(protocol.ErrInvalidJustification, "duplicate precommit %d", i)
		}
		if !sp.VerifySignature(j.Round, j.SetID) {
			return errors.Wrapf(protocol.ErrInvalidJustification, "invalid signature of precommit %d", i)
		}
		if err := checkAncestry(&sp.Precommit, target, h.Number, ancestry, visited); err != nil {
			return errors.Wrapf(err, "precommit %d", i)
		}
		signers[id] = struct{}{}
	}
	if len(visited) != len(ancestry) {
		return errors.Wrapf(protocol.ErrInvalidJustification, "%d unused ancestry headers", len(ancestry)-len(visited))
	}
	if required := RequiredPrecommits(len(set.Authorities)); len(signers) < required {
		return errors.Wrapf(protocol.ErrInvalidJustification, "%d precommits, %d required", len(signers), required)
	}
	return nil
}

// checkAncestry walks the vote ancestry from the precommit target back to the commit target
func checkAncestry(
	p *block.Precommit,
	target hash.Hash256,
	number uint64,
	ancestry map[hash.Hash256]*block.Header,
	visited map[hash.Hash256]struct{},
) error {
	cur := p.TargetHash
	if cur != target {
		a, ok := ancestry[cur]
		if !ok || a.Number != p.TargetNumber {
			return errors.Wrapf(protocol.ErrInvalidJustification, "precommit target %x is not in the ancestry", cur)
		}
	}
	for steps := 0; cur != target; steps++ {
		a, ok := ancestry[cur]
		if !ok || a.Number <= number || steps > len(ancestry) {
			return errors.Wrapf(protocol.ErrInvalidJustification, "precommit target %x doesn't descend from %x", p.TargetHash, target)
		}
		visited[cur] = struct{}{}
		cur = a.ParentHash
	}
	return nil
}
