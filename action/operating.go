// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/pkg/errors"
)

// SetOperatingMode halts or resumes a module
type SetOperatingMode struct {
	Module string
	Halted bool
}

// Type returns the action type
func (act *SetOperatingMode) Type() uint32 { return SetOperatingModeType }

// SanityCheck requires a module name
func (act *SetOperatingMode) SanityCheck() error {
	if act.Module == "" {
		return errors.Wrap(ErrInvalidAction, "empty module name")
	}
	return nil
}
