// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import (
	"context"

	"github.com/iotexproject/iotex-bridge/action"
)

type (
	// Protocol defines the protocol interfaces atop the bridge chain
	Protocol interface {
		// Name returns the unique name of the protocol
		Name() string
		ActionHandler
	}

	// ActionHandler applies an action to the state. It returns a nil receipt and no error if the
	// action is not handled by the protocol
	ActionHandler interface {
		Handle(context.Context, action.Action, StateManager) (*action.Receipt, error)
	}

	// ActionValidator validates an action before it is handled
	ActionValidator interface {
		Validate(context.Context, action.Action, StateReader) error
	}

	// PostActionHandler is called after an action is handled successfully
	PostActionHandler interface {
		PostHandle(context.Context, StateManager) error
	}

	// GenesisStateCreator creates the initial state of a protocol
	GenesisStateCreator interface {
		CreateGenesisStates(context.Context, StateManager) error
	}
)
