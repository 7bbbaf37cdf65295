// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/test/mock/mock_lifecycle"
)

func TestLifecycle(t *testing.T) {
	r := require.New(t)
	ctrl := gomock.NewController(t)

	ctx := context.Background()
	m := mock_lifecycle.NewMockStartStopper(ctrl)
	m.EXPECT().Start(gomock.Any()).Return(nil).Times(1)
	m.EXPECT().Stop(gomock.Any()).Return(nil).Times(1)

	var lc Lifecycle
	lc.Add(m)
	r.NoError(lc.OnStart(ctx))
	r.NoError(lc.OnStop(ctx))
}

func TestLifecycleWithError(t *testing.T) {
	r := require.New(t)
	ctrl := gomock.NewController(t)

	ctx := context.Background()
	m1 := mock_lifecycle.NewMockStartStopper(ctrl)
	m2 := mock_lifecycle.NewMockStartStopper(ctrl)
	err := errors.New("error")
	gomock.InOrder(
		m1.EXPECT().Start(gomock.Any()).Return(nil),
		m2.EXPECT().Start(gomock.Any()).Return(nil),
		m2.EXPECT().Stop(gomock.Any()).Return(err),
		m1.EXPECT().Stop(gomock.Any()).Return(nil),
	)

	var lc Lifecycle
	lc.AddModels(m1, m2)
	r.NoError(lc.OnStart(ctx))
	r.EqualError(lc.OnStop(ctx), err.Error())
}
