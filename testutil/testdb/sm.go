// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testdb

import (
	"github.com/pkg/errors"
	"go.uber.org/mock/gomock"

	"github.com/iotexproject/iotex-bridge/state"
	"github.com/iotexproject/iotex-bridge/test/mock/mock_chainmanager"
)

// NewMockStateManager returns a state manager mock backed by an in-memory map with snapshots
func NewMockStateManager(ctrl *gomock.Controller) *mock_chainmanager.MockStateManager {
	return NewMockStateManagerAtHeight(ctrl, 1)
}

// NewMockStateManagerAtHeight returns a state manager mock reporting the height
func NewMockStateManagerAtHeight(ctrl *gomock.Controller, height uint64) *mock_chainmanager.MockStateManager {
	sm := mock_chainmanager.NewMockStateManager(ctrl)
	kv := map[string][]byte{}
	snapshots := map[int]map[string][]byte{}
	sm.EXPECT().Height().Return(height).AnyTimes()
	sm.EXPECT().State(gomock.Any(), gomock.Any()).DoAndReturn(
		func(key []byte, s interface{}) error {
			val, ok := kv[string(key)]
			if !ok {
				return errors.Wrapf(state.ErrStateNotExist, "key = %x", key)
			}
			return state.Deserialize(s, val)
		},
	).AnyTimes()
	sm.EXPECT().PutState(gomock.Any(), gomock.Any()).DoAndReturn(
		func(key []byte, s interface{}) error {
			ss, err := state.Serialize(s)
			if err != nil {
				return err
			}
			kv[string(key)] = ss
			return nil
		},
	).AnyTimes()
	sm.EXPECT().DelState(gomock.Any()).DoAndReturn(
		func(key []byte) error {
			delete(kv, string(key))
			return nil
		},
	).AnyTimes()
	sm.EXPECT().Snapshot().DoAndReturn(
		func() int {
			id := len(snapshots) + 1
			copied := make(map[string][]byte, len(kv))
			for k, v := range kv {
				copied[k] = v
			}
			snapshots[id] = copied
			return id
		},
	).AnyTimes()
	sm.EXPECT().Revert(gomock.Any()).DoAndReturn(
		func(id int) error {
			s, ok := snapshots[id]
			if !ok {
				return errors.Errorf("invalid snapshot %d", id)
			}
			for k := range kv {
				delete(kv, k)
			}
			for k, v := range s {
				kv[k] = v
			}
			return nil
		},
	).AnyTimes()
	return sm
}
