// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package lifecycle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestReady(t *testing.T) {
	r := require.New(t)

	ready := Readiness{}
	r.False(ready.IsReady())
	r.Equal(ErrWrongState, ready.TurnOff())

	// ready after turn on
	r.NoError(ready.TurnOn())
	r.True(ready.IsReady())
	r.Equal(ErrWrongState, ready.TurnOn()) // cannot turn on again

	// not ready after turn off
	r.NoError(ready.TurnOff())
	r.False(ready.IsReady())
	r.Equal(ErrWrongState, ready.TurnOff()) // cannot turn off again
}

func TestReadyConcurrent(t *testing.T) {
	r := require.New(t)

	var (
		ready Readiness
		wg    sync.WaitGroup
		won   atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ready.TurnOn() == nil {
				won.Inc()
			}
		}()
	}
	wg.Wait()
	r.True(ready.IsReady())
	r.EqualValues(1, won.Load())
}
