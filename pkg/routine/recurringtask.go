// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package routine

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
)

var _ lifecycle.StartStopper = (*RecurringTask)(nil)

// Task is the function being executed by a routine
type Task func()

// RecurringTaskOption is option to RecurringTask.
type RecurringTaskOption func(*RecurringTask)

// WithClock sets the clock driving the task, mostly for testing
func WithClock(c clock.Clock) RecurringTaskOption {
	return func(t *RecurringTask) {
		t.clock = c
	}
}

// RunImmediately runs the task once on start instead of waiting for the first tick
func RunImmediately() RecurringTaskOption {
	return func(t *RecurringTask) {
		t.immediate = true
	}
}

// RecurringTask represents a recurring task
type RecurringTask struct {
	lifecycle.Readiness
	t         Task
	interval  time.Duration
	clock     clock.Clock
	immediate bool
	ticker    *clock.Ticker
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewRecurringTask creates an instance of RecurringTask
func NewRecurringTask(t Task, i time.Duration, ops ...RecurringTaskOption) *RecurringTask {
	rt := &RecurringTask{
		t:        t,
		interval: i,
		clock:    clock.New(),
	}
	for _, op := range ops {
		op(rt)
	}
	return rt
}

// Start starts the timer
func (t *RecurringTask) Start(_ context.Context) error {
	if err := t.TurnOn(); err != nil {
		return err
	}
	t.ticker = t.clock.Ticker(t.interval)
	t.done = make(chan struct{})
	ready := make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		close(ready)
		if t.immediate {
			t.t()
		}
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				t.t()
			}
		}
	}()
	<-ready
	return nil
}

// Stop stops the timer and waits for the running task to return
func (t *RecurringTask) Stop(_ context.Context) error {
	if err := t.TurnOff(); err != nil {
		// never started
		return nil
	}
	t.ticker.Stop()
	close(t.done)
	t.wg.Wait()
	return nil
}
