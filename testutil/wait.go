// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testutil

import (
	"time"

	"github.com/pkg/errors"
)

// CheckCondition defines a func type that checks whether a test condition is satisfied
type CheckCondition func() (bool, error)

// WaitUntil waits for the condition to be satisfied, polling at the given interval
func WaitUntil(interval, timeout time.Duration, f CheckCondition) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.After(timeout)
	for {
		ok, err := f()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-deadline:
			return errors.New("timeout when waiting for the condition")
		case <-ticker.C:
		}
	}
}
