// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package race

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextRange(t *testing.T) {
	for _, test := range []struct {
		name       string
		strategy   Strategy
		source     Nonces
		target     Nonces
		submitted  uint64
		begin, end uint64
		ok         bool
	}{
		{"unbounded", Strategy{}, Nonces{Latest: 10}, Nonces{Latest: 3}, 0, 4, 10, true},
		{"nothing to relay", Strategy{}, Nonces{Latest: 3}, Nonces{Latest: 3}, 0, 0, 0, false},
		{"after submitted", Strategy{}, Nonces{Latest: 10}, Nonces{Latest: 3}, 6, 7, 10, true},
		{"all submitted", Strategy{}, Nonces{Latest: 10}, Nonces{Latest: 3}, 10, 0, 0, false},
		{"stale submitted", Strategy{}, Nonces{Latest: 10}, Nonces{Latest: 8}, 5, 9, 10, true},
		{"in flight", Strategy{MaxMessagesInFlight: 2}, Nonces{Latest: 10}, Nonces{Latest: 3}, 0, 4, 5, true},
		{"in flight full", Strategy{MaxMessagesInFlight: 2}, Nonces{Latest: 10}, Nonces{Latest: 3}, 5, 0, 0, false},
		{"unconfirmed", Strategy{MaxUnconfirmedMessages: 4}, Nonces{Latest: 10}, Nonces{Latest: 3, Confirmed: 1}, 0, 4, 5, true},
		{"unconfirmed full", Strategy{MaxUnconfirmedMessages: 2}, Nonces{Latest: 10}, Nonces{Latest: 3, Confirmed: 1}, 0, 0, 0, false},
		{"batch", Strategy{MaxMessagesInBatch: 3}, Nonces{Latest: 10}, Nonces{Latest: 3}, 0, 4, 6, true},
		{"tightest wins", Strategy{MaxMessagesInFlight: 5, MaxUnconfirmedMessages: 6, MaxMessagesInBatch: 4}, Nonces{Latest: 10}, Nonces{Latest: 3, Confirmed: 0}, 0, 4, 6, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			begin, end, ok := test.strategy.NextRange(&test.source, &test.target, test.submitted)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.begin, begin)
			require.Equal(t, test.end, end)
		})
	}
}

func TestFitWeight(t *testing.T) {
	r := require.New(t)
	s := Strategy{MaxBatchWeight: 10}
	r.Equal(uint64(6), s.FitWeight(4, []uint64{3, 3, 4, 1}))
	r.Equal(uint64(7), s.FitWeight(4, []uint64{1, 2, 3, 4}))
	// the first message fits even when it is too heavy
	r.Equal(uint64(4), s.FitWeight(4, []uint64{20, 1}))
	r.Equal(uint64(4), s.FitWeight(4, []uint64{1, ^uint64(0)}))
	r.Equal(uint64(3), s.FitWeight(4, nil))
	r.Equal(uint64(7), Strategy{}.FitWeight(4, []uint64{100, 100, 100, 100}))
}
