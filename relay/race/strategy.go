// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package race

// Strategy bounds the nonce ranges a race relays. A zero limit is unbounded
type Strategy struct {
	// MaxMessagesInFlight bounds the nonces submitted but not yet observed on the target
	MaxMessagesInFlight uint64
	// MaxUnconfirmedMessages bounds the nonces delivered on the target but not yet confirmed
	MaxUnconfirmedMessages uint64
	// MaxMessagesInBatch bounds the nonces of one proof
	MaxMessagesInBatch uint64
	// MaxBatchWeight bounds the total weight of one proof
	MaxBatchWeight uint64
}

// NextRange returns the next contiguous range after the target's latest nonce and the submitted
// nonce, the largest one fitting the nonce limits
func (s Strategy) NextRange(source, target *Nonces, submitted uint64) (uint64, uint64, bool) {
	begin := target.Latest
	if submitted > begin {
		begin = submitted
	}
	begin++
	end := source.Latest
	if s.MaxMessagesInFlight > 0 {
		end = minUint64(end, target.Latest+s.MaxMessagesInFlight)
	}
	if s.MaxUnconfirmedMessages > 0 {
		end = minUint64(end, target.Confirmed+s.MaxUnconfirmedMessages)
	}
	if s.MaxMessagesInBatch > 0 {
		end = minUint64(end, begin+s.MaxMessagesInBatch-1)
	}
	if end < begin {
		return 0, 0, false
	}
	return begin, end, true
}

// FitWeight returns the end of the longest prefix of the range starting at begin whose weight
// fits the limit. The first message always fits
func (s Strategy) FitWeight(begin uint64, weights []uint64) uint64 {
	if len(weights) == 0 {
		return begin - 1
	}
	if s.MaxBatchWeight == 0 {
		return begin + uint64(len(weights)) - 1
	}
	total := weights[0]
	end := begin
	for _, w := range weights[1:] {
		if total+w > s.MaxBatchWeight || total+w < total {
			break
		}
		total += w
		end++
	}
	return end
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
