// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import "github.com/pkg/errors"

// errors shared by the bridge protocols. A rejected action leaves the state unchanged
var (
	ErrStale                      = errors.New("stale submission")
	ErrInvalidJustification       = errors.New("invalid justification")
	ErrProofVerificationFailed    = errors.New("storage proof verification failed")
	ErrNonceOutOfOrder            = errors.New("nonce out of order")
	ErrAlreadyDelivered           = errors.New("messages already delivered")
	ErrUnknownHeader              = errors.New("unknown header")
	ErrPaymentFailed              = errors.New("payment failed")
	ErrAlreadyInitialized         = errors.New("already initialized")
	ErrNotInitialized             = errors.New("not initialized")
	ErrHalted                     = errors.New("module is halted")
	ErrUnauthorized               = errors.New("caller is not authorized")
	ErrTooManyUnconfirmedMessages = errors.New("too many unconfirmed messages")
	ErrTooManyUnrewardedRelayers  = errors.New("too many unrewarded relayer entries")
	ErrMessageTooLarge            = errors.New("message is too large")
	ErrTooManyMessages            = errors.New("too many messages in one delivery")
	ErrInsufficientBalance        = errors.New("insufficient balance")
	ErrInvalidNonce               = errors.New("invalid account nonce")
)
