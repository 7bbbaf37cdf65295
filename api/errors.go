// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-bridge/action/protocol"
	"github.com/iotexproject/iotex-bridge/blockchain/blockdao"
	"github.com/iotexproject/iotex-bridge/state"
)

// json-rpc error codes, https://www.jsonrpc.org/specification#error_object
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

var (
	// ErrInvalidParams indicates the params of a request are malformed
	ErrInvalidParams = errors.New("invalid params")
	// ErrMethodNotFound indicates the method is not served
	ErrMethodNotFound = errors.New("method not found")

	// errors crossing the wire keep their identity through these codes
	_errCodes = []struct {
		code int
		err  error
	}{
		{-32001, protocol.ErrStale},
		{-32002, protocol.ErrInvalidJustification},
		{-32003, protocol.ErrProofVerificationFailed},
		{-32004, protocol.ErrNonceOutOfOrder},
		{-32005, protocol.ErrAlreadyDelivered},
		{-32006, protocol.ErrUnknownHeader},
		{-32007, protocol.ErrPaymentFailed},
		{-32008, protocol.ErrAlreadyInitialized},
		{-32009, protocol.ErrNotInitialized},
		{-32010, protocol.ErrHalted},
		{-32011, protocol.ErrUnauthorized},
		{-32012, protocol.ErrTooManyUnconfirmedMessages},
		{-32013, protocol.ErrTooManyUnrewardedRelayers},
		{-32014, protocol.ErrMessageTooLarge},
		{-32015, protocol.ErrTooManyMessages},
		{-32016, protocol.ErrInsufficientBalance},
		{-32017, protocol.ErrInvalidNonce},
		{-32018, blockdao.ErrNotExist},
		{-32019, state.ErrStateNotExist},
		{CodeInvalidParams, ErrInvalidParams},
		{CodeMethodNotFound, ErrMethodNotFound},
	}
)

// ErrorCode returns the json-rpc error code of err
func ErrorCode(err error) int {
	cause := errors.Cause(err)
	for _, e := range _errCodes {
		if e.err == cause {
			return e.code
		}
	}
	return CodeInternalError
}

// ErrorFromCode rebuilds the error of a json-rpc error object
func ErrorFromCode(code int, message string) error {
	for _, e := range _errCodes {
		if e.code == code {
			return errors.Wrap(e.err, message)
		}
	}
	return errors.Errorf("json-rpc error %d: %s", code, message)
}
