// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package httputil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	var handler http.Handler
	addr := "myAddress"

	result := NewServer(addr, handler, ReadHeaderTimeout(5*time.Second))
	require.Equal(t, 5*time.Second, result.ReadHeaderTimeout)
	require.Equal(t, DefaultServerConfig.ReadTimeout, result.ReadTimeout)
	require.Equal(t, DefaultServerConfig.WriteTimeout, result.WriteTimeout)
	require.Equal(t, DefaultServerConfig.IdleTimeout, result.IdleTimeout)
	require.Equal(t, addr, result.Addr)
}

func TestLimitListener(t *testing.T) {
	_, err := LimitListener("myAddress")
	require.Error(t, err)

	ln, err := LimitListener("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}
