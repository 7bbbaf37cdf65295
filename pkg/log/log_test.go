// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggers(t *testing.T) {
	r := require.New(t)
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.OutputPaths = []string{"stdout"}
	r.NoError(InitLoggers(GlobalConfig{Zap: &zapCfg}, map[string]GlobalConfig{
		"relay": {},
	}))
	r.NotNil(L())
	r.NotNil(S())
	r.NotNil(Logger("relay"))
	// unknown names fall back to the global logger
	r.NotNil(Logger("unknown"))
	r.Equal("hex", Hex("hex", []byte{0x01}).Key)
	r.Equal("01", Hex("hex", []byte{0x01}).String)
}
