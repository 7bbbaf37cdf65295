// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Usage:
//
//	bridge-node start --config=./node.yaml
//	bridge-node keygen
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/iotexproject/iotex-bridge/tools/bridge-node/internal/cmd"
)

func main() {
	cmd.Execute()
}
