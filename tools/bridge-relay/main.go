// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Usage:
//
//	bridge-relay init --config=./relay.yaml
//	bridge-relay run --config=./relay.yaml
//	bridge-relay claim --config=./relay.yaml --chain=a --lane=00000001
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/iotexproject/iotex-bridge/tools/bridge-relay/internal/cmd"
)

func main() {
	cmd.Execute()
}
