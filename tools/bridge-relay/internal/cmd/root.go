// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/relay"
)

var _configPaths []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bridge-relay",
	Short: "Bridge relayer",
	Long:  `bridge-relay relays finalized headers, messages and delivery confirmations between two bridge chains.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRelay() (config.Config, *relay.Relay, error) {
	cfg, err := config.New(_configPaths, config.RelayValidates...)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := log.InitLoggers(cfg.Log, cfg.SubLogs); err != nil {
		return config.Config{}, nil, errors.Wrap(err, "failed to init loggers")
	}
	chainA, chainB := relay.NewClients(cfg.Relay)
	return cfg, relay.New(cfg.Relay, chainA, chainB), nil
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&_configPaths, "config", nil, "config files, later files override earlier ones")
}
