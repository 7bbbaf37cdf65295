// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/api"
	"github.com/iotexproject/iotex-bridge/chainservice"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/pkg/lifecycle"
	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/probe"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bridge chain node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.New(_configPaths)
		if err != nil {
			return err
		}
		if err := log.InitLoggers(cfg.Log, cfg.SubLogs); err != nil {
			return errors.Wrap(err, "failed to init loggers")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startNode(ctx, cfg)
	},
}

func startNode(ctx context.Context, cfg config.Config) error {
	cs, err := chainservice.New(cfg)
	if err != nil {
		return err
	}
	probeSvr := probe.New(cfg.Probe.Port)
	var lc lifecycle.Lifecycle
	lc.AddModels(cs, api.NewServer(cs, cfg.API), probeSvr)
	if err := lc.OnStart(ctx); err != nil {
		return errors.Wrap(err, "failed to start the node")
	}
	probeSvr.Ready()
	log.L().Info("Bridge node started.",
		zap.Uint32("chainID", cs.ChainID()),
		zap.Uint64("height", cs.Height()),
		zap.Int("apiPort", cfg.API.Port))

	<-ctx.Done()
	probeSvr.NotReady()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := lc.OnStop(stopCtx); err != nil {
		log.L().Error("Failed to stop the node.", zap.Error(err))
		return err
	}
	log.L().Info("Bridge node stopped.")
	return nil
}

func init() {
	rootCmd.AddCommand(startCmd)
}
