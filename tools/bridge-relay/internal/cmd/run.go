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

	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/probe"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the relay until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, r, err := loadRelay()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		probeSvr := probe.New(cfg.Probe.Port, probe.WithReadinessCheck("relay", r.Ready))
		if err := probeSvr.Start(ctx); err != nil {
			return errors.Wrap(err, "failed to start the probe server")
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := probeSvr.Stop(stopCtx); err != nil {
				log.L().Error("Failed to stop the probe server.", zap.Error(err))
			}
		}()
		probeSvr.Ready()
		log.L().Info("Relay started.",
			zap.String("chainA", cfg.Relay.ChainA.Name),
			zap.String("chainB", cfg.Relay.ChainB.Name),
			zap.Int("components", len(r.Runners())))
		if err := r.Run(ctx); err != nil {
			log.L().Error("Relay failed.", zap.Error(err))
			return err
		}
		log.L().Info("Relay stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
