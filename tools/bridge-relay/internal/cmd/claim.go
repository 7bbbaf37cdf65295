// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/config"
	"github.com/iotexproject/iotex-bridge/relay/client"
)

var _claimFlags = struct {
	chain string
	lane  string
}{}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the relayer rewards of a lane",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lane, err := action.LaneIDFromString(_claimFlags.lane)
		if err != nil {
			return err
		}
		cfg, r, err := loadRelay()
		if err != nil {
			return err
		}
		var submitter *client.Submitter
		switch _claimFlags.chain {
		case "a", cfg.Relay.ChainA.Name:
			submitter = r.SubmitterA()
		case "b", cfg.Relay.ChainB.Name:
			submitter = r.SubmitterB()
		default:
			return errors.Wrapf(config.ErrInvalidCfg, "unknown chain %s", _claimFlags.chain)
		}
		ctx := cmd.Context()
		rewards, err := submitter.Client().Rewards(ctx, submitter.Address(), lane)
		if err != nil {
			return err
		}
		if rewards.IsZero() {
			fmt.Fprintln(cmd.OutOrStdout(), "no rewards to claim")
			return nil
		}
		receipt, err := submitter.Submit(ctx, &action.ClaimRewards{Lane: lane})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "claimed %s on %s at height %d\n", rewards.Dec(), submitter.Client().Name(), receipt.BlockHeight)
		return nil
	},
}

func init() {
	flag := claimCmd.Flags()
	flag.StringVar(&_claimFlags.chain, "chain", "a", "chain to claim on, a or b or the chain name")
	flag.StringVar(&_claimFlags.lane, "lane", "", "lane id in hex")
	rootCmd.AddCommand(claimCmd)
}
