// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/iotex-address/address"
	"github.com/spf13/cobra"
)

var _keyCount int

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate authority or relayer keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for i := 0; i < _keyCount; i++ {
			sk, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			addr, err := address.FromBytes(sk.PublicKey().Hash())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "privateKey: %s\npublicKey: %s\naddress: %s\n\n",
				sk.HexString(), sk.PublicKey().HexString(), addr.String())
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().IntVarP(&_keyCount, "count", "n", 1, "number of keys")
	rootCmd.AddCommand(keygenCmd)
}
