// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.


package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tranvictor/ajer/config"
	"github.com/tranvictor/ajer/networks"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ajer",
	Short: "Mint and manage .ajer names from the command line",
	Long: fmt.Sprintf(`Ajer is a command line client for the .ajer name service, a registry
contract mapping short names to a free text record.

With ajer you can:

	1. Connect a wallet, either a local keystore or a wallet daemon
	started with "ajer wallet serve".

	2. Mint a name. The price depends on its length: 3 characters cost
	the most, 5 or more the least.

	3. Set the record of a name you own, and list every minted name.

The registry lives on %s (chain id %d). Ajer keeps your wallet on that
network and offers to switch (or add) it when it is somewhere else.
You can add your custom node by setting the following env var:
	%s

Settings are read from %s, see "ajer config init".`,
		networks.DefaultTarget.GetDisplayName(),
		networks.DefaultTarget.GetChainID(),
		networks.DefaultTarget.GetNodeVariableName(),
		config.DefaultPath(),
	),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVar(&config.ConfigFile, "config", "", "config file, defaults to ~/.ajer/config.toml")
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "", "network the registry is on, by name or chain id")
	rootCmd.PersistentFlags().StringVar(&config.Contract, "contract", "", "registry contract address")
	rootCmd.PersistentFlags().StringVar(&config.Keystore, "keystore", "", "keystore file of the local wallet")
	rootCmd.PersistentFlags().StringVarP(&config.WalletURL, "wallet-url", "w", "", "websocket url of a wallet started with \"ajer wallet serve\"")
	rootCmd.PersistentFlags().StringVar(&config.LogMode, "log", "", "log mode: off, development or production")
	rootCmd.PersistentFlags().BoolVarP(&config.AutoApprove, "yes", "y", false, "approve every wallet prompt without asking")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
