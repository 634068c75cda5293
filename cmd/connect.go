package cmd

import (
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect your wallet and check it is on the registry's network",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.ensureConnected(ctx); err != nil {
			return err
		}
		e.showNetwork()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
