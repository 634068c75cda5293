package cmd

import (
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <name> <record>",
	Short: "Set the record of a name you own",
	Long:  ``,
	Args:  cobra.ExactArgs(2),
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
		_, err = e.client.UpdateRecord(ctx, args[0], args[1])
		return err
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
