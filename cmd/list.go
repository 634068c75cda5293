package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/ajer/records"
)

var OnlyMine bool

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List minted names, fuzzy matched against pattern",
	Long:  ``,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		if !e.client.Ready() {
			e.ui.Warn("Your wallet is on %s, names are only listed on %s. Run `ajer network switch`.",
				e.client.Network(), e.target.GetDisplayName())
			return nil
		}
		list := e.client.Records()
		if OnlyMine {
			list = records.OwnedBy(list, e.client.Account())
		}
		if len(args) > 0 {
			list = records.Filter(list, args[0])
		}
		showRecords(e.ui, list, e.client.Account())
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&OnlyMine, "mine", "m", false, "only names owned by the connected account")
	rootCmd.AddCommand(listCmd)
}
