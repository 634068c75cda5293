package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/config"
	"github.com/tranvictor/ajer/records"
	"github.com/tranvictor/ajer/ui"
)

var mintCmd = &cobra.Command{
	Use:   "mint <name> [record]",
	Short: "Mint a .ajer name and set its record",
	Long: `Mint registers <name> and then sets its record, in two transactions.
The price depends on the length of the name, see "ajer mint --prices".
If the record can't be set after the name was registered, retry with
"ajer record <name> <record>".`,
	Args: func(cmd *cobra.Command, args []string) error {
		if ShowPrices {
			return nil
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if ShowPrices {
			u := ui.NewTerminalUI()
			cfg, _, err := loadConfig(u)
			if err != nil {
				return err
			}
			target, pricing, err := targetAndPricing(cfg)
			if err != nil {
				return err
			}
			showPrices(u, pricing, target)
			return nil
		}

		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		name, record := args[0], ""
		if len(args) > 1 {
			record = args[1]
		}
		price, _, err := e.client.Pricing().Price(name)
		if err != nil {
			e.ui.Critical("%s", err)
			return err
		}
		if err := e.ensureConnected(ctx); err != nil {
			return err
		}

		e.ui.KeyValue([][2]string{
			{"Name", records.Record{Name: name}.DisplayName()},
			{"Record", record},
			{"Price", fmt.Sprintf("%s %s", ajercommon.BigToFloatString(price, e.target.GetNativeTokenDecimal()), e.target.GetNativeTokenSymbol())},
		})
		if !config.AutoApprove && !e.ui.Confirm("Mint it?", true) {
			return nil
		}
		_, err = e.client.Mint(ctx, name, record)
		return err
	},
}

var ShowPrices bool

func init() {
	mintCmd.Flags().BoolVar(&ShowPrices, "prices", false, "only show the price of each name length")
	rootCmd.AddCommand(mintCmd)
}
