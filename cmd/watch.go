package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/ajer/app"
	"github.com/tranvictor/ajer/records"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show minted names and follow wallet network changes until interrupted",
	Long: `Watch keeps the list of minted names on screen. Every time the wallet
changes network, everything is reloaded from scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		updates := make(chan []records.Record, 1)
		e, err := setup(ctx, app.WithOnRefresh(func(list []records.Record) {
			// only the latest list matters
			select {
			case <-updates:
			default:
			}
			updates <- list
		}))
		if err != nil {
			return err
		}
		defer e.close()

		e.showNetwork()
		if !e.client.Ready() {
			e.ui.Warn("Waiting for the wallet to switch to %s.", e.target.GetDisplayName())
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case list := <-updates:
				e.ui.Section("Minted names")
				showRecords(e.ui, list, e.client.Account())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
