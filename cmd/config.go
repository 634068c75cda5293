package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tranvictor/ajer/config"
	"github.com/tranvictor/ajer/ui"
)

var ConfigForce bool

func configPath() string {
	if config.ConfigFile != "" {
		return config.ConfigFile
	}
	return config.DefaultPath()
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ajer config file",
	Long:  ``,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings and the given flags",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		path := configPath()
		if _, err := os.Stat(path); err == nil && !ConfigForce {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg := config.Default()
		cfg.ApplyFlags()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		u.Success("Config written to %s.", path)
		return nil
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the settings in effect",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		cfg, _, err := loadConfig(u)
		if err != nil {
			return err
		}
		u.KeyValue([][2]string{
			{"File", configPath()},
			{"Network", cfg.Network},
			{"Contract", cfg.Contract},
			{"Keystore", cfg.Keystore},
			{"Wallet url", cfg.WalletURL},
			{"Wallet chain", cfg.WalletChain},
			{"Wallet chain dir", cfg.WalletChainDir},
			{"Network dir", cfg.NetworkDir},
			{"Prices", fmt.Sprintf("%s / %s / %s", cfg.Prices.Short, cfg.Prices.Medium, cfg.Prices.Long)},
			{"Refresh delay", cfg.RefreshDelay.String()},
			{"Poll interval", cfg.PollInterval.String()},
			{"Read concurrency", fmt.Sprintf("%d", cfg.ReadConcurrency)},
			{"Log", cfg.Log},
		})
		return nil
	},
}

func init() {
	initConfigCmd.Flags().BoolVarP(&ConfigForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(initConfigCmd)
	configCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(configCmd)
}
