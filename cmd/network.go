package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/ui"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

var statusNetworkCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which network the wallet is on",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()
		e.showNetwork()
		return nil
	},
}

var switchNetworkCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the wallet to the registry's network, adding it to the wallet if needed",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		if e.client.Ready() {
			e.ui.Success("Wallet is already on %s.", e.target.GetDisplayName())
			return nil
		}
		if err := e.client.SwitchNetwork(ctx); err != nil {
			return err
		}
		e.showNetwork()
		return nil
	},
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the known networks list locally",
	Long: `--config flag is supported to pass a new network config json filepath OR pass a json string. The json should be in the following format:
	{
		"name": "network_name",
		"display_name": "Network Name",
		"alternative_names": ["alternative_name_1", "alternative_name_2"],
		"chain_id": 1,
		"native_token_name": "Ether",
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 12,
		"testnet": false,
		"node_variable_name": "AJER_NODE_1",
		"default_nodes": {
			"node_name_1": "node_url_1",
			"node_name_2": "node_url_2"
		},
		"block_explorer_url": "https://etherscan.io/"
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		cfg, _, err := loadConfig(u)
		if err != nil {
			return err
		}

		var content []byte
		raw := strings.TrimSpace(NetworkConfig)
		switch {
		case raw == "":
			return fmt.Errorf("pass the network config with --config")
		case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
			content = []byte(raw)
		default:
			// a path to a json file
			content, err = os.ReadFile(raw)
			if err != nil {
				return fmt.Errorf("couldn't read the provided json file: %w", err)
			}
		}
		newNetwork, err := networks.NewNetworkFromJSON(content)
		if err != nil {
			return fmt.Errorf("the provided json is not a valid network config: %w", err)
		}

		allNames := append([]string{newNetwork.GetName()}, newNetwork.GetAlternativeNames()...)
		for _, name := range allNames {
			if _, err := networks.GetNetwork(name); err == nil {
				if !NetworkForce {
					return fmt.Errorf("network with name %s already exists, use --force to replace it", name)
				}
				u.Warn("Network with name %s already exists. It will be replaced.", name)
			}
		}
		if err := networks.SaveNetwork(cfg.NetworkDir, newNetwork); err != nil {
			return err
		}
		u.Success("Network %s with chain ID %d added and saved to %s.", newNetwork.GetName(), newNetwork.GetChainID(), cfg.NetworkDir)
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of the known networks",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		cfg, _, err := loadConfig(u)
		if err != nil {
			return err
		}
		target, err := networks.Resolve(cfg.Network)
		if err != nil {
			return err
		}

		rows := [][]string{}
		for _, n := range networks.GetSupportedNetworks() {
			nodes, err := networks.GetNodes(n)
			if err != nil {
				u.Error("%s", err)
				continue
			}
			keys := make([]string, 0, len(nodes))
			for key := range nodes {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			urls := make([]string, 0, len(keys))
			for _, key := range keys {
				urls = append(urls, fmt.Sprintf("%s: %s", key, nodes[key]))
			}
			name := n.GetName()
			if n.GetChainID() == target.GetChainID() {
				name = u.Style(ui.StyledText{Text: name + " (registry)", Severity: ui.SeveritySuccess})
			}
			rows = append(rows, []string{name, fmt.Sprintf("%d", n.GetChainID()), n.GetDisplayName(), strings.Join(urls, ", ")})
		}
		u.Table([]string{"Name", "Chain ID", "Display name", "RPC nodes"}, rows)

		u.Info("")
		u.Info("To add more networks: ajer network add --config <json>")
		u.Info("To delete a network, delete its json file in %s.", cfg.NetworkDir)
		return nil
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Check and switch the wallet's network, manage known networks",
	Long:  ``,
}

func init() {
	addNetworkCmd.PersistentFlags().StringVarP(&NetworkConfig, "config", "c", "", "Path to the network config json file, or the json itself")
	addNetworkCmd.PersistentFlags().BoolVarP(&NetworkForce, "force", "f", false, "Force adding the network even if it already exists")

	networkCmd.AddCommand(statusNetworkCmd)
	networkCmd.AddCommand(switchNetworkCmd)
	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
