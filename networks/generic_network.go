package networks

import (
	"encoding/json"
	"time"
)

type GenericNetworkConfig struct {
	Name               string            `json:"name"`
	DisplayName        string            `json:"display_name"`
	AlternativeNames   []string          `json:"alternative_names"`
	ChainID            uint64            `json:"chain_id"`
	NativeTokenName    string            `json:"native_token_name"`
	NativeTokenSymbol  string            `json:"native_token_symbol"`
	NativeTokenDecimal uint64            `json:"native_token_decimal"`
	BlockTime          uint64            `json:"block_time"`
	Testnet            bool              `json:"testnet"`
	NodeVariableName   string            `json:"node_variable_name"`
	DefaultNodes       map[string]string `json:"default_nodes"`
	BlockExplorerURL   string            `json:"block_explorer_url"`
}

// GenericNetwork is a Network fully described by its config. Custom networks
// loaded from disk and networks added by wallets are GenericNetworks.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	if config.DisplayName == "" {
		config.DisplayName = config.Name
	}
	if config.NativeTokenDecimal == 0 {
		config.NativeTokenDecimal = 18
	}
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetDisplayName() string {
	return gn.config.DisplayName
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenName() string {
	if gn.config.NativeTokenName == "" {
		return gn.config.NativeTokenSymbol
	}
	return gn.config.NativeTokenName
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) IsTestnet() bool {
	return gn.config.Testnet
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetBlockExplorerURL() string {
	return gn.config.BlockExplorerURL
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}

// configOf snapshots any Network into a GenericNetworkConfig so built-in
// networks can be persisted the same way custom ones are.
func configOf(n Network) GenericNetworkConfig {
	return GenericNetworkConfig{
		Name:               n.GetName(),
		DisplayName:        n.GetDisplayName(),
		AlternativeNames:   n.GetAlternativeNames(),
		ChainID:            n.GetChainID(),
		NativeTokenName:    n.GetNativeTokenName(),
		NativeTokenSymbol:  n.GetNativeTokenSymbol(),
		NativeTokenDecimal: n.GetNativeTokenDecimal(),
		BlockTime:          uint64(n.GetBlockTime() / time.Second),
		Testnet:            n.IsTestnet(),
		NodeVariableName:   n.GetNodeVariableName(),
		DefaultNodes:       n.GetDefaultNodes(),
		BlockExplorerURL:   n.GetBlockExplorerURL(),
	}
}
