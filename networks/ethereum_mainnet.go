package networks

import (
	"encoding/json"
	"time"
)

var EthereumMainnet Network = NewEthereumMainnet()

type ethereumMainnet struct{}

func NewEthereumMainnet() *ethereumMainnet {
	return &ethereumMainnet{}
}

func (e *ethereumMainnet) GetName() string {
	return "mainnet"
}

func (e *ethereumMainnet) GetDisplayName() string {
	return "Ethereum Mainnet"
}

func (e *ethereumMainnet) GetChainID() uint64 {
	return 1
}

func (e *ethereumMainnet) GetAlternativeNames() []string {
	return []string{"ethereum"}
}

func (e *ethereumMainnet) GetNativeTokenName() string {
	return "Ether"
}

func (e *ethereumMainnet) GetNativeTokenSymbol() string {
	return "ETH"
}

func (e *ethereumMainnet) GetNativeTokenDecimal() uint64 {
	return 18
}

func (e *ethereumMainnet) GetBlockTime() time.Duration {
	return 12 * time.Second
}

func (e *ethereumMainnet) IsTestnet() bool {
	return false
}

func (e *ethereumMainnet) GetNodeVariableName() string {
	return "ETHEREUM_MAINNET_NODE"
}

func (e *ethereumMainnet) GetDefaultNodes() map[string]string {
	return map[string]string{
		"mainnet-alchemy": "https://eth-mainnet.alchemyapi.io/v2/YP5f6eM2wC9c2nwJfB0DC1LObdSY7Qfv",
		"mainnet-infura":  "https://mainnet.infura.io/v3/247128ae36b6444d944d4c3793c8e3f5",
	}
}

func (e *ethereumMainnet) GetBlockExplorerURL() string {
	return "https://etherscan.io/"
}

func (e *ethereumMainnet) MarshalJSON() ([]byte, error) {
	return json.Marshal(configOf(e))
}
