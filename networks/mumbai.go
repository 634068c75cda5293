package networks

import (
	"encoding/json"
	"time"
)

// Mumbai is the network the name registry is deployed on.
var Mumbai Network = NewMumbai()

type mumbai struct{}

func NewMumbai() *mumbai {
	return &mumbai{}
}

func (m *mumbai) GetName() string {
	return "mumbai"
}

func (m *mumbai) GetDisplayName() string {
	return "Polygon Mumbai Testnet"
}

func (m *mumbai) GetChainID() uint64 {
	return 80001
}

func (m *mumbai) GetAlternativeNames() []string {
	return []string{"polygon-testnet", "matic-testnet"}
}

func (m *mumbai) GetNativeTokenName() string {
	return "Mumbai Matic"
}

func (m *mumbai) GetNativeTokenSymbol() string {
	return "MATIC"
}

func (m *mumbai) GetNativeTokenDecimal() uint64 {
	return 18
}

func (m *mumbai) GetBlockTime() time.Duration {
	return 2 * time.Second
}

func (m *mumbai) IsTestnet() bool {
	return true
}

func (m *mumbai) GetNodeVariableName() string {
	return "MATIC_TESTNET_NODE"
}

func (m *mumbai) GetDefaultNodes() map[string]string {
	return map[string]string{
		"maticvigil": "https://rpc-mumbai.maticvigil.com/",
	}
}

func (m *mumbai) GetBlockExplorerURL() string {
	return "https://mumbai.polygonscan.com/"
}

func (m *mumbai) MarshalJSON() ([]byte, error) {
	return json.Marshal(configOf(m))
}
