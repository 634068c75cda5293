package networks

import (
	"encoding/json"
	"time"
)

var Matic Network = NewMatic()

type matic struct{}

func NewMatic() *matic {
	return &matic{}
}

func (m *matic) GetName() string {
	return "matic"
}

func (m *matic) GetDisplayName() string {
	return "Polygon Mainnet"
}

func (m *matic) GetChainID() uint64 {
	return 137
}

func (m *matic) GetAlternativeNames() []string {
	return []string{"polygon"}
}

func (m *matic) GetNativeTokenName() string {
	return "Matic"
}

func (m *matic) GetNativeTokenSymbol() string {
	return "MATIC"
}

func (m *matic) GetNativeTokenDecimal() uint64 {
	return 18
}

func (m *matic) GetBlockTime() time.Duration {
	return 2 * time.Second
}

func (m *matic) IsTestnet() bool {
	return false
}

func (m *matic) GetNodeVariableName() string {
	return "MATIC_MAINNET_NODE"
}

func (m *matic) GetDefaultNodes() map[string]string {
	return map[string]string{
		"maticvigil": "https://rpc-mainnet.maticvigil.com",
		"polygon":    "https://polygon-rpc.com",
	}
}

func (m *matic) GetBlockExplorerURL() string {
	return "https://polygonscan.com/"
}

func (m *matic) MarshalJSON() ([]byte, error) {
	return json.Marshal(configOf(m))
}
