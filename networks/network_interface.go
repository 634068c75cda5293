package networks

import (
	"time"
)

type Network interface {
	GetName() string
	// GetDisplayName is the human readable chain name wallets show, e.g.
	// "Polygon Mumbai Testnet".
	GetDisplayName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenName() string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration
	IsTestnet() bool

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	GetBlockExplorerURL() string

	MarshalJSON() ([]byte, error)
}
