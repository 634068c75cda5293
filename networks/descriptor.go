package networks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint64 `json:"decimals"`
}

// ChainDescriptor is the parameter object of wallet_addEthereumChain
// (EIP-3085).
type ChainDescriptor struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// SwitchChainParam is the parameter object of wallet_switchEthereumChain.
type SwitchChainParam struct {
	ChainID string `json:"chainId"`
}

func ChainIDHex(id uint64) string {
	return hexutil.EncodeUint64(id)
}

// ParseChainID accepts 0x prefixed hex (as wallets report it) or decimal.
func ParseChainID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		id, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex chain id %q: %w", s, err)
		}
		return id, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return id, nil
}

// DescriptorOf builds the add-chain request for n. Node URLs are sorted by
// node name so the request is deterministic.
func DescriptorOf(n Network) ChainDescriptor {
	d := ChainDescriptor{
		ChainID:   ChainIDHex(n.GetChainID()),
		ChainName: n.GetDisplayName(),
		RPCURLs:   sortedNodeURLs(n.GetDefaultNodes()),
		NativeCurrency: NativeCurrency{
			Name:     n.GetNativeTokenName(),
			Symbol:   n.GetNativeTokenSymbol(),
			Decimals: n.GetNativeTokenDecimal(),
		},
	}
	if url := n.GetBlockExplorerURL(); url != "" {
		d.BlockExplorerURLs = []string{url}
	}
	return d
}

// NetworkFromDescriptor turns an add-chain request back into a Network.
func NetworkFromDescriptor(d ChainDescriptor) (Network, error) {
	id, err := ParseChainID(d.ChainID)
	if err != nil {
		return nil, err
	}
	if len(d.RPCURLs) == 0 {
		return nil, fmt.Errorf("chain %s: at least one rpc url is required", d.ChainID)
	}
	if d.NativeCurrency.Symbol == "" {
		return nil, fmt.Errorf("chain %s: native currency symbol is required", d.ChainID)
	}
	nodes := map[string]string{}
	for i, url := range d.RPCURLs {
		nodes[fmt.Sprintf("rpc-%d", i)] = url
	}
	cfg := GenericNetworkConfig{
		Name:               fmt.Sprintf("chain-%d", id),
		DisplayName:        d.ChainName,
		ChainID:            id,
		NativeTokenName:    d.NativeCurrency.Name,
		NativeTokenSymbol:  d.NativeCurrency.Symbol,
		NativeTokenDecimal: d.NativeCurrency.Decimals,
		DefaultNodes:       nodes,
	}
	if len(d.BlockExplorerURLs) > 0 {
		cfg.BlockExplorerURL = d.BlockExplorerURLs[0]
	}
	return NewGenericNetwork(cfg), nil
}
