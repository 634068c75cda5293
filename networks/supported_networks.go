package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	Matic,
	Mumbai,
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "sepolia",
		DisplayName:        "Sepolia Testnet",
		ChainID:            11155111,
		NativeTokenName:    "Sepolia Ether",
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		Testnet:            true,
		NodeVariableName:   "ETHEREUM_SEPOLIA_NODE",
		DefaultNodes:       map[string]string{"publicnode": "https://ethereum-sepolia-rpc.publicnode.com"},
		BlockExplorerURL:   "https://sepolia.etherscan.io/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "goerli",
		DisplayName:        "Goerli Testnet",
		ChainID:            5,
		NativeTokenName:    "Goerli Ether",
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		Testnet:            true,
		NodeVariableName:   "ETHEREUM_GOERLI_NODE",
		DefaultNodes:       map[string]string{"infura": "https://goerli.infura.io/v3/247128ae36b6444d944d4c3793c8e3f5"},
		BlockExplorerURL:   "https://goerli.etherscan.io/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "bsc",
		DisplayName:        "BNB Smart Chain",
		AlternativeNames:   []string{"binance"},
		ChainID:            56,
		NativeTokenName:    "BNB",
		NativeTokenSymbol:  "BNB",
		NativeTokenDecimal: 18,
		BlockTime:          3,
		NodeVariableName:   "BSC_MAINNET_NODE",
		DefaultNodes:       map[string]string{"binance": "https://bsc-dataseed.binance.org"},
		BlockExplorerURL:   "https://bscscan.com/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "bsc-test",
		DisplayName:        "BNB Smart Chain Testnet",
		ChainID:            97,
		NativeTokenName:    "Test BNB",
		NativeTokenSymbol:  "tBNB",
		NativeTokenDecimal: 18,
		BlockTime:          3,
		Testnet:            true,
		NodeVariableName:   "BSC_TESTNET_NODE",
		DefaultNodes:       map[string]string{"binance": "https://data-seed-prebsc-1-s1.binance.org:8545"},
		BlockExplorerURL:   "https://testnet.bscscan.com/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "arbitrum",
		DisplayName:        "Arbitrum One",
		ChainID:            42161,
		NativeTokenName:    "Ether",
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          1,
		NodeVariableName:   "ARBITRUM_MAINNET_NODE",
		DefaultNodes:       map[string]string{"arbitrum": "https://arb1.arbitrum.io/rpc"},
		BlockExplorerURL:   "https://arbiscan.io/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "optimism",
		DisplayName:        "OP Mainnet",
		ChainID:            10,
		NativeTokenName:    "Ether",
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "OPTIMISM_MAINNET_NODE",
		DefaultNodes:       map[string]string{"optimism": "https://mainnet.optimism.io"},
		BlockExplorerURL:   "https://optimistic.etherscan.io/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "base",
		DisplayName:        "Base",
		ChainID:            8453,
		NativeTokenName:    "Ether",
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "BASE_MAINNET_NODE",
		DefaultNodes:       map[string]string{"base": "https://mainnet.base.org"},
		BlockExplorerURL:   "https://basescan.org/",
	}),
	NewGenericNetwork(GenericNetworkConfig{
		Name:               "avalanche",
		DisplayName:        "Avalanche C-Chain",
		AlternativeNames:   []string{"avax"},
		ChainID:            43114,
		NativeTokenName:    "Avalanche",
		NativeTokenSymbol:  "AVAX",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "AVAX_MAINNET_NODE",
		DefaultNodes:       map[string]string{"avax": "https://api.avax.network/ext/bc/C/rpc"},
		BlockExplorerURL:   "https://snowtrace.io/",
	}),
}

var globalSupportedNetworks = newSupportedNetworks()
var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	mu           sync.RWMutex
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) list() []Network {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := make([]Network, 0, len(n.networksByID))
	for _, nw := range n.networksByID {
		res = append(res, nw)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].GetChainID() < res[j].GetChainID()
	})
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

// add registers nw under its name, alternative names and chain id. Existing
// entries with the same keys are replaced.
func (n *networks) add(nw Network) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.networks[nw.GetName()] = nw
	n.networksByID[nw.GetChainID()] = nw
	for _, an := range nw.GetAlternativeNames() {
		n.networks[an] = nw
	}
}

func newNetworks(list []Network) *networks {
	result := networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range list {
		if _, found := result.networks[n.GetName()]; found {
			panic(
				fmt.Errorf(
					"network with name or alternative name of '%s' already exists",
					n.GetName(),
				),
			)
		}
		for _, an := range n.GetAlternativeNames() {
			if _, found := result.networks[an]; found {
				panic(
					fmt.Errorf("network with name or alternative name of '%s' already exists", an),
				)
			}
		}
		result.add(n)
	}
	return &result
}

func newSupportedNetworks() *networks {
	return newNetworks(supportedNetworks)
}

// LoadNetworks reads every *.json network config in dir. A missing dir is not
// an error. Files that fail to parse are reported and skipped.
func LoadNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	result := []Network{}
	var skipped []error
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", file, err))
			continue
		}
		result = append(result, network)
	}
	if len(skipped) > 0 {
		return result, &SkippedFilesError{Errors: skipped}
	}
	return result, nil
}

// SkippedFilesError is returned by LoadNetworks alongside the networks it
// could parse.
type SkippedFilesError struct {
	Errors []error
}

func (e *SkippedFilesError) Error() string {
	return fmt.Sprintf("%d network files skipped, first: %s", len(e.Errors), e.Errors[0])
}

// SaveNetwork stores nw as <dir>/<name>.json so LoadNetworks picks it up.
func SaveNetwork(dir string, nw Network) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	content, err := nw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", nw.GetName()))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write network to %s: %w", path, err)
	}
	return nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs both name and chain_id")
	}

	return NewGenericNetwork(networkConfig), nil
}

func GetSupportedNetworks() []Network {
	return globalSupportedNetworks.list()
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

// DisplayName resolves a chain id through the known-network table. The bool
// is false when the chain is unknown.
func DisplayName(id uint64) (string, bool) {
	n, err := GetNetworkByID(id)
	if err != nil {
		return "", false
	}
	return n.GetDisplayName(), true
}

// AddNetwork registers network in the process wide table.
func AddNetwork(network Network) {
	globalSupportedNetworks.add(network)
}

// Table is an independent network table, used by wallets that keep their
// own list of chains they know how to reach.
type Table struct {
	n *networks
}

func NewTable(list ...Network) *Table {
	t := &Table{n: &networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}}
	for _, nw := range list {
		t.n.add(nw)
	}
	return t
}

func (t *Table) Add(nw Network) {
	t.n.add(nw)
}

func (t *Table) ByID(id uint64) (Network, error) {
	return t.n.getNetworkByID(id)
}

func (t *Table) List() []Network {
	return t.n.list()
}
