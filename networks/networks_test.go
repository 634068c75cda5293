package networks_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/networks"
)

func TestMumbaiDescriptor(t *testing.T) {
	d := networks.DescriptorOf(networks.Mumbai)

	assert.Equal(t, "0x13881", d.ChainID)
	assert.Equal(t, "Polygon Mumbai Testnet", d.ChainName)
	assert.Equal(t, []string{"https://rpc-mumbai.maticvigil.com/"}, d.RPCURLs)
	assert.Equal(t, networks.NativeCurrency{Name: "Mumbai Matic", Symbol: "MATIC", Decimals: 18}, d.NativeCurrency)
	assert.Equal(t, []string{"https://mumbai.polygonscan.com/"}, d.BlockExplorerURLs)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rpcUrls":["https://rpc-mumbai.maticvigil.com/"]`)
	assert.Contains(t, string(raw), `"nativeCurrency":{"name":"Mumbai Matic","symbol":"MATIC","decimals":18}`)
}

func TestNetworkFromDescriptorRoundTrip(t *testing.T) {
	n, err := networks.NetworkFromDescriptor(networks.DescriptorOf(networks.Mumbai))
	require.NoError(t, err)

	assert.Equal(t, uint64(80001), n.GetChainID())
	assert.Equal(t, "Polygon Mumbai Testnet", n.GetDisplayName())
	assert.Equal(t, "MATIC", n.GetNativeTokenSymbol())
	assert.Equal(t, "https://mumbai.polygonscan.com/", n.GetBlockExplorerURL())
}

func TestNetworkFromDescriptorRejectsIncomplete(t *testing.T) {
	_, err := networks.NetworkFromDescriptor(networks.ChainDescriptor{ChainID: "0x1", NativeCurrency: networks.NativeCurrency{Symbol: "ETH"}})
	assert.Error(t, err)

	_, err = networks.NetworkFromDescriptor(networks.ChainDescriptor{ChainID: "zz", RPCURLs: []string{"http://x"}})
	assert.Error(t, err)
}

func TestParseChainID(t *testing.T) {
	cases := map[string]uint64{
		"0x13881": 80001,
		"0X89":    137,
		"80001":   80001,
		" 1 ":     1,
	}
	for in, want := range cases {
		got, err := networks.ParseChainID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := networks.ParseChainID("mumbai")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	name, ok := networks.DisplayName(80001)
	assert.True(t, ok)
	assert.Equal(t, "Polygon Mumbai Testnet", name)

	_, ok = networks.DisplayName(999999999)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	for _, in := range []string{"mumbai", "polygon-testnet", "80001", "0x13881", ""} {
		n, err := networks.Resolve(in)
		require.NoError(t, err, in)
		assert.Equal(t, uint64(80001), n.GetChainID(), in)
	}

	_, err := networks.Resolve("nowhere")
	assert.True(t, errors.Is(err, networks.ErrNetworkNotFound))
}

func TestSupportedNetworksSortedAndUnique(t *testing.T) {
	list := networks.GetSupportedNetworks()
	require.NotEmpty(t, list)
	seen := map[uint64]bool{}
	for i, n := range list {
		assert.False(t, seen[n.GetChainID()], "duplicate chain %d", n.GetChainID())
		seen[n.GetChainID()] = true
		if i > 0 {
			assert.Less(t, list[i-1].GetChainID(), n.GetChainID())
		}
	}
}

func TestSaveAndLoadNetworks(t *testing.T) {
	dir := t.TempDir()
	custom := networks.NewGenericNetwork(networks.GenericNetworkConfig{
		Name:              "devnet",
		ChainID:           31337,
		NativeTokenSymbol: "ETH",
		DefaultNodes:      map[string]string{"local": "http://127.0.0.1:8545"},
	})
	require.NoError(t, networks.SaveNetwork(dir, custom))
	require.NoError(t, networks.SaveNetwork(dir, networks.Mumbai))

	loaded, err := networks.LoadNetworks(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	table := networks.NewTable(loaded...)
	n, err := table.ByID(31337)
	require.NoError(t, err)
	assert.Equal(t, "devnet", n.GetDisplayName())
	assert.Equal(t, uint64(18), n.GetNativeTokenDecimal())

	m, err := table.ByID(80001)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai Matic", m.GetNativeTokenName())
}

func TestLoadNetworksSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, networks.SaveNetwork(dir, networks.Matic))

	loaded, err := networks.LoadNetworks(dir)
	var skipped *networks.SkippedFilesError
	require.True(t, errors.As(err, &skipped))
	assert.Len(t, skipped.Errors, 1)
	assert.Len(t, loaded, 1)
}

func TestLoadNetworksMissingDir(t *testing.T) {
	loaded, err := networks.LoadNetworks(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestGetNodesEnvOverride(t *testing.T) {
	t.Setenv("MATIC_TESTNET_NODE", " http://localhost:8545 ")
	nodes, err := networks.GetNodes(networks.Mumbai)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", nodes["custom-node"])
	assert.Equal(t, "https://rpc-mumbai.maticvigil.com/", nodes["maticvigil"])
}

func TestTxURL(t *testing.T) {
	assert.Equal(t, "https://mumbai.polygonscan.com/tx/0xabc", networks.TxURL(networks.Mumbai, "0xabc"))

	bare := networks.NewGenericNetwork(networks.GenericNetworkConfig{Name: "bare", ChainID: 1337})
	assert.Equal(t, "", networks.TxURL(bare, "0xabc"))

	noSlash := networks.NewGenericNetwork(networks.GenericNetworkConfig{
		Name: "local", ChainID: 1338, BlockExplorerURL: "http://localhost:4000",
	})
	assert.Equal(t, "http://localhost:4000/tx/0xabc", networks.TxURL(noSlash, "0xabc"))
}
