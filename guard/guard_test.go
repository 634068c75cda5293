package guard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/guard"
	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/provider/providertest"
)

func TestCheck(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodChainID, "0x13881")
	g := guard.New(fake, networks.Mumbai, nil)
	assert.Equal(t, guard.Unchecked, g.State())

	network, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Ready, g.State())
	assert.True(t, g.Ready())
	assert.Equal(t, "Polygon Mumbai Testnet", network.DisplayName)
	assert.True(t, network.Resolved)

	fake.Respond(provider.MethodChainID, "0x89")
	network, err = g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Mismatched, g.State())
	assert.Equal(t, uint64(137), network.ChainID)
}

func TestCheckUnknownChain(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodChainID, "0x539")
	g := guard.New(fake, networks.Mumbai, nil)
	network, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, network.Resolved)
	assert.Equal(t, uint64(1337), network.ChainID)
	assert.Equal(t, guard.Mismatched, g.State())
	assert.Contains(t, network.String(), "1337")
}

func TestCheckReadError(t *testing.T) {
	fake := providertest.New().Fail(provider.MethodChainID, provider.NewError(provider.CodeInternal, "down"))
	g := guard.New(fake, networks.Mumbai, nil)
	_, err := g.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, guard.Unchecked, g.State())
}

func TestSwitchNetwork(t *testing.T) {
	fake := providertest.New().
		Respond(provider.MethodChainID, "0x1").
		Respond(provider.MethodSwitchChain, nil)
	g := guard.New(fake, networks.Mumbai, nil)
	_, err := g.Check(context.Background())
	require.NoError(t, err)

	require.NoError(t, g.SwitchNetwork(context.Background()))
	assert.Equal(t, guard.Ready, g.State())
	assert.Equal(t, uint64(80001), g.Network().ChainID)

	calls := fake.Calls(provider.MethodSwitchChain)
	require.Len(t, calls, 1)
	assert.Equal(t, networks.SwitchChainParam{ChainID: "0x13881"}, calls[0].Params[0])
	assert.Equal(t, 0, fake.Count(provider.MethodAddChain))
}

func TestSwitchNetworkAddsUnknownChainOnce(t *testing.T) {
	chainID := "0x1"
	fake := providertest.New().
		Handle(provider.MethodChainID, func([]interface{}) (interface{}, error) { return chainID, nil }).
		Fail(provider.MethodSwitchChain, provider.NewError(provider.CodeUnrecognizedChain, "unknown chain")).
		Handle(provider.MethodAddChain, func([]interface{}) (interface{}, error) {
			// the wallet's own prompt switched it
			chainID = "0x13881"
			return nil, nil
		})
	g := guard.New(fake, networks.Mumbai, nil)

	require.NoError(t, g.SwitchNetwork(context.Background()))
	assert.Equal(t, 1, fake.Count(provider.MethodSwitchChain))
	require.Equal(t, 1, fake.Count(provider.MethodAddChain))
	assert.Equal(t, guard.Ready, g.State())

	descriptor := fake.Calls(provider.MethodAddChain)[0].Params[0].(networks.ChainDescriptor)
	assert.Equal(t, "0x13881", descriptor.ChainID)
	assert.Equal(t, "Polygon Mumbai Testnet", descriptor.ChainName)
	assert.Equal(t, []string{"https://rpc-mumbai.maticvigil.com/"}, descriptor.RPCURLs)
	assert.Equal(t, networks.NativeCurrency{Name: "Mumbai Matic", Symbol: "MATIC", Decimals: 18}, descriptor.NativeCurrency)
	assert.Equal(t, []string{"https://mumbai.polygonscan.com/"}, descriptor.BlockExplorerURLs)
}

func TestSwitchNetworkPendingRetry(t *testing.T) {
	fake := providertest.New().
		Respond(provider.MethodChainID, "0x1").
		Fail(provider.MethodSwitchChain, provider.NewError(provider.CodeUnrecognizedChain, "unknown chain")).
		Respond(provider.MethodAddChain, nil)
	g := guard.New(fake, networks.Mumbai, nil)

	require.NoError(t, g.SwitchNetwork(context.Background()))
	assert.Equal(t, guard.PendingSwitchRetry, g.State())
	assert.False(t, g.Ready())
	assert.Equal(t, 1, fake.Count(provider.MethodSwitchChain))
	assert.Equal(t, 1, fake.Count(provider.MethodAddChain))

	// user declined the wallet's switch prompt
	_, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Mismatched, g.State())

	// and then switched by hand
	fake.Respond(provider.MethodChainID, "0x13881")
	_, err = g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.Ready, g.State())
	assert.Equal(t, 1, fake.Count(provider.MethodSwitchChain))
}

func TestSwitchNetworkOtherErrors(t *testing.T) {
	fake := providertest.New().
		Fail(provider.MethodSwitchChain, provider.NewError(provider.CodeUserRejected, "rejected"))
	g := guard.New(fake, networks.Mumbai, nil)
	err := g.SwitchNetwork(context.Background())
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
	assert.Equal(t, guard.Mismatched, g.State())
	assert.Equal(t, 0, fake.Count(provider.MethodAddChain))
}

func TestSwitchNetworkAddFails(t *testing.T) {
	fake := providertest.New().
		Fail(provider.MethodSwitchChain, provider.NewError(provider.CodeUnrecognizedChain, "unknown chain")).
		Fail(provider.MethodAddChain, provider.NewError(provider.CodeUserRejected, "rejected"))
	g := guard.New(fake, networks.Mumbai, nil)
	err := g.SwitchNetwork(context.Background())
	require.Error(t, err)
	assert.Equal(t, guard.Mismatched, g.State())
	assert.Equal(t, 1, fake.Count(provider.MethodSwitchChain))
	assert.Equal(t, 1, fake.Count(provider.MethodAddChain))
}

func TestReset(t *testing.T) {
	fake := providertest.New().Respond(provider.MethodChainID, "0x13881")
	g := guard.New(fake, networks.Mumbai, nil)
	_, err := g.Check(context.Background())
	require.NoError(t, err)
	g.Reset()
	assert.Equal(t, guard.Unchecked, g.State())
	assert.Equal(t, guard.NetworkState{}, g.Network())
}
