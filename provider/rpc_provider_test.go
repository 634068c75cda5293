package provider_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
)

func remoteWallet(t *testing.T, p *prompts) (*provider.RPCProvider, *provider.Wallet) {
	t.Helper()
	w := newTestWallet(t, &nodeService{}, p)
	server, err := provider.NewServer(w)
	require.NoError(t, err)
	t.Cleanup(server.Stop)
	remote := provider.NewRPCProvider(rpc.DialInProc(server), nil)
	t.Cleanup(remote.Close)
	return remote, w
}

func TestRPCProviderRequests(t *testing.T) {
	remote, _ := remoteWallet(t, &prompts{})
	ctx := context.Background()

	var chainID string
	require.NoError(t, provider.RequestInto(ctx, remote, &chainID, provider.MethodChainID))
	assert.Equal(t, "0x1", chainID)

	var accounts []string
	require.NoError(t, provider.RequestInto(ctx, remote, &accounts, provider.MethodRequestAccounts))
	assert.Len(t, accounts, 1)
}

func TestRPCProviderKeepsErrorCodes(t *testing.T) {
	remote, _ := remoteWallet(t, &prompts{decline: func(string) bool { return true }})
	ctx := context.Background()

	_, err := remote.Request(ctx, provider.MethodSwitchChain, networks.SwitchChainParam{ChainID: "0x13881"})
	require.Error(t, err)
	assert.True(t, provider.IsUnrecognizedChain(err))

	_, err = remote.Request(ctx, provider.MethodRequestAccounts)
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
}

func TestRPCProviderChainChangedSubscription(t *testing.T) {
	remote, w := remoteWallet(t, &prompts{})
	ctx := context.Background()

	changes := make(chan string, 4)
	unsubscribe := remote.On(provider.EventChainChanged, func(payload json.RawMessage) {
		var id string
		if json.Unmarshal(payload, &id) == nil {
			changes <- id
		}
	})
	defer unsubscribe()

	_, err := w.Request(ctx, provider.MethodSwitchChain, networks.SwitchChainParam{ChainID: networks.ChainIDHex(networks.Matic.GetChainID())})
	require.NoError(t, err)

	select {
	case id := <-changes:
		assert.Equal(t, "0x89", id)
	case <-time.After(2 * time.Second):
		t.Fatal("chainChanged was not forwarded")
	}
}
