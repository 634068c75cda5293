package provider_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/util/account"
	"github.com/tranvictor/ajer/util/reader"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

// nodeService is the part of a node the wallet talks to.
type nodeService struct {
	mu   sync.Mutex
	sent []*types.Transaction
}

func (s *nodeService) ChainId() hexutil.Uint64 {
	return 1
}

func (s *nodeService) GetTransactionCount(addr common.Address, block string) hexutil.Uint64 {
	return 3
}

func (s *nodeService) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(hexutil.MustDecodeBig("0x3b9aca00"))
}

func (s *nodeService) Call(args map[string]interface{}, block string) hexutil.Bytes {
	return hexutil.MustDecode("0x2a")
}

func (s *nodeService) SendRawTransaction(data hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return common.Hash{}, err
	}
	s.mu.Lock()
	s.sent = append(s.sent, tx)
	s.mu.Unlock()
	return tx.Hash(), nil
}

func (s *nodeService) transactions() []*types.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.Transaction{}, s.sent...)
}

type prompts struct {
	mu      sync.Mutex
	asked   []string
	decline func(prompt string) bool
}

func (p *prompts) approve(prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, prompt)
	return p.decline == nil || !p.decline(prompt)
}

func (p *prompts) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.asked)
}

func newTestWallet(t *testing.T, node *nodeService, p *prompts, opts ...provider.WalletOption) *provider.Wallet {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", node))
	t.Cleanup(server.Stop)

	factory := func(n networks.Network) (*reader.EthReader, error) {
		client := rpc.DialInProc(server)
		t.Cleanup(client.Close)
		return reader.NewEthReaderFromNodes(reader.NewOneNodeReaderWithClient(n.GetName(), client)), nil
	}
	unlock := func() (*account.Account, error) {
		return account.NewPrivateKeyAccount(testKey)
	}
	opts = append([]provider.WalletOption{
		provider.WithChains(networks.EthereumMainnet, networks.Matic),
		provider.WithChainID(1),
		provider.WithReaderFactory(factory),
		provider.WithApprover(p.approve),
	}, opts...)
	w, err := provider.NewWallet(unlock, opts...)
	require.NoError(t, err)
	return w
}

func testAddress(t *testing.T) common.Address {
	acc, err := account.NewPrivateKeyAccount(testKey)
	require.NoError(t, err)
	return acc.Address()
}

func TestWalletRequestAccounts(t *testing.T) {
	p := &prompts{}
	w := newTestWallet(t, &nodeService{}, p)
	ctx := context.Background()

	var accounts []string
	require.NoError(t, provider.RequestInto(ctx, w, &accounts, provider.MethodAccounts))
	assert.Empty(t, accounts)

	require.NoError(t, provider.RequestInto(ctx, w, &accounts, provider.MethodRequestAccounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, strings.ToLower(testAddress(t).Hex()), accounts[0])

	// already authorized, no second prompt
	require.NoError(t, provider.RequestInto(ctx, w, &accounts, provider.MethodRequestAccounts))
	assert.Equal(t, 1, p.count())

	require.NoError(t, provider.RequestInto(ctx, w, &accounts, provider.MethodAccounts))
	assert.Len(t, accounts, 1)
}

func TestWalletRequestAccountsRejected(t *testing.T) {
	p := &prompts{decline: func(string) bool { return true }}
	w := newTestWallet(t, &nodeService{}, p)

	_, err := w.Request(context.Background(), provider.MethodRequestAccounts)
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
}

func TestWalletUnknownChainThenAdd(t *testing.T) {
	p := &prompts{}
	w := newTestWallet(t, &nodeService{}, p)
	ctx := context.Background()

	changes := make(chan string, 4)
	unsubscribe := w.On(provider.EventChainChanged, func(payload json.RawMessage) {
		var id string
		if json.Unmarshal(payload, &id) == nil {
			changes <- id
		}
	})
	defer unsubscribe()

	target := networks.ChainIDHex(networks.Mumbai.GetChainID())
	_, err := w.Request(ctx, provider.MethodSwitchChain, networks.SwitchChainParam{ChainID: target})
	require.Error(t, err)
	assert.True(t, provider.IsUnrecognizedChain(err))
	assert.Equal(t, 0, p.count())

	_, err = w.Request(ctx, provider.MethodAddChain, networks.DescriptorOf(networks.Mumbai))
	require.NoError(t, err)
	// add, then the wallet's own switch prompt
	assert.Equal(t, 2, p.count())
	assert.Equal(t, networks.Mumbai.GetChainID(), w.ChainID())

	select {
	case id := <-changes:
		assert.Equal(t, "0x13881", id)
	case <-time.After(2 * time.Second):
		t.Fatal("chainChanged was not emitted")
	}

	var chainID string
	require.NoError(t, provider.RequestInto(ctx, w, &chainID, provider.MethodChainID))
	assert.Equal(t, "0x13881", chainID)
}

func TestWalletAddChainDeclinedSwitch(t *testing.T) {
	p := &prompts{decline: func(prompt string) bool { return strings.Contains(strings.ToLower(prompt), "switch") }}
	w := newTestWallet(t, &nodeService{}, p)
	ctx := context.Background()

	_, err := w.Request(ctx, provider.MethodAddChain, networks.DescriptorOf(networks.Mumbai))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), w.ChainID())

	_, err = w.Request(ctx, provider.MethodSwitchChain, networks.SwitchChainParam{ChainID: "0x13881"})
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
}

func TestWalletPersistsAddedChains(t *testing.T) {
	dir := t.TempDir()
	node := &nodeService{}
	w := newTestWallet(t, node, &prompts{}, provider.WithChainDir(dir))
	_, err := w.Request(context.Background(), provider.MethodAddChain, networks.DescriptorOf(networks.Mumbai))
	require.NoError(t, err)

	reopened := newTestWallet(t, node, &prompts{}, provider.WithChainDir(dir))
	assert.Len(t, reopened.Chains(), 3)
	_, err = reopened.Request(context.Background(), provider.MethodSwitchChain, networks.SwitchChainParam{ChainID: "0x13881"})
	require.NoError(t, err)
	assert.Equal(t, networks.Mumbai.GetChainID(), reopened.ChainID())
}

func TestWalletAddChainInvalidDescriptor(t *testing.T) {
	w := newTestWallet(t, &nodeService{}, &prompts{})
	_, err := w.Request(context.Background(), provider.MethodAddChain, networks.ChainDescriptor{ChainID: "0x13881"})
	require.Error(t, err)
	code, ok := provider.ErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, provider.CodeInvalidParams, code)
}

func TestWalletSendTransaction(t *testing.T) {
	node := &nodeService{}
	w := newTestWallet(t, node, &prompts{})
	ctx := context.Background()
	from := testAddress(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gas := hexutil.Uint64(100000)
	args := provider.TxArgs{
		From:  from,
		To:    &to,
		Value: (*hexutil.Big)(hexutil.MustDecodeBig("0x10")),
		Data:  hexutil.MustDecode("0x1234"),
		Gas:   &gas,
	}

	_, err := w.Request(ctx, provider.MethodSendTransaction, args)
	require.Error(t, err)
	code, _ := provider.ErrorCode(err)
	assert.Equal(t, provider.CodeUnauthorized, code)

	_, err = w.Request(ctx, provider.MethodRequestAccounts)
	require.NoError(t, err)

	var hash common.Hash
	require.NoError(t, provider.RequestInto(ctx, w, &hash, provider.MethodSendTransaction, args))

	sent := node.transactions()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, uint64(100000), tx.Gas())
	assert.Equal(t, int64(1), tx.ChainId().Int64())
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, from, sender)
}

func TestWalletSendTransactionFromOtherAccount(t *testing.T) {
	w := newTestWallet(t, &nodeService{}, &prompts{})
	ctx := context.Background()
	_, err := w.Request(ctx, provider.MethodRequestAccounts)
	require.NoError(t, err)

	_, err = w.Request(ctx, provider.MethodSendTransaction, provider.TxArgs{From: common.HexToAddress("0x01")})
	require.Error(t, err)
	code, _ := provider.ErrorCode(err)
	assert.Equal(t, provider.CodeUnauthorized, code)
}

func TestWalletPassthroughAndUnsupported(t *testing.T) {
	w := newTestWallet(t, &nodeService{}, &prompts{})
	ctx := context.Background()

	var out hexutil.Bytes
	require.NoError(t, provider.RequestInto(ctx, w, &out, provider.MethodCall,
		map[string]string{"to": "0x00000000000000000000000000000000000000aa"}, "latest"))
	assert.Equal(t, hexutil.Bytes{0x2a}, out)

	_, err := w.Request(ctx, "eth_sign")
	require.Error(t, err)
	code, _ := provider.ErrorCode(err)
	assert.Equal(t, provider.CodeUnsupportedMethod, code)
}

func TestNewWalletUnknownStartChain(t *testing.T) {
	_, err := provider.NewWallet(nil, provider.WithChains(networks.EthereumMainnet), provider.WithChainID(80001))
	assert.Error(t, err)
}
