package provider

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/rpc"
)

// NewServer exposes p as a wallet daemon: the eth and wallet namespaces
// forward requests to p, and chainChanged / accountsChanged are served as
// subscriptions in the wallet namespace.
func NewServer(p Provider) (*rpc.Server, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("eth", &ethAPI{p: p}); err != nil {
		return nil, err
	}
	if err := server.RegisterName(WalletNamespace, &walletAPI{p: p}); err != nil {
		return nil, err
	}
	return server, nil
}

type ethAPI struct {
	p Provider
}

func (api *ethAPI) RequestAccounts(ctx context.Context) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodRequestAccounts)
}

func (api *ethAPI) Accounts(ctx context.Context) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodAccounts)
}

func (api *ethAPI) ChainId(ctx context.Context) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodChainID)
}

func (api *ethAPI) SendTransaction(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodSendTransaction, args)
}

func (api *ethAPI) Call(ctx context.Context, args json.RawMessage, block *string) (json.RawMessage, error) {
	if block == nil {
		return api.p.Request(ctx, MethodCall, args)
	}
	return api.p.Request(ctx, MethodCall, args, *block)
}

func (api *ethAPI) GetTransactionReceipt(ctx context.Context, hash string) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodTransactionReceipt, hash)
}

func (api *ethAPI) BlockNumber(ctx context.Context) (json.RawMessage, error) {
	return api.p.Request(ctx, "eth_blockNumber")
}

type walletAPI struct {
	p Provider
}

func (api *walletAPI) SwitchEthereumChain(ctx context.Context, param json.RawMessage) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodSwitchChain, param)
}

func (api *walletAPI) AddEthereumChain(ctx context.Context, descriptor json.RawMessage) (json.RawMessage, error) {
	return api.p.Request(ctx, MethodAddChain, descriptor)
}

func (api *walletAPI) ChainChanged(ctx context.Context) (*rpc.Subscription, error) {
	return api.subscribe(ctx, EventChainChanged)
}

func (api *walletAPI) AccountsChanged(ctx context.Context) (*rpc.Subscription, error) {
	return api.subscribe(ctx, EventAccountsChanged)
}

func (api *walletAPI) subscribe(ctx context.Context, event string) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}
	sub := notifier.CreateSubscription()
	unsubscribe := api.p.On(event, func(payload json.RawMessage) {
		notifier.Notify(sub.ID, payload)
	})
	go func() {
		<-sub.Err()
		unsubscribe()
	}()
	return sub, nil
}
