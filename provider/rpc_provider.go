package provider

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// WalletNamespace is the json-rpc namespace wallet daemons serve their
// event subscriptions under.
const WalletNamespace = "wallet"

// RPCProvider reaches a wallet daemon over json-rpc. Requests are plain
// calls; events are subscriptions in the wallet namespace, so they need a
// transport with notification support (websocket, ipc, in-process).
type RPCProvider struct {
	client *rpc.Client
	hub    *Hub
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[string]*rpc.ClientSubscription
	cancel context.CancelFunc
	ctx    context.Context
}

func Dial(ctx context.Context, url string, log *zap.Logger) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewRPCProvider(client, log), nil
}

func NewRPCProvider(client *rpc.Client, log *zap.Logger) *RPCProvider {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RPCProvider{
		client: client,
		hub:    NewHub(log),
		log:    log,
		subs:   map[string]*rpc.ClientSubscription{},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *RPCProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, err
	}
	return raw, nil
}

// On subscribes on the daemon the first time an event is asked for. When
// the transport can't carry subscriptions the handler is still registered
// but never fires.
func (p *RPCProvider) On(event string, handler func(json.RawMessage)) func() {
	unsubscribe := p.hub.On(event, handler)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.subs[event]; ok {
		return unsubscribe
	}
	ch := make(chan json.RawMessage, subscriptionBuffer)
	sub, err := p.client.Subscribe(p.ctx, WalletNamespace, ch, event)
	if err != nil {
		p.log.Warn("couldn't subscribe to wallet event", zap.String("event", event), zap.Error(err))
		return unsubscribe
	}
	p.subs[event] = sub
	go p.forward(event, sub, ch)
	return unsubscribe
}

func (p *RPCProvider) forward(event string, sub *rpc.ClientSubscription, ch <-chan json.RawMessage) {
	for {
		select {
		case payload := <-ch:
			p.hub.Emit(event, payload)
		case err, ok := <-sub.Err():
			if ok && err != nil {
				p.log.Warn("wallet subscription ended", zap.String("event", event), zap.Error(err))
			}
			p.mu.Lock()
			delete(p.subs, event)
			p.mu.Unlock()
			return
		}
	}
}

func (p *RPCProvider) Close() {
	p.mu.Lock()
	subs := make([]*rpc.ClientSubscription, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
	p.cancel()
	p.client.Close()
}
