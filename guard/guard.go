// Package guard keeps writes on the target network.
package guard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
)

type State int

const (
	Unchecked State = iota
	Mismatched
	// PendingSwitchRetry: the target chain was just added to the wallet and
	// the wallet's own switch prompt decides where it ends up. The next
	// Check resolves it.
	PendingSwitchRetry
	Ready
)

func (s State) String() string {
	switch s {
	case Mismatched:
		return "mismatched"
	case PendingSwitchRetry:
		return "pending switch"
	case Ready:
		return "ready"
	default:
		return "unchecked"
	}
}

// NetworkState is what the wallet is on. Resolved is false when the chain
// id is not in the known network table.
type NetworkState struct {
	ChainID     uint64
	DisplayName string
	Resolved    bool
}

func (n NetworkState) String() string {
	if !n.Resolved {
		return fmt.Sprintf("unknown network (chain %d)", n.ChainID)
	}
	return n.DisplayName
}

type Guard struct {
	mu       sync.Mutex
	provider provider.Provider
	target   networks.Network
	state    State
	network  NetworkState
	log      *zap.Logger
}

func New(p provider.Provider, target networks.Network, log *zap.Logger) *Guard {
	if target == nil {
		target = networks.DefaultTarget
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{provider: p, target: target, log: log}
}

func (g *Guard) Target() networks.Network {
	return g.target
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Network() NetworkState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.network
}

func (g *Guard) Ready() bool {
	return g.State() == Ready
}

func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Unchecked
	g.network = NetworkState{}
}

func (g *Guard) set(state State, network NetworkState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
	g.network = network
}

func resolve(id uint64) NetworkState {
	name, ok := networks.DisplayName(id)
	return NetworkState{ChainID: id, DisplayName: name, Resolved: ok}
}

func (g *Guard) readChainID(ctx context.Context) (uint64, error) {
	var raw string
	if err := provider.RequestInto(ctx, g.provider, &raw, provider.MethodChainID); err != nil {
		return 0, err
	}
	return networks.ParseChainID(raw)
}

// Check reads the wallet's chain and compares it with the target.
func (g *Guard) Check(ctx context.Context) (NetworkState, error) {
	id, err := g.readChainID(ctx)
	if err != nil {
		return g.Network(), fmt.Errorf("couldn't read the wallet network: %w", err)
	}
	network := resolve(id)
	state := Mismatched
	if id == g.target.GetChainID() {
		state = Ready
	}
	g.set(state, network)
	g.log.Debug("network checked", zap.Uint64("chain_id", id), zap.Stringer("state", state))
	return network, nil
}

// SwitchNetwork asks the wallet to move to the target chain. A wallet that
// doesn't know the chain gets exactly one request to add it; the switch is
// never re-requested here since wallets offer it right after adding.
func (g *Guard) SwitchNetwork(ctx context.Context) error {
	targetID := g.target.GetChainID()
	err := provider.RequestInto(ctx, g.provider, nil, provider.MethodSwitchChain,
		networks.SwitchChainParam{ChainID: networks.ChainIDHex(targetID)})
	if err == nil {
		g.set(Ready, resolve(targetID))
		g.log.Info("wallet switched network", zap.Uint64("chain_id", targetID))
		return nil
	}
	if !provider.IsUnrecognizedChain(err) {
		g.markMismatched()
		return fmt.Errorf("couldn't switch to %s: %w", g.target.GetDisplayName(), err)
	}

	g.log.Info("wallet doesn't know the target network, adding it", zap.Uint64("chain_id", targetID))
	if err := provider.RequestInto(ctx, g.provider, nil, provider.MethodAddChain, networks.DescriptorOf(g.target)); err != nil {
		g.markMismatched()
		return fmt.Errorf("couldn't add %s to the wallet: %w", g.target.GetDisplayName(), err)
	}
	g.mu.Lock()
	g.state = PendingSwitchRetry
	g.mu.Unlock()

	id, err := g.readChainID(ctx)
	if err != nil {
		g.log.Warn("couldn't read the network after adding it", zap.Error(err))
		return nil
	}
	if id == targetID {
		g.set(Ready, resolve(id))
	} else {
		g.set(PendingSwitchRetry, resolve(id))
	}
	return nil
}

func (g *Guard) markMismatched() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Mismatched
}
