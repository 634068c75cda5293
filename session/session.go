// Package session tracks the wallet account this client acts for.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

var ErrNoAccounts = errors.New("wallet returned no accounts")

type Session struct {
	mu       sync.Mutex
	provider provider.Provider
	state    State
	account  string
	log      *zap.Logger
}

func New(p provider.Provider, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{provider: p, log: log}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Account is the connected address, empty when disconnected.
func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) set(state State, account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.account = account
}

// Connect asks the wallet for account access, which may prompt its owner.
// Without a provider it fails with provider.ErrNoProvider.
func (s *Session) Connect(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", provider.ErrNoProvider
	}
	s.set(Connecting, "")
	var accounts []string
	if err := provider.RequestInto(ctx, s.provider, &accounts, provider.MethodRequestAccounts); err != nil {
		s.set(Disconnected, "")
		return "", fmt.Errorf("couldn't connect wallet: %w", err)
	}
	if len(accounts) == 0 {
		s.set(Disconnected, "")
		return "", ErrNoAccounts
	}
	s.set(Connected, accounts[0])
	s.log.Info("wallet connected", zap.String("account", accounts[0]))
	return accounts[0], nil
}

// DetectExisting returns the first account the wallet already authorized,
// without prompting.
func (s *Session) DetectExisting(ctx context.Context) (string, bool, error) {
	if s.provider == nil {
		return "", false, provider.ErrNoProvider
	}
	var accounts []string
	if err := provider.RequestInto(ctx, s.provider, &accounts, provider.MethodAccounts); err != nil {
		return "", false, err
	}
	if len(accounts) == 0 {
		s.log.Debug("no authorized account found")
		return "", false, nil
	}
	s.set(Connected, accounts[0])
	s.log.Debug("found an authorized account", zap.String("account", accounts[0]))
	return accounts[0], true, nil
}

// OnNetworkChanged calls handler with the new chain id every time the
// wallet changes network. Payloads that aren't a chain id are logged and
// dropped.
func (s *Session) OnNetworkChanged(handler func(chainID uint64)) func() {
	if s.provider == nil {
		return func() {}
	}
	return s.provider.On(provider.EventChainChanged, func(payload json.RawMessage) {
		var raw string
		if err := json.Unmarshal(payload, &raw); err != nil {
			s.log.Warn("unexpected chainChanged payload", zap.ByteString("payload", payload), zap.Error(err))
			return
		}
		id, err := networks.ParseChainID(raw)
		if err != nil {
			s.log.Warn("unexpected chainChanged payload", zap.String("payload", raw), zap.Error(err))
			return
		}
		handler(id)
	})
}

// OnAccountsChanged calls handler with the wallet's new first account,
// empty when it revoked access.
func (s *Session) OnAccountsChanged(handler func(account string)) func() {
	if s.provider == nil {
		return func() {}
	}
	return s.provider.On(provider.EventAccountsChanged, func(payload json.RawMessage) {
		var accounts []string
		if err := json.Unmarshal(payload, &accounts); err != nil {
			s.log.Warn("unexpected accountsChanged payload", zap.ByteString("payload", payload), zap.Error(err))
			return
		}
		account := ""
		if len(accounts) > 0 {
			account = accounts[0]
		}
		handler(account)
	})
}

func (s *Session) Reset() {
	s.set(Disconnected, "")
}
