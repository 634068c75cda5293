// Package app drives the name service on behalf of one user: it connects
// the wallet, keeps it on the registry's network, mints names and keeps
// the list of minted names up to date.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tranvictor/ajer/guard"
	"github.com/tranvictor/ajer/mint"
	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/records"
	"github.com/tranvictor/ajer/registry"
	"github.com/tranvictor/ajer/session"
	"github.com/tranvictor/ajer/ui"
)

var (
	ErrNotConnected   = errors.New("wallet is not connected")
	ErrSwitchRequired = errors.New("wallet is on the wrong network, switch network first")
	ErrNotOwner       = errors.New("only the owner of a name can change its record")
)

type Client struct {
	provider provider.Provider
	ui       ui.UI
	log      *zap.Logger

	gen      *session.Generation
	session  *session.Session
	guard    *guard.Guard
	store    *records.Store
	workflow *mint.Workflow

	onRefresh func([]records.Record)

	mu          sync.Mutex
	unsubscribe []func()
}

type options struct {
	target       networks.Network
	pricing      mint.Pricing
	refreshDelay time.Duration
	concurrency  int
	session      *session.Session
	onRefresh    func([]records.Record)
	log          *zap.Logger
}

type Option func(*options)

func WithTarget(n networks.Network) Option {
	return func(o *options) { o.target = n }
}

func WithPricing(p mint.Pricing) Option {
	return func(o *options) { o.pricing = p }
}

func WithRefreshDelay(d time.Duration) Option {
	return func(o *options) { o.refreshDelay = d }
}

func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithSession shares s with the registry, whose writes are sent from the
// session's account.
func WithSession(s *session.Session) Option {
	return func(o *options) { o.session = s }
}

// WithOnRefresh is called with the new list after every successful
// refresh.
func WithOnRefresh(fn func([]records.Record)) Option {
	return func(o *options) { o.onRefresh = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func New(p provider.Provider, r registry.Registry, u ui.UI, opts ...Option) *Client {
	o := options{
		target:       networks.DefaultTarget,
		pricing:      mint.DefaultPricing(),
		refreshDelay: mint.DefaultRefreshDelay,
		concurrency:  records.DefaultConcurrency,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == nil {
		o.session = session.New(p, o.log)
	}

	c := &Client{
		provider:  p,
		ui:        u,
		log:       o.log,
		gen:       &session.Generation{},
		session:   o.session,
		onRefresh: o.onRefresh,
	}
	c.guard = guard.New(p, o.target, o.log)
	c.store = records.NewStore(r,
		records.WithConcurrency(o.concurrency),
		records.WithGeneration(c.gen),
		records.WithLogger(o.log),
	)
	c.workflow = mint.NewWorkflow(r,
		mint.WithPricing(o.pricing),
		mint.WithGeneration(c.gen),
		mint.WithRefresh(func(ctx context.Context) { c.Refresh(ctx) }, o.refreshDelay),
		mint.WithLogger(o.log),
	)
	return c
}

func (c *Client) Account() string {
	return c.session.Account()
}

func (c *Client) Network() guard.NetworkState {
	return c.guard.Network()
}

func (c *Client) Target() networks.Network {
	return c.guard.Target()
}

func (c *Client) GuardState() guard.State {
	return c.guard.State()
}

func (c *Client) Ready() bool {
	return c.guard.Ready()
}

func (c *Client) Pricing() mint.Pricing {
	return c.workflow.Pricing()
}

func (c *Client) Draft() mint.Draft {
	return c.workflow.Draft()
}

// Start picks up an account the wallet already authorized, checks its
// network and loads the records once the network is right. It never
// prompts the wallet's owner.
func (c *Client) Start(ctx context.Context) error {
	if c.provider == nil {
		c.ui.Critical("No wallet found. Configure a keystore or a wallet url, see `ajer config init`.")
		return provider.ErrNoProvider
	}
	if _, _, err := c.session.DetectExisting(ctx); err != nil {
		return fmt.Errorf("couldn't read the wallet's accounts: %w", err)
	}
	c.subscribe()

	state, err := c.guard.Check(ctx)
	if err != nil {
		return fmt.Errorf("couldn't read the wallet's network: %w", err)
	}
	if !c.guard.Ready() {
		c.log.Info("wallet is on another network", zap.Stringer("network", state))
		return nil
	}
	c.Refresh(ctx)
	return nil
}

func (c *Client) subscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = []func(){
		c.session.OnNetworkChanged(func(chainID uint64) {
			c.log.Info("wallet changed network", zap.Uint64("chain_id", chainID))
			if err := c.Reload(context.Background()); err != nil {
				c.log.Warn("reload failed", zap.Error(err))
			}
		}),
		c.session.OnAccountsChanged(func(account string) {
			c.log.Info("wallet changed account", zap.String("account", account))
			if account == "" {
				c.session.Reset()
				return
			}
			if _, _, err := c.session.DetectExisting(context.Background()); err != nil {
				c.log.Warn("couldn't read the wallet's accounts", zap.Error(err))
			}
		}),
	}
}

// Reload treats everything known so far as stale: work started before it
// can no longer publish results, then the client starts over.
func (c *Client) Reload(ctx context.Context) error {
	c.gen.Advance()
	c.workflow.Reset()
	c.store.Reset()
	c.guard.Reset()
	c.session.Reset()
	c.ui.Info("Wallet network changed, reloading.")
	return c.Start(ctx)
}

// Close drops the wallet subscriptions and pending refreshes.
func (c *Client) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	for _, u := range unsubscribe {
		u()
	}
	c.workflow.Reset()
}

// Connect asks the wallet for access to its account.
func (c *Client) Connect(ctx context.Context) (string, error) {
	account, err := c.session.Connect(ctx)
	switch {
	case errors.Is(err, provider.ErrNoProvider):
		c.ui.Critical("No wallet found. Configure a keystore or a wallet url, see `ajer config init`.")
		return "", err
	case provider.IsUserRejected(err):
		c.ui.Error("Connection request rejected in the wallet.")
		return "", err
	case err != nil:
		c.ui.Error("Couldn't connect the wallet: %s", err)
		return "", err
	}
	c.subscribe()
	if c.guard.State() == guard.Unchecked {
		if _, err := c.guard.Check(ctx); err != nil {
			c.log.Warn("couldn't read the wallet's network", zap.Error(err))
		}
	}
	return account, nil
}

// SwitchNetwork moves the wallet to the target network, adding it to the
// wallet first if needed.
func (c *Client) SwitchNetwork(ctx context.Context) error {
	target := c.guard.Target()
	if err := c.guard.SwitchNetwork(ctx); err != nil {
		if provider.IsUserRejected(err) {
			c.ui.Error("Network switch rejected in the wallet.")
		} else {
			c.ui.Error("Couldn't switch to %s: %s", target.GetDisplayName(), err)
		}
		return err
	}
	switch c.guard.State() {
	case guard.Ready:
		c.ui.Success("Wallet is on %s.", target.GetDisplayName())
		c.Refresh(ctx)
	case guard.PendingSwitchRetry:
		c.ui.Warn("%s was added to the wallet. Switch to it there, then run this again.", target.GetDisplayName())
	}
	return nil
}

func (c *Client) requireWritable() error {
	if c.session.Account() == "" {
		c.ui.Critical("Connect your wallet first.")
		return ErrNotConnected
	}
	if !c.guard.Ready() {
		c.ui.Critical("Please connect to %s. Run `ajer network switch`.", c.guard.Target().GetDisplayName())
		return ErrSwitchRequired
	}
	return nil
}

// Mint registers name and sets its record.
func (c *Client) Mint(ctx context.Context, name, record string) (mint.Outcome, error) {
	if err := c.requireWritable(); err != nil {
		return mint.Outcome{}, err
	}
	c.workflow.SetDraft(name, record)
	done := c.ui.Spinner(fmt.Sprintf("Minting %s", records.Record{Name: name}.DisplayName()))
	out, err := c.workflow.Mint(ctx)
	done()
	c.report(out, err)
	return out, err
}

// UpdateRecord changes the record of a name the connected account owns.
func (c *Client) UpdateRecord(ctx context.Context, name, record string) (mint.Outcome, error) {
	if err := c.requireWritable(); err != nil {
		return mint.Outcome{}, err
	}
	owned, err := c.owns(ctx, name)
	if err != nil {
		c.ui.Error("Couldn't read the owner of %s: %s", name, err)
		return mint.Outcome{}, err
	}
	if !owned {
		c.ui.Critical("%s is not yours to edit.", records.Record{Name: name}.DisplayName())
		return mint.Outcome{}, ErrNotOwner
	}

	c.workflow.Edit(name)
	c.workflow.SetDraft(name, record)
	done := c.ui.Spinner(fmt.Sprintf("Updating the record of %s", records.Record{Name: name}.DisplayName()))
	out, err := c.workflow.SetRecordOnly(ctx)
	done()
	c.report(out, err)
	if err == nil && out.Status == mint.StatusRecordSet {
		c.Refresh(ctx)
	}
	return out, err
}

func (c *Client) owns(ctx context.Context, name string) (bool, error) {
	account := c.session.Account()
	for _, r := range c.store.Records() {
		if r.Name == name {
			return r.EditableBy(account), nil
		}
	}
	list, err := c.store.Refresh(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range list {
		if r.Name == name {
			return r.EditableBy(account), nil
		}
	}
	return false, nil
}

func (c *Client) txLink(hash common.Hash) string {
	if url := networks.TxURL(c.guard.Target(), hash.Hex()); url != "" {
		return url
	}
	return hash.Hex()
}

func (c *Client) report(out mint.Outcome, err error) {
	var (
		tooShort *mint.NameTooShortError
		failed   *mint.MintFailedError
		partial  *mint.PartialMintError
		record   *mint.RecordFailedError
	)
	switch {
	case err == nil:
	case errors.As(err, &tooShort):
		c.ui.Critical("Name must be at least %d characters long.", mint.MinNameLength)
		return
	case errors.Is(err, mint.ErrBusy):
		c.ui.Warn("Another transaction is still in progress.")
		return
	case errors.As(err, &partial):
		c.ui.Success("Domain minted! %s", c.txLink(partial.RegisterTx))
		c.ui.Error("Setting the record of %s failed. Retry with `ajer record %s <record>`.",
			records.Record{Name: partial.Name}.DisplayName(), partial.Name)
		return
	case provider.IsUserRejected(err):
		c.ui.Error("Transaction rejected in the wallet.")
		return
	case errors.As(err, &failed):
		if failed.TxHash != (common.Hash{}) {
			c.ui.Error("Transaction failed, please try again: %s", c.txLink(failed.TxHash))
		} else {
			c.ui.Error("Transaction failed, please try again: %s", failed.Err)
		}
		return
	case errors.As(err, &record):
		c.ui.Error("Updating the record of %s failed, please try again.", records.Record{Name: record.Name}.DisplayName())
		return
	default:
		c.ui.Error("%s", err)
		return
	}

	switch out.Status {
	case mint.StatusMinted:
		c.ui.Success("Domain minted! %s", c.txLink(out.RegisterTx))
		c.ui.Success("Record set! %s", c.txLink(out.RecordTx))
		c.ui.Info("Your name %s has been minted with record [%s]", records.Record{Name: out.Name}.DisplayName(), out.Record)
	case mint.StatusRecordSet:
		c.ui.Success("Record set! %s", c.txLink(out.RecordTx))
	}
}

// Refresh reloads every minted name. Failures are only logged, the
// previous list stays available.
func (c *Client) Refresh(ctx context.Context) ([]records.Record, error) {
	list, err := c.store.Refresh(ctx)
	if errors.Is(err, records.ErrStale) {
		return nil, err
	}
	if err != nil {
		c.log.Warn("couldn't refresh the records", zap.Error(err))
		return nil, err
	}
	if c.onRefresh != nil {
		c.onRefresh(list)
	}
	return list, nil
}

func (c *Client) Records() []records.Record {
	return c.store.Records()
}

// Editable lists the names the connected account may change.
func (c *Client) Editable() []records.Record {
	return records.OwnedBy(c.store.Records(), c.session.Account())
}
