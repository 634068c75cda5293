package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tranvictor/ajer/app"
	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/config"
	"github.com/tranvictor/ajer/mint"
	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/records"
	"github.com/tranvictor/ajer/registry"
	"github.com/tranvictor/ajer/session"
	"github.com/tranvictor/ajer/ui"
	"github.com/tranvictor/ajer/util/account"
)

// env is everything a command needs, built from the config file and the
// flags.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	ui     ui.UI
	target networks.Network
	client *app.Client
	close  func()
}

func loadConfig(u ui.UI) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		return cfg, nil, err
	}
	cfg.ApplyFlags()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}

	stored, err := networks.LoadNetworks(cfg.NetworkDir)
	var skipped *networks.SkippedFilesError
	if errors.As(err, &skipped) {
		u.Warn("Some network files in %s were skipped: %s", cfg.NetworkDir, err)
	} else if err != nil {
		return cfg, nil, err
	}
	for _, n := range stored {
		networks.AddNetwork(n)
	}
	return cfg, log, nil
}

// newWallet unlocks cfg's keystore the first time a command needs the
// account. Every wallet prompt goes through u unless --yes is set.
func newWallet(cfg config.Config, u ui.UI, log *zap.Logger) (*provider.Wallet, error) {
	chain, err := networks.Resolve(cfg.WalletChain)
	if err != nil {
		return nil, err
	}
	unlock := func() (*account.Account, error) {
		pw, err := u.Password(fmt.Sprintf("Password of %s", cfg.Keystore))
		if err != nil {
			return nil, err
		}
		return account.NewKeystoreAccount(cfg.Keystore, pw)
	}
	approve := func(prompt string) bool {
		if config.AutoApprove {
			u.Info("%s yes", prompt)
			return true
		}
		return u.Confirm(prompt, true)
	}
	return provider.NewWallet(unlock,
		provider.WithApprover(approve),
		provider.WithChainID(chain.GetChainID()),
		provider.WithChainDir(cfg.WalletChainDir),
		provider.WithLogger(log.Named("wallet")),
	)
}

// newProvider picks the wallet daemon when a url is configured, the local
// keystore wallet otherwise. Without either it returns nil and the client
// reports that no wallet is available.
func newProvider(ctx context.Context, cfg config.Config, u ui.UI, log *zap.Logger) (provider.Provider, func(), error) {
	switch {
	case cfg.WalletURL != "":
		p, err := provider.Dial(ctx, cfg.WalletURL, log.Named("provider"))
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case cfg.Keystore != "":
		w, err := newWallet(cfg, u, log)
		if err != nil {
			return nil, nil, err
		}
		return w, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func targetAndPricing(cfg config.Config) (networks.Network, mint.Pricing, error) {
	target, err := networks.Resolve(cfg.Network)
	if err != nil {
		return nil, mint.Pricing{}, err
	}
	pricing, err := mint.ParsePricing(cfg.Prices.Short, cfg.Prices.Medium, cfg.Prices.Long, target.GetNativeTokenDecimal())
	if err != nil {
		return nil, mint.Pricing{}, fmt.Errorf("invalid prices in config: %w", err)
	}
	return target, pricing, nil
}

// setup builds the client and starts it. Callers must call env.close.
func setup(ctx context.Context, opts ...app.Option) (*env, error) {
	u := ui.NewTerminalUI()
	cfg, log, err := loadConfig(u)
	if err != nil {
		return nil, err
	}
	target, pricing, err := targetAndPricing(cfg)
	if err != nil {
		return nil, err
	}

	p, closeProvider, err := newProvider(ctx, cfg, u, log)
	if err != nil {
		return nil, err
	}
	sess := session.New(p, log.Named("session"))
	contract, err := registry.NewContract(p, cfg.Contract, sess.Account,
		registry.WithPollInterval(cfg.PollInterval.Duration),
		registry.WithContractLogger(log.Named("registry")),
	)
	if err != nil {
		closeProvider()
		return nil, err
	}

	opts = append([]app.Option{
		app.WithTarget(target),
		app.WithPricing(pricing),
		app.WithRefreshDelay(cfg.RefreshDelay.Duration),
		app.WithConcurrency(cfg.ReadConcurrency),
		app.WithSession(sess),
		app.WithLogger(log),
	}, opts...)
	client := app.New(p, contract, u, opts...)

	e := &env{
		cfg:    cfg,
		log:    log,
		ui:     u,
		target: target,
		client: client,
		close: func() {
			client.Close()
			closeProvider()
			_ = log.Sync()
		},
	}
	if err := client.Start(ctx); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// ensureConnected connects the wallet and, when it is on another network,
// offers to switch it.
func (e *env) ensureConnected(ctx context.Context) error {
	if e.client.Account() == "" {
		if _, err := e.client.Connect(ctx); err != nil {
			return err
		}
	}
	if e.client.Ready() {
		return nil
	}
	e.ui.Warn("Your wallet is on %s.", e.client.Network())
	if !config.AutoApprove && !e.ui.Confirm(fmt.Sprintf("Switch it to %s?", e.target.GetDisplayName()), true) {
		return app.ErrSwitchRequired
	}
	return e.client.SwitchNetwork(ctx)
}

func (e *env) showNetwork() {
	account := e.client.Account()
	if account == "" {
		account = "not connected"
	}
	e.ui.KeyValue([][2]string{
		{"Wallet", account},
		{"Network", e.client.Network().String()},
		{"Target", fmt.Sprintf("%s (%d)", e.target.GetDisplayName(), e.target.GetChainID())},
		{"Status", e.client.GuardState().String()},
	})
}

func showPrices(u ui.UI, pricing mint.Pricing, n networks.Network) {
	labels := map[mint.Tier]string{
		mint.TierShort:  "3 characters",
		mint.TierMedium: "4 characters",
		mint.TierLong:   "5+ characters",
	}
	rows := [][2]string{}
	for _, t := range []mint.Tier{mint.TierShort, mint.TierMedium, mint.TierLong} {
		rows = append(rows, [2]string{
			labels[t],
			fmt.Sprintf("%s %s", ajercommon.BigToFloatString(pricing.Of(t), n.GetNativeTokenDecimal()), n.GetNativeTokenSymbol()),
		})
	}
	u.KeyValue(rows)
}

func showRecords(u ui.UI, list []records.Record, account string) {
	if len(list) == 0 {
		u.Info("No names minted yet.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		name := r.DisplayName()
		if r.EditableBy(account) {
			name = u.Style(ui.StyledText{Text: name + " (yours)", Severity: ui.SeveritySuccess})
		}
		rows = append(rows, []string{fmt.Sprintf("%d", r.Index), name, r.Record, r.Owner.Hex()})
	}
	u.Table([]string{"#", "Name", "Record", "Owner"}, rows)
}
