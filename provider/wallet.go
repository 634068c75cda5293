package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/util/account"
	"github.com/tranvictor/ajer/util/broadcaster"
	"github.com/tranvictor/ajer/util/reader"
)

// passthroughMethods are answered by the current chain's nodes.
var passthroughMethods = map[string]bool{
	MethodCall:                 true,
	MethodTransactionReceipt:   true,
	"eth_blockNumber":          true,
	"eth_getBalance":           true,
	"eth_gasPrice":             true,
	"eth_estimateGas":          true,
	"eth_getTransactionByHash": true,
}

// Unlocker produces the wallet's account the first time a site asks for it.
type Unlocker func() (*account.Account, error)

// Approver shows prompt to the wallet owner and reports whether they
// accepted.
type Approver func(prompt string) bool

type ReaderFactory func(n networks.Network) (*reader.EthReader, error)

// Wallet is a local, keystore backed wallet that answers the same requests
// a browser wallet does. It knows its own list of chains, which is
// independent from the client's known-network table.
type Wallet struct {
	mu         sync.Mutex
	unlock     Unlocker
	approve    Approver
	account    *account.Account
	authorized bool
	chains     *networks.Table
	chainDir   string
	chainID    uint64
	readers    map[uint64]*reader.EthReader
	newReader  ReaderFactory
	hub        *Hub
	log        *zap.Logger
}

type WalletOption func(*Wallet)

func WithApprover(a Approver) WalletOption {
	return func(w *Wallet) { w.approve = a }
}

// WithChains replaces the chains the wallet starts with.
func WithChains(list ...networks.Network) WalletOption {
	return func(w *Wallet) { w.chains = networks.NewTable(list...) }
}

// WithChainDir makes chains added through wallet_addEthereumChain persist
// in dir, and loads the ones stored there.
func WithChainDir(dir string) WalletOption {
	return func(w *Wallet) { w.chainDir = dir }
}

func WithChainID(id uint64) WalletOption {
	return func(w *Wallet) { w.chainID = id }
}

func WithReaderFactory(f ReaderFactory) WalletOption {
	return func(w *Wallet) { w.newReader = f }
}

func WithLogger(log *zap.Logger) WalletOption {
	return func(w *Wallet) { w.log = log }
}

// DefaultWalletChains is what a fresh wallet knows: main networks only,
// test networks have to be added.
func DefaultWalletChains() []networks.Network {
	result := []networks.Network{}
	for _, n := range networks.GetSupportedNetworks() {
		if !n.IsTestnet() {
			result = append(result, n)
		}
	}
	return result
}

func defaultReaderFactory(n networks.Network) (*reader.EthReader, error) {
	nodes, err := networks.GetNodes(n)
	if err != nil {
		return nil, err
	}
	return reader.NewEthReaderGeneric(nodes), nil
}

func NewWallet(unlock Unlocker, opts ...WalletOption) (*Wallet, error) {
	w := &Wallet{
		unlock:    unlock,
		chains:    networks.NewTable(DefaultWalletChains()...),
		chainID:   networks.EthereumMainnet.GetChainID(),
		readers:   map[uint64]*reader.EthReader{},
		newReader: defaultReaderFactory,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	w.hub = NewHub(w.log)
	if w.chainDir != "" {
		stored, err := networks.LoadNetworks(w.chainDir)
		if err != nil {
			w.log.Warn("some stored wallet chains were skipped", zap.Error(err))
		}
		for _, n := range stored {
			w.chains.Add(n)
		}
	}
	if _, err := w.chains.ByID(w.chainID); err != nil {
		return nil, fmt.Errorf("wallet starts on chain %d which it doesn't know: %w", w.chainID, err)
	}
	return w, nil
}

func (w *Wallet) On(event string, handler func(json.RawMessage)) func() {
	return w.hub.On(event, handler)
}

func (w *Wallet) ChainID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

// Chains lists the chains the wallet can switch to, sorted by chain id.
func (w *Wallet) Chains() []networks.Network {
	return w.chains.List()
}

func (w *Wallet) confirm(prompt string) bool {
	if w.approve == nil {
		return true
	}
	return w.approve(prompt)
}

func (w *Wallet) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	var (
		result interface{}
		err    error
	)
	switch method {
	case MethodRequestAccounts:
		result, err = w.requestAccounts()
	case MethodAccounts:
		result = w.accounts()
	case MethodChainID:
		result = networks.ChainIDHex(w.ChainID())
	case MethodSwitchChain:
		err = w.switchChain(params)
	case MethodAddChain:
		err = w.addChain(params)
	case MethodSendTransaction:
		result, err = w.sendTransaction(ctx, params)
	default:
		if !passthroughMethods[method] {
			return nil, NewError(CodeUnsupportedMethod, "method %s is not supported by this wallet", method)
		}
		return w.passthrough(ctx, method, params...)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (w *Wallet) requestAccounts() ([]string, error) {
	w.mu.Lock()
	if w.authorized {
		defer w.mu.Unlock()
		return []string{strings.ToLower(w.account.AddressHex())}, nil
	}
	w.mu.Unlock()

	if !w.confirm("Connect your wallet account to the ajer name service?") {
		return nil, NewError(CodeUserRejected, "user rejected the request")
	}
	if w.unlock == nil {
		return nil, NewError(CodeUnauthorized, "wallet has no account")
	}
	acc, err := w.unlock()
	if err != nil {
		return nil, NewError(CodeUnauthorized, "couldn't unlock account: %s", err)
	}

	w.mu.Lock()
	w.account = acc
	w.authorized = true
	accounts := []string{strings.ToLower(acc.AddressHex())}
	w.mu.Unlock()

	w.hub.Emit(EventAccountsChanged, accounts)
	return accounts, nil
}

func (w *Wallet) accounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.authorized {
		return []string{}
	}
	return []string{strings.ToLower(w.account.AddressHex())}
}

func decodeParam(params []interface{}, i int, dst interface{}) error {
	if len(params) <= i {
		return NewError(CodeInvalidParams, "missing parameter %d", i)
	}
	raw, err := json.Marshal(params[i])
	if err != nil {
		return NewError(CodeInvalidParams, "invalid parameter %d: %s", i, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return NewError(CodeInvalidParams, "invalid parameter %d: %s", i, err)
	}
	return nil
}

func (w *Wallet) switchChain(params []interface{}) error {
	var p networks.SwitchChainParam
	if err := decodeParam(params, 0, &p); err != nil {
		return err
	}
	id, err := networks.ParseChainID(p.ChainID)
	if err != nil {
		return NewError(CodeInvalidParams, "%s", err)
	}
	n, err := w.chains.ByID(id)
	if err != nil {
		return NewError(CodeUnrecognizedChain, "unrecognized chain id %s, try adding the chain first", p.ChainID)
	}
	if w.ChainID() == id {
		return nil
	}
	if !w.confirm(fmt.Sprintf("Allow switching the network to %s?", n.GetDisplayName())) {
		return NewError(CodeUserRejected, "user rejected the request")
	}
	w.setChain(id)
	return nil
}

func (w *Wallet) setChain(id uint64) {
	w.mu.Lock()
	w.chainID = id
	w.mu.Unlock()
	w.log.Info("wallet switched chain", zap.Uint64("chain_id", id))
	w.hub.Emit(EventChainChanged, networks.ChainIDHex(id))
}

// addChain registers the chain and, like browser wallets do, immediately
// offers to switch to it.
func (w *Wallet) addChain(params []interface{}) error {
	var d networks.ChainDescriptor
	if err := decodeParam(params, 0, &d); err != nil {
		return err
	}
	n, err := networks.NetworkFromDescriptor(d)
	if err != nil {
		return NewError(CodeInvalidParams, "%s", err)
	}
	if _, err := w.chains.ByID(n.GetChainID()); err != nil {
		if !w.confirm(fmt.Sprintf("Allow adding the network %s (chain %d)?", n.GetDisplayName(), n.GetChainID())) {
			return NewError(CodeUserRejected, "user rejected the request")
		}
		w.chains.Add(n)
		if w.chainDir != "" {
			if err := networks.SaveNetwork(w.chainDir, n); err != nil {
				w.log.Warn("couldn't persist added chain", zap.Uint64("chain_id", n.GetChainID()), zap.Error(err))
			}
		}
	}
	if w.ChainID() != n.GetChainID() && w.confirm(fmt.Sprintf("Switch the network to %s?", n.GetDisplayName())) {
		w.setChain(n.GetChainID())
	}
	return nil
}

func (w *Wallet) currentReader() (*reader.EthReader, networks.Network, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.chains.ByID(w.chainID)
	if err != nil {
		return nil, nil, NewError(CodeInternal, "%s", err)
	}
	if r, ok := w.readers[w.chainID]; ok {
		return r, n, nil
	}
	r, err := w.newReader(n)
	if err != nil {
		return nil, nil, NewError(CodeInternal, "couldn't reach %s: %s", n.GetDisplayName(), err)
	}
	w.readers[w.chainID] = r
	return r, n, nil
}

func (w *Wallet) passthrough(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	r, _, err := w.currentReader()
	if err != nil {
		return nil, err
	}
	return r.Call(ctx, method, params...)
}

// TxArgs is the eth_sendTransaction parameter object.
type TxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

func (w *Wallet) sendTransaction(ctx context.Context, params []interface{}) (common.Hash, error) {
	var args TxArgs
	if err := decodeParam(params, 0, &args); err != nil {
		return common.Hash{}, err
	}

	w.mu.Lock()
	acc, authorized := w.account, w.authorized
	chainID := w.chainID
	w.mu.Unlock()
	if !authorized {
		return common.Hash{}, NewError(CodeUnauthorized, "account is not connected")
	}
	if args.From != acc.Address() {
		return common.Hash{}, NewError(CodeUnauthorized, "account %s is not managed by this wallet", args.From.Hex())
	}

	r, n, err := w.currentReader()
	if err != nil {
		return common.Hash{}, err
	}
	value := big.NewInt(0)
	if args.Value != nil {
		value = args.Value.ToInt()
	}
	prompt := fmt.Sprintf(
		"Sign a transaction on %s from %s, value %s %s?",
		n.GetDisplayName(), acc.AddressHex(),
		ajercommon.BigToFloatString(value, n.GetNativeTokenDecimal()), n.GetNativeTokenSymbol(),
	)
	if !w.confirm(prompt) {
		return common.Hash{}, NewError(CodeUserRejected, "user rejected the transaction")
	}

	nonce, err := r.GetPendingNonce(ctx, acc.Address())
	if err != nil {
		return common.Hash{}, NewError(CodeInternal, "couldn't get nonce: %s", err)
	}
	gasPrice, err := r.GetGasPriceWeiSuggestion(ctx)
	if err != nil {
		return common.Hash{}, NewError(CodeInternal, "couldn't get gas price: %s", err)
	}
	var gas uint64
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	} else {
		gas, err = r.EstimateGas(ctx, ethereum.CallMsg{
			From:  acc.Address(),
			To:    args.To,
			Value: value,
			Data:  args.Data,
		})
		if err != nil {
			return common.Hash{}, NewError(CodeInternal, "couldn't estimate gas: %s", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       args.To,
		Value:    value,
		Data:     args.Data,
	})
	signed, err := acc.SignTx(tx, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, NewError(CodeInternal, "%s", err)
	}
	hash, broadcasted, err := broadcaster.NewBroadcaster(r).BroadcastTx(ctx, signed)
	if !broadcasted {
		return common.Hash{}, NewError(CodeInternal, "couldn't broadcast tx: %s", err)
	}
	w.log.Info("transaction broadcasted", zap.String("hash", hash.Hex()), zap.Uint64("nonce", nonce))
	return hash, nil
}
