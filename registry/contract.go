package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/util/monitor"
)

// ErrNoAccount is returned by writes when no account is connected.
var ErrNoAccount = fmt.Errorf("no connected account to send from")

// Contract is the registry reached through a wallet provider: reads go
// through eth_call, writes are eth_sendTransaction requests the wallet
// signs, and receipts are polled with eth_getTransactionReceipt.
type Contract struct {
	Address  common.Address
	provider provider.Provider
	abi      *abi.ABI
	from     func() string
	monitor  *monitor.TxMonitor
	log      *zap.Logger
}

type ContractOption func(*Contract)

// WithPollInterval sets how often receipts are polled while waiting.
func WithPollInterval(d time.Duration) ContractOption {
	return func(c *Contract) {
		c.monitor = monitor.NewTxMonitor(receiptReader{c.provider}, d)
	}
}

func WithContractLogger(log *zap.Logger) ContractOption {
	return func(c *Contract) { c.log = log }
}

// NewContract binds the registry at address. from returns the account
// writes are sent from, an empty string when none is connected.
func NewContract(p provider.Provider, address string, from func() string, opts ...ContractOption) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid registry address %q", address)
	}
	a, err := abi.JSON(strings.NewReader(REGISTRY_ABI))
	if err != nil {
		return nil, err
	}
	c := &Contract{
		Address:  common.HexToAddress(address),
		provider: p,
		abi:      &a,
		from:     from,
		monitor:  monitor.NewTxMonitor(receiptReader{p}, monitor.DefaultInterval),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type callArgs struct {
	From *common.Address `json:"from,omitempty"`
	To   common.Address  `json:"to"`
	Data hexutil.Bytes   `json:"data"`
}

func (c *Contract) read(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("couldn't pack %s: %w", method, err)
	}
	var response hexutil.Bytes
	if err := provider.RequestInto(ctx, c.provider, &response, provider.MethodCall, callArgs{
		To:   c.Address,
		Data: data,
	}, "latest"); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := c.abi.UnpackIntoInterface(result, method, response); err != nil {
		return fmt.Errorf("couldn't unpack %s: %w", method, err)
	}
	return nil
}

func (c *Contract) GetAllNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := c.read(ctx, &names, "getAllNames"); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Contract) Records(ctx context.Context, name string) (string, error) {
	var record string
	err := c.read(ctx, &record, "records", name)
	return record, err
}

func (c *Contract) Domains(ctx context.Context, name string) (common.Address, error) {
	var owner common.Address
	err := c.read(ctx, &owner, "domains", name)
	return owner, err
}

type sendArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value,omitempty"`
	Data  hexutil.Bytes  `json:"data"`
}

func (c *Contract) send(ctx context.Context, value *big.Int, method string, args ...interface{}) (Tx, error) {
	from := ""
	if c.from != nil {
		from = c.from()
	}
	if !common.IsHexAddress(from) {
		return nil, ErrNoAccount
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", method, err)
	}
	params := sendArgs{
		From: common.HexToAddress(from),
		To:   c.Address,
		Data: data,
	}
	if value != nil && value.Sign() > 0 {
		params.Value = (*hexutil.Big)(value)
	}
	var hash common.Hash
	if err := provider.RequestInto(ctx, c.provider, &hash, provider.MethodSendTransaction, params); err != nil {
		return nil, err
	}
	c.log.Debug("registry tx submitted", zap.String("method", method), zap.String("hash", hash.Hex()))
	return &contractTx{hash: hash, monitor: c.monitor}, nil
}

func (c *Contract) Register(ctx context.Context, name string, value *big.Int) (Tx, error) {
	return c.send(ctx, value, "register", name)
}

func (c *Contract) SetRecord(ctx context.Context, name string, record string) (Tx, error) {
	return c.send(ctx, nil, "setRecord", name, record)
}

type contractTx struct {
	hash    common.Hash
	monitor *monitor.TxMonitor
}

func (t *contractTx) Hash() common.Hash {
	return t.hash
}

func (t *contractTx) Wait(ctx context.Context) (*ajercommon.Receipt, error) {
	return t.monitor.BlockingWait(ctx, t.hash)
}

type receiptReader struct {
	p provider.Provider
}

func (r receiptReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*ajercommon.Receipt, error) {
	var receipt *ajercommon.Receipt
	if err := provider.RequestInto(ctx, r.p, &receipt, provider.MethodTransactionReceipt, hash); err != nil {
		return nil, err
	}
	return receipt, nil
}
