// Package provider defines how the client reaches a wallet: a request /
// response channel plus event subscriptions, in the shape browser wallets
// expose (EIP-1193).
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

const (
	MethodRequestAccounts    = "eth_requestAccounts"
	MethodAccounts           = "eth_accounts"
	MethodChainID            = "eth_chainId"
	MethodSwitchChain        = "wallet_switchEthereumChain"
	MethodAddChain           = "wallet_addEthereumChain"
	MethodCall               = "eth_call"
	MethodSendTransaction    = "eth_sendTransaction"
	MethodTransactionReceipt = "eth_getTransactionReceipt"

	EventChainChanged    = "chainChanged"
	EventAccountsChanged = "accountsChanged"
)

// Error codes wallets report, EIP-1193 and EIP-3085 plus the json-rpc ones
// this client looks at.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeUnrecognizedChain = 4902
	CodeMethodNotFound    = -32601
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

// ErrNoProvider means no wallet is configured at all. Retrying without
// configuring one is pointless.
var ErrNoProvider = errors.New("no wallet provider found, configure a keystore or a wallet url")

type Provider interface {
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	// On registers handler for event and returns a function that removes
	// it. Handlers run on a dedicated goroutine per subscription, in event
	// order.
	On(event string, handler func(payload json.RawMessage)) (unsubscribe func())
}

// Error is a wallet error carrying a numeric code. It satisfies
// go-ethereum's rpc.Error and rpc.DataError so it travels over json-rpc
// unchanged.
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

func NewError(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) ErrorCode() int {
	return e.Code
}

func (e *Error) ErrorData() interface{} {
	return e.Data
}

// ErrorCode extracts the wallet error code of err, whether it came from a
// local wallet or over json-rpc.
func ErrorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

func hasCode(err error, code int) bool {
	c, ok := ErrorCode(err)
	return ok && c == code
}

func IsUserRejected(err error) bool {
	return hasCode(err, CodeUserRejected)
}

func IsUnrecognizedChain(err error) bool {
	return hasCode(err, CodeUnrecognizedChain)
}

// RequestInto performs a request and decodes its result into result.
func RequestInto(ctx context.Context, p Provider, result interface{}, method string, params ...interface{}) error {
	if p == nil {
		return ErrNoProvider
	}
	raw, err := p.Request(ctx, method, params...)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("couldn't decode %s result: %w", method, err)
	}
	return nil
}
