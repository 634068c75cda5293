package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// EthReader fans every read out to all of its nodes and returns the first
// successful answer.
type EthReader struct {
	nodes []*OneNodeReader
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	ns := make([]*OneNodeReader, 0, len(names))
	for _, name := range names {
		ns = append(ns, NewOneNodeReader(name, nodes[name]))
	}
	return &EthReader{nodes: ns}
}

func NewEthReaderFromNodes(nodes ...*OneNodeReader) *EthReader {
	return &EthReader{nodes: nodes}
}

func (er *EthReader) Nodes() []*OneNodeReader {
	return er.nodes
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type result[T any] struct {
	value T
	err   error
}

// firstSuccess runs fn against every node concurrently. The context handed
// to fn is cancelled as soon as one node answers.
func firstSuccess[T any](ctx context.Context, nodes []*OneNodeReader, fn func(context.Context, *OneNodeReader) (T, error)) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, fmt.Errorf("no nodes configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan result[T], len(nodes))
	for _, n := range nodes {
		go func() {
			v, err := fn(ctx, n)
			resCh <- result[T]{value: v, err: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	for i := 0; i < len(nodes); i++ {
		res := <-resCh
		if res.err == nil {
			return res.value, nil
		}
		errs = append(errs, res.err)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

// Call returns the raw json result of method from the first node that
// answers without error. A json null is a valid answer.
func (er *EthReader) Call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n *OneNodeReader) ([]byte, error) {
		var raw json.RawMessage
		err := n.Call(ctx, &raw, method, args...)
		return raw, err
	})
}

func (er *EthReader) ChainID(ctx context.Context) (*big.Int, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n *OneNodeReader) (*big.Int, error) {
		return n.ChainID(ctx)
	})
}

func (er *EthReader) GetPendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n *OneNodeReader) (uint64, error) {
		return n.GetPendingNonce(ctx, address)
	})
}

func (er *EthReader) GetGasPriceWeiSuggestion(ctx context.Context) (*big.Int, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n *OneNodeReader) (*big.Int, error) {
		return n.GetGasPriceSuggestion(ctx)
	})
}

func (er *EthReader) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return firstSuccess(ctx, er.nodes, func(ctx context.Context, n *OneNodeReader) (uint64, error) {
		return n.EstimateGas(ctx, msg)
	})
}
