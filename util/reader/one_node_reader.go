package reader

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const TIMEOUT time.Duration = 4 * time.Second

// OneNodeReader talks to a single node. The connection is dialed lazily on
// first use.
type OneNodeReader struct {
	nodeName  string
	nodeURL   string
	client    *rpc.Client
	ethClient *ethclient.Client
	mu        sync.Mutex
}

func NewOneNodeReader(name, url string) *OneNodeReader {
	return &OneNodeReader{
		nodeName: name,
		nodeURL:  url,
	}
}

// NewOneNodeReaderWithClient wraps an already connected client.
func NewOneNodeReaderWithClient(name string, client *rpc.Client) *OneNodeReader {
	return &OneNodeReader{
		nodeName:  name,
		client:    client,
		ethClient: ethclient.NewClient(client),
	}
}

func (onr *OneNodeReader) NodeName() string {
	return onr.nodeName
}

func (onr *OneNodeReader) NodeURL() string {
	return onr.nodeURL
}

func (onr *OneNodeReader) initConnection(ctx context.Context) error {
	onr.mu.Lock()
	defer onr.mu.Unlock()
	if onr.client != nil {
		return nil
	}
	client, err := rpc.DialContext(ctx, onr.NodeURL())
	if err != nil {
		return fmt.Errorf("couldn't connect to %s: %w", onr.nodeName, err)
	}
	onr.client = client
	onr.ethClient = ethclient.NewClient(client)
	return nil
}

func (onr *OneNodeReader) Client(ctx context.Context) (*rpc.Client, error) {
	if err := onr.initConnection(ctx); err != nil {
		return nil, err
	}
	return onr.client, nil
}

func (onr *OneNodeReader) EthClient(ctx context.Context) (*ethclient.Client, error) {
	if err := onr.initConnection(ctx); err != nil {
		return nil, err
	}
	return onr.ethClient, nil
}

// Call forwards a raw json-rpc call to the node.
func (onr *OneNodeReader) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	cli, err := onr.Client(ctx)
	if err != nil {
		return err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return cli.CallContext(timeout, result, method, args...)
}

func (onr *OneNodeReader) ChainID(ctx context.Context) (*big.Int, error) {
	ethcli, err := onr.EthClient(ctx)
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return ethcli.ChainID(timeout)
}

func (onr *OneNodeReader) GetPendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	ethcli, err := onr.EthClient(ctx)
	if err != nil {
		return 0, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return ethcli.PendingNonceAt(timeout, address)
}

func (onr *OneNodeReader) GetGasPriceSuggestion(ctx context.Context) (*big.Int, error) {
	ethcli, err := onr.EthClient(ctx)
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return ethcli.SuggestGasPrice(timeout)
}

func (onr *OneNodeReader) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ethcli, err := onr.EthClient(ctx)
	if err != nil {
		return 0, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return ethcli.EstimateGas(timeout, msg)
}
