package broadcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/util/reader"
)

const TIMEOUT = 4 * time.Second

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. The tx counts as broadcasted
// when at least 1 node accepted it.
type Broadcaster struct {
	nodes []*reader.OneNodeReader
}

func NewBroadcaster(r *reader.EthReader) *Broadcaster {
	return &Broadcaster{nodes: r.Nodes()}
}

func (b *Broadcaster) broadcast(ctx context.Context, n *reader.OneNodeReader, data string) error {
	err := n.Call(ctx, nil, "eth_sendRawTransaction", data)
	if err != nil {
		return fmt.Errorf("%s: %w", n.NodeName(), err)
	}
	return nil
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (common.Hash, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("tx is not valid, couldn't encode it: %w", err)
	}
	_, broadcasted, err := b.Broadcast(ctx, hexutil.Encode(data))
	return tx.Hash(), broadcasted, err
}

// data must be hex encoded of the signed tx
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (int, bool, error) {
	if len(b.nodes) == 0 {
		return 0, false, fmt.Errorf("no nodes to broadcast to")
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	parallelTasks := []func() error{}
	for _, n := range b.nodes {
		parallelTasks = append(parallelTasks, func() error {
			return b.broadcast(timeout, n, data)
		})
	}
	err, numErrs := ajercommon.RunParallel(parallelTasks...)
	if numErrs == len(b.nodes) {
		return 0, false, err
	}
	return len(b.nodes) - numErrs, true, nil
}
