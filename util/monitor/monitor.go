package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	ajercommon "github.com/tranvictor/ajer/common"
)

const (
	DefaultInterval = 2 * time.Second
	// DefaultLostAfter is how long a tx may stay unknown before it is
	// reported as lost.
	DefaultLostAfter = 3 * time.Minute
)

// ReceiptReader returns nil, nil while a tx has no receipt yet.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*ajercommon.Receipt, error)
}

type TxMonitor struct {
	reader    ReceiptReader
	interval  time.Duration
	lostAfter time.Duration
}

func NewTxMonitor(r ReceiptReader, interval time.Duration) *TxMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &TxMonitor{
		reader:    r,
		interval:  interval,
		lostAfter: DefaultLostAfter,
	}
}

// WithLostAfter overrides DefaultLostAfter. A non positive value waits
// forever.
func (m *TxMonitor) WithLostAfter(d time.Duration) *TxMonitor {
	m.lostAfter = d
	return m
}

// periodicCheck polls until the tx is mined, lost or ctx is done. Read
// errors are treated as "not yet known", the next tick tries again.
func (m *TxMonitor) periodicCheck(ctx context.Context, hash common.Hash, info chan<- ajercommon.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	startTime := time.Now()
	for {
		receipt, err := m.reader.TransactionReceipt(ctx, hash)
		if err == nil {
			if st := ajercommon.StatusOf(receipt); st != ajercommon.TxPending {
				info <- ajercommon.TxInfo{Hash: hash, Status: st, Receipt: receipt}
				return
			}
		}
		if m.lostAfter > 0 && time.Since(startTime) > m.lostAfter {
			info <- ajercommon.TxInfo{Hash: hash, Status: ajercommon.TxLost}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *TxMonitor) MakeWaitChannel(ctx context.Context, hash common.Hash) <-chan ajercommon.TxInfo {
	result := make(chan ajercommon.TxInfo, 1)
	go m.periodicCheck(ctx, hash, result)
	return result
}

// BlockingWait returns the receipt of a mined tx, reverted or not. A lost tx
// or a cancelled ctx is an error.
func (m *TxMonitor) BlockingWait(ctx context.Context, hash common.Hash) (*ajercommon.Receipt, error) {
	info, ok := <-m.MakeWaitChannel(ctx, hash)
	if !ok {
		return nil, fmt.Errorf("waiting for tx %s: %w", hash.Hex(), ctx.Err())
	}
	if info.Status == ajercommon.TxLost {
		return nil, fmt.Errorf("tx %s was not found after %s", hash.Hex(), m.lostAfter)
	}
	return info.Receipt, nil
}
