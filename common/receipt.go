package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Receipt is the subset of eth_getTransactionReceipt this client relies on.
type Receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
}

func (r *Receipt) Succeeded() bool {
	return r != nil && uint64(r.Status) == ReceiptStatusSuccessful
}

func (r *Receipt) Block() *big.Int {
	if r == nil || r.BlockNumber == nil {
		return nil
	}
	return r.BlockNumber.ToInt()
}

// TxStatus is the lifecycle position of a submitted transaction as seen by
// a monitor.
type TxStatus string

const (
	TxPending  TxStatus = "pending"
	TxDone     TxStatus = "done"
	TxReverted TxStatus = "reverted"
	TxLost     TxStatus = "lost"
)

type TxInfo struct {
	Hash    common.Hash
	Status  TxStatus
	Receipt *Receipt
}

func StatusOf(r *Receipt) TxStatus {
	switch {
	case r == nil:
		return TxPending
	case r.Succeeded():
		return TxDone
	default:
		return TxReverted
	}
}
