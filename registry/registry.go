// Package registry reaches the name registry contract.
package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	ajercommon "github.com/tranvictor/ajer/common"
)

// DefaultAddress is the registry deployment on Polygon Mumbai.
const DefaultAddress = "0xa801FD013141ECF63E08003aC669a495e2269d1A"

// Tx is a submitted transaction.
type Tx interface {
	Hash() common.Hash
	// Wait blocks until the tx is mined and returns its receipt, which may
	// carry a failed status.
	Wait(ctx context.Context) (*ajercommon.Receipt, error)
}

type Registry interface {
	GetAllNames(ctx context.Context) ([]string, error)
	Records(ctx context.Context, name string) (string, error)
	Domains(ctx context.Context, name string) (common.Address, error)
	Register(ctx context.Context, name string, value *big.Int) (Tx, error)
	SetRecord(ctx context.Context, name string, record string) (Tx, error)
}
