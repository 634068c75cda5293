// Package registrytest provides an in-memory registry for tests.
package registrytest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/registry"
)

// Registry behaves like the deployed contract: registering a taken name
// yields a failed receipt, setting a record of a name the sender doesn't
// own too.
type Registry struct {
	mu      sync.Mutex
	names   []string
	records map[string]string
	owners  map[string]common.Address
	calls   []string
	values  []*big.Int
	nonce   uint64

	// Sender is the account writes are attributed to.
	Sender common.Address

	// Forced outcomes. A non nil *Err fails the submission, a false *OK
	// mines the tx with a failed status.
	RegisterErr  error
	RegisterOK   bool
	SetRecordErr error
	SetRecordOK  bool
	WaitErr      error
	ReadErr      error

	// WaitGate, when set, holds every Wait until it is closed.
	WaitGate chan struct{}

	// ReadHook runs before every read, it may block or fail it.
	ReadHook func(ctx context.Context, method string, name string) error
}

func New(sender common.Address) *Registry {
	return &Registry{
		records:     map[string]string{},
		owners:      map[string]common.Address{},
		Sender:      sender,
		RegisterOK:  true,
		SetRecordOK: true,
	}
}

// Seed stores a name as if it had been registered by owner.
func (r *Registry) Seed(name, record string, owner common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.records[name] = record
	r.owners[name] = owner
}

func (r *Registry) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (r *Registry) TotalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Values returns the value sent with every register call.
func (r *Registry) Values() []*big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*big.Int{}, r.values...)
}

func (r *Registry) Record(name string) (string, common.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[name]
	return r.records[name], owner, ok
}

func (r *Registry) read(ctx context.Context, method, name string) error {
	r.mu.Lock()
	r.calls = append(r.calls, method)
	hook, err := r.ReadHook, r.ReadErr
	r.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, method, name); err != nil {
			return err
		}
	}
	return err
}

func (r *Registry) GetAllNames(ctx context.Context) ([]string, error) {
	if err := r.read(ctx, "getAllNames", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.names...), nil
}

func (r *Registry) Records(ctx context.Context, name string) (string, error) {
	if err := r.read(ctx, "records", name); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[name], nil
}

func (r *Registry) Domains(ctx context.Context, name string) (common.Address, error) {
	if err := r.read(ctx, "domains", name); err != nil {
		return common.Address{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owners[name], nil
}

func (r *Registry) Register(ctx context.Context, name string, value *big.Int) (registry.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "register")
	r.values = append(r.values, value)
	if r.RegisterErr != nil {
		return nil, r.RegisterErr
	}
	_, taken := r.owners[name]
	ok := r.RegisterOK && !taken
	if ok {
		r.names = append(r.names, name)
		r.owners[name] = r.Sender
	}
	return r.tx(ok), nil
}

func (r *Registry) SetRecord(ctx context.Context, name string, record string) (registry.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "setRecord")
	if r.SetRecordErr != nil {
		return nil, r.SetRecordErr
	}
	ok := r.SetRecordOK && r.owners[name] == r.Sender
	if ok {
		r.records[name] = record
	}
	return r.tx(ok), nil
}

func (r *Registry) tx(ok bool) *Tx {
	r.nonce++
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", r.nonce)))
	status := ajercommon.ReceiptStatusFailed
	if ok {
		status = ajercommon.ReceiptStatusSuccessful
	}
	return &Tx{
		hash: hash,
		err:  r.WaitErr,
		gate: r.WaitGate,
		receipt: &ajercommon.Receipt{
			TxHash:      hash,
			Status:      hexutil.Uint64(status),
			BlockNumber: (*hexutil.Big)(new(big.Int).SetUint64(r.nonce)),
		},
	}
}

type Tx struct {
	hash    common.Hash
	receipt *ajercommon.Receipt
	err     error
	gate    chan struct{}
}

func (t *Tx) Hash() common.Hash {
	return t.hash
}

func (t *Tx) Wait(ctx context.Context) (*ajercommon.Receipt, error) {
	if t.gate != nil {
		select {
		case <-t.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if t.err != nil {
		return nil, t.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.receipt, nil
}
