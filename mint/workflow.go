// Package mint registers names and sets their records.
package mint

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranvictor/ajer/registry"
	"github.com/tranvictor/ajer/session"
)

const DefaultRefreshDelay = 2 * time.Second

type Status int

const (
	// StatusSkipped: nothing to do, the name or record was empty.
	StatusSkipped Status = iota
	StatusMinted
	// StatusPartial: registered, but the record was not set.
	StatusPartial
	StatusRecordSet
)

func (s Status) String() string {
	switch s {
	case StatusMinted:
		return "minted"
	case StatusPartial:
		return "partially minted"
	case StatusRecordSet:
		return "record set"
	default:
		return "skipped"
	}
}

type Outcome struct {
	OpID       string
	Status     Status
	Name       string
	Record     string
	Tier       Tier
	Price      *big.Int
	RegisterTx common.Hash
	RecordTx   common.Hash
}

// Draft is the user's pending input. It survives failures so the user can
// retry, and is cleared once a write succeeds.
type Draft struct {
	Name    string
	Record  string
	Editing bool
}

type Workflow struct {
	mu           sync.Mutex
	registry     registry.Registry
	pricing      Pricing
	draft        Draft
	busy         bool
	busyToken    uint64
	gen          *session.Generation
	refresh      func(ctx context.Context)
	refreshDelay time.Duration
	timers       []*time.Timer
	log          *zap.Logger
}

type Option func(*Workflow)

func WithPricing(p Pricing) Option {
	return func(w *Workflow) { w.pricing = p }
}

// WithRefresh sets what runs, refreshDelay after a name got registered.
func WithRefresh(refresh func(ctx context.Context), delay time.Duration) Option {
	return func(w *Workflow) {
		w.refresh = refresh
		w.refreshDelay = delay
	}
}

// WithGeneration ties the workflow to a reload epoch: writes that finish
// after the epoch moved on neither touch the draft nor refresh.
func WithGeneration(g *session.Generation) Option {
	return func(w *Workflow) { w.gen = g }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Workflow) { w.log = log }
}

func NewWorkflow(r registry.Registry, opts ...Option) *Workflow {
	w := &Workflow{
		registry:     r,
		pricing:      DefaultPricing(),
		refreshDelay: DefaultRefreshDelay,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Pricing() Pricing {
	return w.pricing
}

func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Workflow) SetDraft(name, record string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Name = name
	w.draft.Record = record
}

// Edit puts the workflow in editing mode for an already owned name.
func (w *Workflow) Edit(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Name = name
	w.draft.Editing = true
}

func (w *Workflow) CancelEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Editing = false
}

func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

func (w *Workflow) acquire() (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return 0, false
	}
	w.busy = true
	w.busyToken++
	return w.busyToken, true
}

func (w *Workflow) release(token uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busyToken == token {
		w.busy = false
	}
}

// Reset drops the draft, the busy flag and pending refreshes. Writes still
// in flight finish without effect on the workflow.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.draft = Draft{}
	w.busy = false
	w.busyToken++
}

func (w *Workflow) updateDraft(epoch uint64, d Draft) {
	if w.gen.Stale(epoch) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = d
}

func (w *Workflow) scheduleRefresh(epoch uint64) {
	if w.refresh == nil || w.gen.Stale(epoch) {
		return
	}
	t := time.AfterFunc(w.refreshDelay, func() {
		if w.gen.Stale(epoch) {
			return
		}
		w.refresh(context.Background())
	})
	w.mu.Lock()
	w.timers = append(w.timers, t)
	w.mu.Unlock()
}

// Mint registers the draft name at its tier price, then sets the draft
// record on it. The two phases never overlap and the second is skipped
// when the first fails.
func (w *Workflow) Mint(ctx context.Context) (Outcome, error) {
	d := w.Draft()
	if d.Name == "" {
		return Outcome{Status: StatusSkipped}, nil
	}
	price, tier, err := w.pricing.Price(d.Name)
	if err != nil {
		return Outcome{}, err
	}
	token, ok := w.acquire()
	if !ok {
		return Outcome{}, ErrBusy
	}
	defer w.release(token)

	epoch := w.gen.Current()
	outcome := Outcome{
		OpID:   uuid.NewString(),
		Name:   d.Name,
		Record: d.Record,
		Tier:   tier,
		Price:  price,
	}
	log := w.log.With(zap.String("op", outcome.OpID), zap.String("name", d.Name))
	log.Info("minting name", zap.Stringer("tier", tier), zap.String("price_wei", price.String()))

	tx, err := w.registry.Register(ctx, d.Name, price)
	if err != nil {
		log.Warn("register was not submitted", zap.Error(err))
		return outcome, &MintFailedError{Name: d.Name, Err: err}
	}
	outcome.RegisterTx = tx.Hash()
	receipt, err := tx.Wait(ctx)
	if err != nil {
		log.Warn("register was not confirmed", zap.String("tx", tx.Hash().Hex()), zap.Error(err))
		return outcome, &MintFailedError{Name: d.Name, TxHash: tx.Hash(), Err: err}
	}
	if !receipt.Succeeded() {
		log.Warn("register reverted", zap.String("tx", tx.Hash().Hex()))
		return outcome, &MintFailedError{Name: d.Name, TxHash: tx.Hash()}
	}
	log.Info("name registered", zap.String("tx", tx.Hash().Hex()))

	// the name exists from here on, whatever happens to the record
	defer w.scheduleRefresh(epoch)

	if err := w.setRecord(ctx, d.Name, d.Record, &outcome.RecordTx); err != nil {
		log.Warn("record was not set", zap.Error(err))
		outcome.Status = StatusPartial
		w.updateDraft(epoch, Draft{Name: d.Name, Record: d.Record, Editing: true})
		partial := &PartialMintError{Name: d.Name, RegisterTx: outcome.RegisterTx, RecordTx: outcome.RecordTx}
		if !errors.Is(err, errRecordReverted) {
			partial.Err = err
		}
		return outcome, partial
	}
	outcome.Status = StatusMinted
	w.updateDraft(epoch, Draft{})
	log.Info("name minted", zap.String("record_tx", outcome.RecordTx.Hex()))
	return outcome, nil
}

var errRecordReverted = errors.New("record tx reverted")

func (w *Workflow) setRecord(ctx context.Context, name, record string, hash *common.Hash) error {
	tx, err := w.registry.SetRecord(ctx, name, record)
	if err != nil {
		return err
	}
	*hash = tx.Hash()
	receipt, err := tx.Wait(ctx)
	if err != nil {
		return err
	}
	if !receipt.Succeeded() {
		return errRecordReverted
	}
	return nil
}

// SetRecordOnly updates the record of the draft name, which must already
// be registered.
func (w *Workflow) SetRecordOnly(ctx context.Context) (Outcome, error) {
	d := w.Draft()
	if d.Name == "" || d.Record == "" {
		return Outcome{Status: StatusSkipped}, nil
	}
	token, ok := w.acquire()
	if !ok {
		return Outcome{}, ErrBusy
	}
	defer w.release(token)

	epoch := w.gen.Current()
	outcome := Outcome{OpID: uuid.NewString(), Name: d.Name, Record: d.Record}
	log := w.log.With(zap.String("op", outcome.OpID), zap.String("name", d.Name))
	log.Info("updating record")

	if err := w.setRecord(ctx, d.Name, d.Record, &outcome.RecordTx); err != nil {
		log.Warn("record was not set", zap.String("tx", outcome.RecordTx.Hex()), zap.Error(err))
		failed := &RecordFailedError{Name: d.Name, TxHash: outcome.RecordTx}
		if !errors.Is(err, errRecordReverted) {
			failed.Err = err
		}
		return outcome, failed
	}
	outcome.Status = StatusRecordSet
	w.updateDraft(epoch, Draft{})
	log.Info("record updated", zap.String("tx", outcome.RecordTx.Hex()))
	return outcome, nil
}
