package records

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/ajer/registry"
	"github.com/tranvictor/ajer/session"
)

const DefaultConcurrency = 8

// ErrStale is returned by a refresh that finished after a reload; its
// result was dropped.
var ErrStale = errors.New("refresh result is stale")

// Store holds the last list of records read in full.
type Store struct {
	mu          sync.RWMutex
	registry    registry.Registry
	records     []Record
	gen         *session.Generation
	concurrency int
	log         *zap.Logger
}

type Option func(*Store)

// WithConcurrency bounds the per-name reads in flight.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithGeneration(g *session.Generation) Option {
	return func(s *Store) { s.gen = g }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(r registry.Registry, opts ...Option) *Store {
	s := &Store{
		registry:    r,
		records:     []Record{},
		concurrency: DefaultConcurrency,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reads the name list, then the record and owner of every name,
// and publishes the whole list at once. On any error the previous list is
// kept.
func (s *Store) Refresh(ctx context.Context) ([]Record, error) {
	epoch := s.gen.Current()
	names, err := s.registry.GetAllNames(ctx)
	if err != nil {
		s.log.Warn("couldn't read the name list", zap.Error(err))
		return nil, fmt.Errorf("couldn't read the name list: %w", err)
	}

	result := make([]Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			record, err := s.registry.Records(gctx, name)
			if err != nil {
				return fmt.Errorf("couldn't read the record of %s: %w", name, err)
			}
			owner, err := s.registry.Domains(gctx, name)
			if err != nil {
				return fmt.Errorf("couldn't read the owner of %s: %w", name, err)
			}
			result[i] = Record{Index: i, Name: name, Record: record, Owner: owner}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("refresh failed, keeping the last records", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Stale(epoch) {
		s.log.Debug("dropping stale refresh", zap.Int("records", len(result)))
		return nil, ErrStale
	}
	s.records = result
	s.log.Debug("records refreshed", zap.Int("records", len(result)))
	return append([]Record{}, result...), nil
}

func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.records...)
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []Record{}
}
