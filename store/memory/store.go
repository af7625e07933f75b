// Package memory is the in-process store backend. It holds everything in
// maps behind a single mutex and is intended for tests and embedded
// development setups.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/factoring"
	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/store"
	"github.com/xraph/factoring/types"
)

type Store struct {
	mu sync.RWMutex

	// Singleton config
	config *config.Config

	// Invoice storage
	invoices map[uint64]*invoice.Invoice

	// Reputation storage, keyed by originator
	reputations map[types.Principal]*reputation.Reputation

	// Counters
	nextInvoiceID uint64
	totalInvoices uint64
	volumeFunded  types.Money
	volumeSettled types.Money
}

func New() *Store {
	return &Store{
		invoices:      make(map[uint64]*invoice.Invoice),
		reputations:   make(map[types.Principal]*reputation.Reputation),
		nextInvoiceID: 1,
	}
}

// Config methods

func (s *Store) SetConfig(_ context.Context, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cfg
	s.config = &c
	return nil
}

func (s *Store) GetConfig(_ context.Context) (*config.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, factoring.ErrNotInitialized
	}
	c := *s.config
	return &c, nil
}

func (s *Store) HasConfig(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config != nil, nil
}

// Invoice methods

func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return factoring.ErrInvoiceAlreadyExists
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID uint64) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.invoices[invID]; ok {
		return cloneInvoice(inv), nil
	}
	return nil, factoring.ErrInvoiceNotFound
}

func (s *Store) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return factoring.ErrInvoiceNotFound
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if matches(inv, opts) {
			result = append(result, cloneInvoice(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func matches(inv *invoice.Invoice, opts invoice.ListOpts) bool {
	if !opts.Originator.IsZero() && inv.Originator != opts.Originator {
		return false
	}
	if !opts.Funder.IsZero() && inv.Funder != opts.Funder {
		return false
	}
	if opts.Status != "" && inv.Status != opts.Status {
		return false
	}
	if !opts.Start.IsZero() && inv.CreatedAt.Before(opts.Start) {
		return false
	}
	if !opts.End.IsZero() && !inv.CreatedAt.Before(opts.End) {
		return false
	}
	return true
}

// Commit methods. A single lock section makes each commit atomic.

func (s *Store) CommitFunding(_ context.Context, inv *invoice.Invoice, fundedVolume types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return factoring.ErrInvoiceNotFound
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	s.volumeFunded = s.volumeFunded.Add(fundedVolume)
	return nil
}

func (s *Store) CommitSettlement(_ context.Context, inv *invoice.Invoice, rep *reputation.Reputation, settledVolume types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return factoring.ErrInvoiceNotFound
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	if rep != nil {
		r := *rep
		s.reputations[rep.Originator] = &r
	}
	s.volumeSettled = s.volumeSettled.Add(settledVolume)
	return nil
}

// Reputation methods

func (s *Store) GetReputation(_ context.Context, originator types.Principal) (*reputation.Reputation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rep, ok := s.reputations[originator]; ok {
		r := *rep
		return &r, nil
	}
	return nil, factoring.ErrReputationNotFound
}

func (s *Store) SetReputation(_ context.Context, rep *reputation.Reputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rep
	s.reputations[rep.Originator] = &r
	return nil
}

// Counter methods

func (s *Store) AllocateInvoiceID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextInvoiceID
	s.nextInvoiceID++
	return id, nil
}

func (s *Store) IncrementTotalInvoices(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalInvoices++
	return nil
}

func (s *Store) Stats(_ context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return store.Stats{
		TotalInvoices: s.totalInvoices,
		VolumeFunded:  s.volumeFunded,
		VolumeSettled: s.volumeSettled,
	}, nil
}

// ExtendLifetime is a no-op: memory records never expire.
func (s *Store) ExtendLifetime(_ context.Context, _ store.Key, _, _ time.Duration) error {
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	if inv.FundedAt != nil {
		t := *inv.FundedAt
		c.FundedAt = &t
	}
	if inv.SettledAt != nil {
		t := *inv.SettledAt
		c.SettledAt = &t
	}
	return &c
}

var _ store.Store = (*Store)(nil)
