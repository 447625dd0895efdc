package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/custody"
	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/store"
	"github.com/xraph/custody/withdrawal"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Funding storage, in insertion order
	fundings   []*funding.Event
	fundingIdx map[string]int

	// Withdrawal storage
	withdrawals map[string]*withdrawal.Withdrawal

	closed bool
}

func New() *Store {
	return &Store{
		fundingIdx:  make(map[string]int),
		withdrawals: make(map[string]*withdrawal.Withdrawal),
	}
}

// Funding Store implementation
func (s *Store) RecordFunding(_ context.Context, e *funding.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return custody.ErrStoreClosed
	}
	if _, exists := s.fundingIdx[e.ID.String()]; exists {
		return custody.ErrAlreadyExists
	}
	s.fundingIdx[e.ID.String()] = len(s.fundings)
	s.fundings = append(s.fundings, copyEvent(e))
	return nil
}

func (s *Store) GetFunding(_ context.Context, eventID id.ID) (*funding.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.fundingIdx[eventID.String()]; ok {
		return copyEvent(s.fundings[i]), nil
	}
	return nil, custody.ErrFundingNotFound
}

func (s *Store) ListFundings(_ context.Context, opts funding.ListOpts) ([]*funding.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*funding.Event, 0)
	for _, e := range s.fundings {
		if opts.Match(e) {
			result = append(result, copyEvent(e))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Round != result[j].Round {
			return result[i].Round < result[j].Round
		}
		return result[i].Sequence < result[j].Sequence
	})

	return page(result, opts.Offset, opts.Limit), nil
}

// Withdrawal Store implementation
func (s *Store) CreateWithdrawal(_ context.Context, w *withdrawal.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return custody.ErrStoreClosed
	}
	if _, exists := s.withdrawals[w.ID.String()]; exists {
		return custody.ErrAlreadyExists
	}
	s.withdrawals[w.ID.String()] = copyWithdrawal(w)
	return nil
}

func (s *Store) GetWithdrawal(_ context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.withdrawals[wID.String()]; ok {
		return copyWithdrawal(w), nil
	}
	return nil, custody.ErrWithdrawalNotFound
}

func (s *Store) ListWithdrawals(_ context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*withdrawal.Withdrawal, 0)
	for _, w := range s.withdrawals {
		if opts.Status == "" || w.Status == opts.Status {
			result = append(result, copyWithdrawal(w))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Round != result[j].Round {
			return result[i].Round > result[j].Round
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateWithdrawal(_ context.Context, w *withdrawal.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return custody.ErrStoreClosed
	}
	if _, exists := s.withdrawals[w.ID.String()]; !exists {
		return custody.ErrWithdrawalNotFound
	}
	s.withdrawals[w.ID.String()] = copyWithdrawal(w)
	return nil
}

func (s *Store) LastSettledRound(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	for _, w := range s.withdrawals {
		if w.Status == withdrawal.StatusCompleted && w.Round > last {
			last = w.Round
		}
	}
	return last, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return custody.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Helper functions
func page[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func copyEvent(e *funding.Event) *funding.Event {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyWithdrawal(w *withdrawal.Withdrawal) *withdrawal.Withdrawal {
	c := *w
	c.Contributions = append([]contribution.Contribution(nil), w.Contributions...)
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
