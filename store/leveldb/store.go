// Package leveldb is an embedded store.Store backed by goleveldb.
//
// Key layout:
//
//	f/<round>/<sequence>/<id>  funding event (JSON), ordered for replay
//	fi/<id>                    index into f/
//	w/<id>                     withdrawal (JSON)
//	r/settled                  highest completed round
//
// Multi-key writes go through a single leveldb.Batch.
package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/xraph/custody"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/store"
	"github.com/xraph/custody/withdrawal"
)

const (
	prefixFunding      = "f/"
	prefixFundingIndex = "fi/"
	prefixWithdrawal   = "w/"
	keySettledRound    = "r/settled"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store on a LevelDB database.
type Store struct {
	db *leveldb.DB

	// serializes read-modify-write of r/settled
	mu sync.Mutex
}

// Open opens (or creates) a database directory at path.
func Open(path string, o *opt.Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, o)
	if err != nil {
		return nil, fmt.Errorf("custody/leveldb: open %s: %w", path, err)
	}
	return New(db), nil
}

// OpenMemory opens a database that lives only in memory.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("custody/leveldb: open memory: %w", err)
	}
	return New(db), nil
}

// New wraps an open database.
func New(db *leveldb.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database.
func (s *Store) DB() *leveldb.DB { return s.db }

// ──────────────────────────────────────────────────
// Funding
// ──────────────────────────────────────────────────

func (s *Store) RecordFunding(_ context.Context, e *funding.Event) error {
	idxKey := []byte(prefixFundingIndex + e.ID.String())

	exists, err := s.db.Has(idxKey, nil)
	if err != nil {
		return wrap("record funding", err)
	}
	if exists {
		return custody.ErrAlreadyExists
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("custody/leveldb: encode funding: %w", err)
	}

	key := fundingKey(e)
	batch := new(leveldb.Batch)
	batch.Put(key, data)
	batch.Put(idxKey, key)
	return wrap("record funding", s.db.Write(batch, nil))
}

func (s *Store) GetFunding(_ context.Context, eventID id.ID) (*funding.Event, error) {
	key, err := s.db.Get([]byte(prefixFundingIndex+eventID.String()), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, custody.ErrFundingNotFound
	}
	if err != nil {
		return nil, wrap("get funding", err)
	}

	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, custody.ErrFundingNotFound
	}
	if err != nil {
		return nil, wrap("get funding", err)
	}
	return decodeEvent(data)
}

func (s *Store) ListFundings(_ context.Context, opts funding.ListOpts) ([]*funding.Event, error) {
	prefix := prefixFunding
	if opts.Round != 0 {
		prefix += pad(opts.Round) + "/"
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	result := make([]*funding.Event, 0)
	skipped := 0
	for iter.Next() {
		e, err := decodeEvent(iter.Value())
		if err != nil {
			return nil, err
		}
		if !opts.Match(e) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, e)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, wrap("list fundings", err)
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Withdrawal
// ──────────────────────────────────────────────────

func (s *Store) CreateWithdrawal(_ context.Context, w *withdrawal.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := withdrawalKey(w.ID)
	exists, err := s.db.Has(key, nil)
	if err != nil {
		return wrap("create withdrawal", err)
	}
	if exists {
		return custody.ErrAlreadyExists
	}
	return s.putWithdrawal(w)
}

func (s *Store) GetWithdrawal(_ context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error) {
	data, err := s.db.Get(withdrawalKey(wID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, custody.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, wrap("get withdrawal", err)
	}
	return decodeWithdrawal(data)
}

func (s *Store) ListWithdrawals(_ context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixWithdrawal)), nil)
	defer iter.Release()

	result := make([]*withdrawal.Withdrawal, 0)
	for iter.Next() {
		w, err := decodeWithdrawal(iter.Value())
		if err != nil {
			return nil, err
		}
		if opts.Status == "" || w.Status == opts.Status {
			result = append(result, w)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, wrap("list withdrawals", err)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Round != result[j].Round {
			return result[i].Round > result[j].Round
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	start := min(opts.Offset, len(result))
	end := len(result)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return result[start:end], nil
}

func (s *Store) UpdateWithdrawal(_ context.Context, w *withdrawal.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.db.Has(withdrawalKey(w.ID), nil)
	if err != nil {
		return wrap("update withdrawal", err)
	}
	if !exists {
		return custody.ErrWithdrawalNotFound
	}
	return s.putWithdrawal(w)
}

func (s *Store) LastSettledRound(_ context.Context) (int64, error) {
	return s.settledRound()
}

// putWithdrawal writes w and, for a completed withdrawal, advances the
// settled round in the same batch. Callers hold s.mu.
func (s *Store) putWithdrawal(w *withdrawal.Withdrawal) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("custody/leveldb: encode withdrawal: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(withdrawalKey(w.ID), data)

	if w.Status == withdrawal.StatusCompleted {
		settled, err := s.settledRound()
		if err != nil {
			return err
		}
		if w.Round > settled {
			batch.Put([]byte(keySettledRound), []byte(strconv.FormatInt(w.Round, 10)))
		}
	}

	return wrap("put withdrawal", s.db.Write(batch, nil))
}

func (s *Store) settledRound() (int64, error) {
	data, err := s.db.Get([]byte(keySettledRound), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrap("settled round", err)
	}
	round, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("custody/leveldb: corrupt settled round %q: %w", data, err)
	}
	return round, nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op; LevelDB has no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	_, err := s.db.GetProperty("leveldb.stats")
	return wrap("ping", err)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func pad(n int64) string { return fmt.Sprintf("%020d", n) }

func fundingKey(e *funding.Event) []byte {
	return []byte(prefixFunding + pad(e.Round) + "/" + pad(e.Sequence) + "/" + e.ID.String())
}

func withdrawalKey(wID id.WithdrawalID) []byte {
	return []byte(prefixWithdrawal + wID.String())
}

func decodeEvent(data []byte) (*funding.Event, error) {
	var e funding.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("custody/leveldb: decode funding: %w", err)
	}
	return &e, nil
}

func decodeWithdrawal(data []byte) (*withdrawal.Withdrawal, error) {
	var w withdrawal.Withdrawal
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("custody/leveldb: decode withdrawal: %w", err)
	}
	return &w, nil
}

func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrClosed):
		return fmt.Errorf("custody/leveldb: %s: %w", op, custody.ErrStoreClosed)
	default:
		return fmt.Errorf("custody/leveldb: %s: %w", op, err)
	}
}
