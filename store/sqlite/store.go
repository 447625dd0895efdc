package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	custody "github.com/xraph/custody"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	custodystore "github.com/xraph/custody/store"
	"github.com/xraph/custody/withdrawal"
)

// compile-time interface check
var _ custodystore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("custody/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("custody/sqlite: %w: %w", custody.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Funding Store ====================

func (s *Store) RecordFunding(ctx context.Context, e *funding.Event) error {
	m := toFundingModel(e)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetFunding(ctx context.Context, eventID id.ID) (*funding.Event, error) {
	m := new(fundingModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", eventID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, custody.ErrFundingNotFound
		}
		return nil, err
	}
	return fromFundingModel(m)
}

func (s *Store) ListFundings(ctx context.Context, opts funding.ListOpts) ([]*funding.Event, error) {
	var models []fundingModel
	q := s.sdb.NewSelect(&models)

	if opts.Round != 0 {
		q = q.Where("round = ?", opts.Round)
	}
	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.Funder != nil {
		q = q.Where("funder = ?", opts.Funder.Hex())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("round ASC, sequence ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*funding.Event, len(models))
	for i := range models {
		e, err := fromFundingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Withdrawal Store ====================

func (s *Store) CreateWithdrawal(ctx context.Context, w *withdrawal.Withdrawal) error {
	m, err := toWithdrawalModel(w)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetWithdrawal(ctx context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error) {
	m := new(withdrawalModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", wID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, custody.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return fromWithdrawalModel(m)
}

func (s *Store) ListWithdrawals(ctx context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error) {
	var models []withdrawalModel
	q := s.sdb.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("round DESC, created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*withdrawal.Withdrawal, len(models))
	for i := range models {
		w, err := fromWithdrawalModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

func (s *Store) UpdateWithdrawal(ctx context.Context, w *withdrawal.Withdrawal) error {
	m, err := toWithdrawalModel(w)
	if err != nil {
		return err
	}
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return custody.ErrWithdrawalNotFound
	}
	return nil
}

func (s *Store) LastSettledRound(ctx context.Context) (int64, error) {
	var round int64
	err := s.sdb.NewRaw(`
		SELECT COALESCE(MAX(round), 0) FROM custody_withdrawals
		WHERE status = ?
	`, string(withdrawal.StatusCompleted)).Scan(ctx, &round)
	if err != nil {
		return 0, err
	}
	return round, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
