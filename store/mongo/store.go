package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	custody "github.com/xraph/custody"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	custodystore "github.com/xraph/custody/store"
	"github.com/xraph/custody/withdrawal"
)

// Collection name constants.
const (
	colFundings    = "custody_fundings"
	colWithdrawals = "custody_withdrawals"
)

// compile-time interface check
var _ custodystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all custody collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("custody/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return custody.ErrAlreadyExists
		}
		return fmt.Errorf("custody/mongo: record funding: %w", err)
	}
	return nil
}

func (s *Store) GetFunding(ctx context.Context, eventID id.ID) (*funding.Event, error) {
	var m fundingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": eventID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, custody.ErrFundingNotFound
		}
		return nil, fmt.Errorf("custody/mongo: get funding: %w", err)
	}
	return fromFundingModel(&m)
}

func (s *Store) ListFundings(ctx context.Context, opts funding.ListOpts) ([]*funding.Event, error) {
	var models []fundingModel

	filter := bson.M{}
	if opts.Round != 0 {
		filter["round"] = opts.Round
	}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if opts.Funder != nil {
		filter["funder"] = opts.Funder.Hex()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "round", Value: 1}, {Key: "sequence", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("custody/mongo: list fundings: %w", err)
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
	m := toWithdrawalModel(w)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return custody.ErrAlreadyExists
		}
		return fmt.Errorf("custody/mongo: create withdrawal: %w", err)
	}
	return nil
}

func (s *Store) GetWithdrawal(ctx context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error) {
	var m withdrawalModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": wID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, custody.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("custody/mongo: get withdrawal: %w", err)
	}
	return fromWithdrawalModel(&m)
}

func (s *Store) ListWithdrawals(ctx context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error) {
	var models []withdrawalModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "round", Value: -1}, {Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("custody/mongo: list withdrawals: %w", err)
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
	m := toWithdrawalModel(w)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("custody/mongo: update withdrawal: %w", err)
	}
	if res.MatchedCount() == 0 {
		return custody.ErrWithdrawalNotFound
	}
	return nil
}

func (s *Store) LastSettledRound(ctx context.Context) (int64, error) {
	var m withdrawalModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"status": string(withdrawal.StatusCompleted)}).
		Sort(bson.D{{Key: "round", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("custody/mongo: last settled round: %w", err)
	}
	return m.Round, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all custody collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colFundings: {
			{
				Keys:    bson.D{{Key: "round", Value: 1}, {Key: "sequence", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "funder", Value: 1}}},
		},
		colWithdrawals: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "round", Value: -1}}},
			{Keys: bson.D{{Key: "round", Value: -1}, {Key: "created_at", Value: -1}}},
		},
	}
}
