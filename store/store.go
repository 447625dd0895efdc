package store

import (
	"context"

	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/withdrawal"
)

// Store is the unified storage interface for all Custody entities. Method
// names carry the entity so one backend can serve every one of them.
type Store interface {
	// Funding methods
	RecordFunding(ctx context.Context, e *funding.Event) error
	GetFunding(ctx context.Context, eventID id.ID) (*funding.Event, error)
	ListFundings(ctx context.Context, opts funding.ListOpts) ([]*funding.Event, error)

	// Withdrawal methods
	CreateWithdrawal(ctx context.Context, w *withdrawal.Withdrawal) error
	GetWithdrawal(ctx context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error)
	ListWithdrawals(ctx context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, w *withdrawal.Withdrawal) error
	LastSettledRound(ctx context.Context) (int64, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
