// Package plugin provides an extensible plugin system for Custody.
// Plugins can hook into ledger lifecycle events to extend functionality.
// Hooks observe; they are called after the state change they describe has
// been committed and cannot alter its outcome.
package plugin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Funding hooks
// ──────────────────────────────────────────────────

// OnFunded is called after a contribution is recorded.
type OnFunded interface {
	Plugin
	OnFunded(ctx context.Context, e *funding.Event) error
}

// OnFundingRejected is called when a contribution is refused, e.g. for being
// below the minimum or because the price feed was unavailable.
type OnFundingRejected interface {
	Plugin
	OnFundingRejected(ctx context.Context, funder common.Address, amount types.Value, reason error) error
}

// OnDeposited is called after an out-of-band deposit is accepted.
type OnDeposited interface {
	Plugin
	OnDeposited(ctx context.Context, e *funding.Event) error
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnWithdrawn is called after a withdrawal completes and the round closes.
type OnWithdrawn interface {
	Plugin
	OnWithdrawn(ctx context.Context, w *withdrawal.Withdrawal) error
}

// OnWithdrawalFailed is called when the outbound transfer fails. The
// withdrawal's status tells whether the ledger was rolled back or stranded.
type OnWithdrawalFailed interface {
	Plugin
	OnWithdrawalFailed(ctx context.Context, w *withdrawal.Withdrawal, reason error) error
}

// ──────────────────────────────────────────────────
// Access hooks
// ──────────────────────────────────────────────────

// OnUnauthorized is called when a privileged action is refused.
type OnUnauthorized interface {
	Plugin
	OnUnauthorized(ctx context.Context, caller common.Address, action string) error
}
