package custody

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/custody/access"
	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/oracle"
	"github.com/xraph/custody/plugin"
	"github.com/xraph/custody/store"
	"github.com/xraph/custody/transfer"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// TracerName is the instrumentation scope used for spans.
const TracerName = "github.com/xraph/custody"

// Policy decides what happens when the outbound transfer of a withdrawal fails
// after the ledger has been cleared.
type Policy string

const (
	// PolicyRollback restores the cleared contributions and balance, so the
	// failed withdrawal leaves no trace in the ledger state.
	PolicyRollback Policy = "rollback"

	// PolicyHalt keeps the clear, marks the withdrawal stranded and refuses
	// every later mutation until an operator intervenes.
	PolicyHalt Policy = "halt"
)

// ParsePolicy parses a policy name. The empty string means PolicyRollback.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRollback:
		return PolicyRollback, nil
	case PolicyHalt:
		return PolicyHalt, nil
	default:
		return "", ValidationError{Field: "policy", Message: fmt.Sprintf("unknown policy %q", s)}
	}
}

// DefaultMinimum is the minimum contribution in reference units.
var DefaultMinimum = types.MustUSD("50")

// Ledger is the custody engine. All mutating operations are serialized by a
// single mutex; the withdrawal transfer runs while it is held.
type Ledger struct {
	mu sync.Mutex

	guard      access.Guard
	feed       oracle.Feed
	converter  oracle.Converter
	transferer transfer.Transferer

	book    *contribution.Book
	balance types.Value
	round   int64
	seq     int64
	halted  error
	started bool

	// Configuration
	owner       common.Address
	minimum     types.Value
	policy      Policy
	maxPriceAge time.Duration
	autoMigrate bool

	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Ledger owned by deployer (unless WithOwner says otherwise)
// that prices contributions with feed and pays withdrawals through tr.
func New(deployer common.Address, feed oracle.Feed, tr transfer.Transferer, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		feed:        feed,
		transferer:  tr,
		book:        contribution.NewBook(),
		balance:     types.ZeroNative(),
		round:       1,
		owner:       deployer,
		minimum:     DefaultMinimum,
		policy:      PolicyRollback,
		autoMigrate: true,
		plugins:     plugin.NewRegistry(),
		logger:      slog.Default(),
		tracer:      otel.Tracer(TracerName),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.converter == nil && l.feed != nil {
		l.converter = oracle.NewAdapter(l.feed, oracle.WithMaxAge(l.maxPriceAge))
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	l.guard = access.NewGuard(l.owner)

	return l, nil
}

func (l *Ledger) validate() error {
	var errs MultiError
	if l.owner == (common.Address{}) {
		errs.Add(ValidationError{Field: "owner", Message: "must not be the zero address"})
	}
	if l.converter == nil {
		errs.Add(ValidationError{Field: "feed", Message: "a price feed or converter is required"})
	}
	if l.transferer == nil {
		errs.Add(ValidationError{Field: "transferer", Message: "is required"})
	}
	if l.minimum.Currency != types.Reference || l.minimum.Decimals != types.ReferenceDecimals {
		errs.Add(ValidationError{Field: "minimum", Message: "must be denominated in " + types.Reference})
	}
	if l.policy != PolicyRollback && l.policy != PolicyHalt {
		errs.Add(ValidationError{Field: "policy", Message: fmt.Sprintf("unknown policy %q", l.policy)})
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithOwner sets the owner instead of the deployer.
func WithOwner(owner common.Address) Option {
	return func(l *Ledger) { l.owner = owner }
}

// WithMinimum sets the minimum contribution, in reference units.
func WithMinimum(minimum types.Value) Option {
	return func(l *Ledger) { l.minimum = minimum }
}

// WithPolicy sets the transfer failure policy.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithMaxPriceAge rejects price readings older than d.
func WithMaxPriceAge(d time.Duration) Option {
	return func(l *Ledger) { l.maxPriceAge = d }
}

// WithConverter replaces the feed-based conversion entirely.
func WithConverter(c oracle.Converter) Option {
	return func(l *Ledger) { l.converter = c }
}

// WithStore persists fundings and withdrawals. Without a store the ledger
// lives only in memory.
func WithStore(s store.Store) Option {
	return func(l *Ledger) { l.store = s }
}

// WithAutoMigrate controls whether Start runs store migrations.
func WithAutoMigrate(enabled bool) Option {
	return func(l *Ledger) { l.autoMigrate = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithTracer sets the tracer used for spans.
func WithTracer(t trace.Tracer) Option {
	return func(l *Ledger) { l.tracer = t }
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.plugins.WithTimeout(d) }
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Start migrates the store and rebuilds the open round from it. Without a
// store it only notifies plugins.
func (l *Ledger) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return nil
	}

	if l.store != nil {
		if l.autoMigrate {
			if err := l.store.Migrate(ctx); err != nil {
				l.mu.Unlock()
				return err
			}
		}
		if err := l.hydrate(ctx); err != nil {
			l.mu.Unlock()
			return err
		}
	}
	l.started = true
	round, funders, balance := l.round, l.book.Len(), l.balance
	l.mu.Unlock()

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("custody ledger started",
		"owner", l.owner.Hex(),
		"price_feed", l.converter.Source(),
		"minimum", l.minimum.String(),
		"policy", string(l.policy),
		"round", round,
		"funders", funders,
		"balance", balance.String(),
	)
	return nil
}

// hydrate rebuilds the open round. Callers hold l.mu.
func (l *Ledger) hydrate(ctx context.Context) error {
	settled, err := l.store.LastSettledRound(ctx)
	if err != nil {
		return fmt.Errorf("custody: load settled round: %w", err)
	}
	round := settled + 1

	// Newest round first: anything at or past the open round comes before
	// the first older record.
	ws, err := l.store.ListWithdrawals(ctx, withdrawal.ListOpts{})
	if err != nil {
		return fmt.Errorf("custody: load withdrawals: %w", err)
	}
	for _, w := range ws {
		if w.Round < round {
			break
		}
		if w.Status.Unresolved() {
			return fmt.Errorf("%w: withdrawal %s for round %d is %s", ErrInconsistentState, w.ID, w.Round, w.Status)
		}
	}

	events, err := l.store.ListFundings(ctx, funding.ListOpts{Round: round})
	if err != nil {
		return fmt.Errorf("custody: load round %d: %w", round, err)
	}

	book := contribution.NewBook()
	balance := types.ZeroNative()
	var seq int64
	for _, e := range events {
		if e.Stake() {
			if err := book.Record(e.Funder, e.Amount); err != nil {
				return fmt.Errorf("%w: replay %s: %w", ErrInconsistentState, e.ID, err)
			}
		}
		if balance, err = balance.Add(e.Amount); err != nil {
			return fmt.Errorf("%w: replay %s: %w", ErrInconsistentState, e.ID, err)
		}
		seq = e.Sequence + 1
	}

	l.book = book
	l.balance = balance
	l.round = round
	l.seq = seq
	return nil
}

// Stop notifies plugins and closes the store.
func (l *Ledger) Stop(ctx context.Context) error {
	l.plugins.EmitShutdown(ctx)

	l.mu.Lock()
	l.started = false
	l.mu.Unlock()

	if l.store != nil {
		return l.store.Close()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Funding
// ──────────────────────────────────────────────────

// Fund records a contribution of amount by caller. The amount's reference
// value must reach the minimum; otherwise nothing changes.
func (l *Ledger) Fund(ctx context.Context, caller common.Address, amount types.Value) (*funding.Event, error) {
	ctx, span := l.tracer.Start(ctx, "custody.Fund", trace.WithAttributes(
		attribute.String("custody.funder", caller.Hex()),
		attribute.String("custody.amount", amount.Amount.Dec()),
	))
	defer span.End()

	e, err := l.fund(ctx, caller, amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, ErrContributionTooSmall) || errors.Is(err, ErrOracleUnavailable) {
			l.logger.Debug("funding rejected",
				"funder", caller.Hex(),
				"amount", amount.String(),
				"error", err,
			)
			l.plugins.EmitFundingRejected(ctx, caller, amount, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("custody.round", e.Round))
	l.logger.Debug("funding recorded",
		"funder", caller.Hex(),
		"amount", amount.String(),
		"reference_value", e.ReferenceValue.String(),
		"round", e.Round,
	)
	l.plugins.EmitFunded(ctx, e)
	return e, nil
}

func (l *Ledger) fund(ctx context.Context, caller common.Address, amount types.Value) (*funding.Event, error) {
	if l.reentrant(ctx) {
		return nil, fmt.Errorf("%w: fund during withdrawal", ErrReentrantCall)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrContributionTooSmall)
	}
	if !amount.SameUnit(types.ZeroNative()) {
		return nil, fmt.Errorf("%w: amount must be in %s", ErrInvalidInput, types.Native)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.usable(); err != nil {
		return nil, err
	}

	ref, err := l.converter.Convert(ctx, amount)
	if err != nil {
		return nil, err
	}
	if !ref.SameUnit(l.minimum) {
		return nil, fmt.Errorf("%w: converter returned %s/%d", ErrInvalidInput, ref.Currency, ref.Decimals)
	}
	if ref.LessThan(l.minimum) {
		return nil, fmt.Errorf("%w: %s is worth %s, minimum is %s", ErrContributionTooSmall, amount, ref, l.minimum)
	}

	balance, err := l.balance.Add(amount)
	if err != nil {
		return nil, fmt.Errorf("custody: balance: %w", err)
	}
	if err := l.book.CanRecord(caller, amount); err != nil {
		return nil, fmt.Errorf("custody: contribution of %s: %w", caller.Hex(), err)
	}

	e := &funding.Event{
		Entity:         types.NewEntity(),
		ID:             id.NewFundingID(),
		Kind:           funding.KindFund,
		Funder:         caller,
		Amount:         amount,
		ReferenceValue: ref,
		Round:          l.round,
		Sequence:       l.seq,
		PriceSource:    l.converter.Source(),
	}
	if err := l.persistFunding(ctx, e); err != nil {
		return nil, err
	}

	if err := l.book.Record(caller, amount); err != nil {
		// CanRecord passed under the same lock; reaching this means the
		// persisted event and the book disagree.
		l.halted = fmt.Errorf("%w: funding %s persisted but not recorded: %w", ErrInconsistentState, e.ID, err)
		return nil, l.halted
	}
	l.balance = balance
	l.seq++

	return e, nil
}

// Deposit accepts value from outside the contribution path. It raises the
// custodied balance without creating a stake and is not checked against the
// minimum.
func (l *Ledger) Deposit(ctx context.Context, from common.Address, amount types.Value) (*funding.Event, error) {
	e, err := l.deposit(ctx, from, amount)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("deposit received",
		"from", from.Hex(),
		"amount", amount.String(),
		"round", e.Round,
	)
	l.plugins.EmitDeposited(ctx, e)
	return e, nil
}

func (l *Ledger) deposit(ctx context.Context, from common.Address, amount types.Value) (*funding.Event, error) {
	if l.reentrant(ctx) {
		return nil, fmt.Errorf("%w: deposit during withdrawal", ErrReentrantCall)
	}
	if amount.IsZero() || !amount.SameUnit(types.ZeroNative()) {
		return nil, fmt.Errorf("%w: deposit must be a positive %s amount", ErrInvalidInput, types.Native)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.usable(); err != nil {
		return nil, err
	}

	balance, err := l.balance.Add(amount)
	if err != nil {
		return nil, fmt.Errorf("custody: balance: %w", err)
	}

	e := &funding.Event{
		Entity:         types.NewEntity(),
		ID:             id.NewDepositID(),
		Kind:           funding.KindDeposit,
		Funder:         from,
		Amount:         amount,
		ReferenceValue: types.ZeroReference(),
		Round:          l.round,
		Sequence:       l.seq,
	}
	if err := l.persistFunding(ctx, e); err != nil {
		return nil, err
	}

	l.balance = balance
	l.seq++
	return e, nil
}

func (l *Ledger) persistFunding(ctx context.Context, e *funding.Event) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.RecordFunding(ctx, e); err != nil {
		return fmt.Errorf("custody: persist %s: %w", e.Kind, err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Withdrawal
// ──────────────────────────────────────────────────

// Withdraw sends the whole custodied balance to the owner and clears every
// contribution. Only the owner may call it.
//
// The ledger is cleared before the transfer starts. If the transfer fails,
// the configured Policy decides whether the clear is rolled back. On failure
// the returned withdrawal (if any) describes what was recorded.
//
// A Withdraw made by the transferer from inside the transfer sees an empty
// ledger. It transfers nothing and returns a zero-amount result that has no
// ID or Status. The result is neither persisted nor reported to plugins.
func (l *Ledger) Withdraw(ctx context.Context, caller common.Address) (*withdrawal.Withdrawal, error) {
	ctx, span := l.tracer.Start(ctx, "custody.Withdraw", trace.WithAttributes(
		attribute.String("custody.caller", caller.Hex()),
	))
	defer span.End()

	if l.reentrant(ctx) {
		if err := l.guard.RequireOwner(caller); err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Bool("custody.reentrant", true))
		return &withdrawal.Withdrawal{
			Owner:  caller,
			Round:  l.round,
			Amount: l.balance,
			Fee:    types.ZeroNative(),
		}, nil
	}

	w, failure, err := l.withdraw(ctx, caller)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	switch {
	case errors.Is(err, ErrNotOwner):
		l.logger.Warn("withdrawal refused",
			"caller", caller.Hex(),
			"error", err,
		)
		l.plugins.EmitUnauthorized(ctx, caller, "withdraw")
	case failure != nil:
		l.logger.Error("withdrawal transfer failed",
			"withdrawal_id", w.ID.String(),
			"round", w.Round,
			"amount", w.Amount.String(),
			"status", string(w.Status),
			"error", err,
		)
		l.plugins.EmitWithdrawalFailed(ctx, w, failure)
	case w != nil:
		span.SetAttributes(
			attribute.Int64("custody.round", w.Round),
			attribute.String("custody.amount", w.Amount.Amount.Dec()),
		)
		l.logger.Info("withdrawal completed",
			"withdrawal_id", w.ID.String(),
			"round", w.Round,
			"amount", w.Amount.String(),
			"funders", w.FunderCount,
			"tx_ref", w.TxRef,
		)
		if err != nil {
			l.logger.Error("withdrawal completed but could not be recorded", "error", err)
		}
		l.plugins.EmitWithdrawn(ctx, w)
	}

	return w, err
}

// withdraw returns the transfer failure separately from the returned error so
// the caller can tell a failed transfer from a refused call.
func (l *Ledger) withdraw(ctx context.Context, caller common.Address) (*withdrawal.Withdrawal, error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.usable(); err != nil {
		return nil, nil, err
	}
	if err := l.guard.RequireOwner(caller); err != nil {
		return nil, nil, err
	}

	snap := l.book.SnapshotAndClear()
	amount := l.balance
	l.balance = types.ZeroNative()

	w := &withdrawal.Withdrawal{
		Entity:        types.NewEntity(),
		ID:            id.NewWithdrawalID(),
		Owner:         l.guard.Owner(),
		Round:         l.round,
		Amount:        amount,
		Contributions: snap.Contributions,
		FunderCount:   len(snap.Funders),
		Status:        withdrawal.StatusPending,
		Fee:           types.ZeroNative(),
	}
	if l.store != nil {
		if err := l.store.CreateWithdrawal(ctx, w); err != nil {
			if rerr := l.restore(snap, amount); rerr != nil {
				l.halted = fmt.Errorf("%w: restore after failed persist: %w", ErrInconsistentState, rerr)
				return nil, nil, errors.Join(err, l.halted)
			}
			return nil, nil, fmt.Errorf("custody: persist withdrawal: %w", err)
		}
	}

	receipt, err := l.runTransfer(ctx, w.Owner, amount)
	if err != nil {
		failure := fmt.Errorf("%w: %w", ErrTransferFailed, err)
		return w, failure, l.failWithdrawal(ctx, w, snap, amount, failure)
	}

	completed := time.Now().UTC()
	w.Status = withdrawal.StatusCompleted
	w.TxRef = receipt.TxRef
	w.GasUsed = receipt.GasUsed
	if receipt.Fee.Currency != "" {
		w.Fee = receipt.Fee
	}
	w.CompletedAt = &completed
	w.Touch()

	l.round++
	l.seq = 0

	if l.store != nil {
		if err := l.store.UpdateWithdrawal(ctx, w); err != nil {
			l.halted = fmt.Errorf("%w: withdrawal %s completed but not recorded: %w", ErrInconsistentState, w.ID, err)
			return w, nil, l.halted
		}
	}
	return w, nil, nil
}

// failWithdrawal applies the transfer failure policy. Callers hold l.mu.
func (l *Ledger) failWithdrawal(ctx context.Context, w *withdrawal.Withdrawal, snap contribution.Snapshot, amount types.Value, failure error) error {
	w.FailureReason = failure.Error()
	w.Touch()

	if l.policy == PolicyRollback {
		err := l.restore(snap, amount)
		if err == nil {
			w.Status = withdrawal.StatusFailed
			if l.store != nil {
				if err := l.store.UpdateWithdrawal(ctx, w); err != nil {
					// The ledger is intact; Start will refuse to run until the
					// pending record is resolved.
					l.logger.Error("failed to record rolled back withdrawal",
						"withdrawal_id", w.ID.String(),
						"error", err,
					)
				}
			}
			return failure
		}
		// A restore that fails leaves nothing to roll back to.
		failure = errors.Join(failure, err)
	}

	w.Status = withdrawal.StatusStranded
	l.halted = fmt.Errorf("%w: withdrawal %s stranded in round %d", ErrInconsistentState, w.ID, w.Round)
	if l.store != nil {
		if err := l.store.UpdateWithdrawal(ctx, w); err != nil {
			l.logger.Error("failed to record stranded withdrawal",
				"withdrawal_id", w.ID.String(),
				"error", err,
			)
		}
	}
	return errors.Join(failure, l.halted)
}

// restore undoes SnapshotAndClear. Callers hold l.mu.
func (l *Ledger) restore(snap contribution.Snapshot, amount types.Value) error {
	if err := l.book.Restore(snap); err != nil {
		return err
	}
	l.balance = amount
	return nil
}

// usable reports why the ledger refuses mutations. Callers hold l.mu.
func (l *Ledger) usable() error {
	if l.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, l.halted)
	}
	if l.store != nil && !l.started {
		return ErrNotStarted
	}
	return nil
}

// ──────────────────────────────────────────────────
// Re-entrancy
// ──────────────────────────────────────────────────

type reentryKey struct{}

// transferScope marks a context handed to the transferer. It only vouches
// for the held lock while active, so a context kept past Transfer falls
// back to normal locking.
type transferScope struct {
	ledger *Ledger
	active atomic.Bool
}

// reentrant reports whether ctx was handed out by this ledger to a
// transferer that is still running, i.e. whether l.mu is already held further
// up the call chain.
func (l *Ledger) reentrant(ctx context.Context) bool {
	scope, _ := ctx.Value(reentryKey{}).(*transferScope)
	return scope != nil && scope.ledger == l && scope.active.Load()
}

// runTransfer runs the transferer with a context that lets it read the ledger
// while l.mu is held. Callers hold l.mu.
func (l *Ledger) runTransfer(ctx context.Context, to common.Address, amount types.Value) (transfer.Receipt, error) {
	scope := &transferScope{ledger: l}
	scope.active.Store(true)
	defer scope.active.Store(false)
	return l.transferer.Transfer(context.WithValue(ctx, reentryKey{}, scope), to, amount)
}

// lock acquires l.mu unless ctx shows it is already held by the caller.
func (l *Ledger) lock(ctx context.Context) func() {
	if l.reentrant(ctx) {
		return func() {}
	}
	l.mu.Lock()
	return l.mu.Unlock
}

// ──────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────

// Owner returns the owner identity.
func (l *Ledger) Owner() common.Address { return l.guard.Owner() }

// PriceFeed describes the price source.
func (l *Ledger) PriceFeed() string { return l.converter.Source() }

// Minimum returns the minimum contribution in reference units.
func (l *Ledger) Minimum() types.Value { return l.minimum }

// Policy returns the transfer failure policy.
func (l *Ledger) Policy() Policy { return l.policy }

// Balance returns the custodied balance.
func (l *Ledger) Balance(ctx context.Context) types.Value {
	defer l.lock(ctx)()
	return l.balance
}

// AmountOf returns funder's cumulative contribution in the open round.
func (l *Ledger) AmountOf(ctx context.Context, funder common.Address) types.Value {
	defer l.lock(ctx)()
	return l.book.AmountOf(funder)
}

// FunderAt returns the funder of the index-th contribution in the open round.
func (l *Ledger) FunderAt(ctx context.Context, index int) (common.Address, error) {
	defer l.lock(ctx)()
	return l.book.FunderAt(index)
}

// FunderCount returns the number of contributions in the open round.
func (l *Ledger) FunderCount(ctx context.Context) int {
	defer l.lock(ctx)()
	return l.book.Len()
}

// Funders returns the funders registry, one entry per contribution.
func (l *Ledger) Funders(ctx context.Context) []common.Address {
	defer l.lock(ctx)()
	return l.book.Funders()
}

// Contributions returns each funder's cumulative stake in the open round.
func (l *Ledger) Contributions(ctx context.Context) []contribution.Contribution {
	defer l.lock(ctx)()
	return l.book.Contributions()
}

// Round returns the open round number. It starts at 1 and increases with
// every completed withdrawal.
func (l *Ledger) Round(ctx context.Context) int64 {
	defer l.lock(ctx)()
	return l.round
}

// Halted returns the reason the ledger stopped accepting mutations, or nil.
func (l *Ledger) Halted(ctx context.Context) error {
	defer l.lock(ctx)()
	return l.halted
}

// Store returns the configured store, or nil.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// History
// ──────────────────────────────────────────────────

// GetWithdrawal returns a recorded withdrawal.
func (l *Ledger) GetWithdrawal(ctx context.Context, wID id.WithdrawalID) (*withdrawal.Withdrawal, error) {
	if l.store == nil {
		return nil, ErrStoreNotReady
	}
	return l.store.GetWithdrawal(ctx, wID)
}

// ListWithdrawals lists recorded withdrawals, newest round first.
func (l *Ledger) ListWithdrawals(ctx context.Context, opts withdrawal.ListOpts) ([]*withdrawal.Withdrawal, error) {
	if l.store == nil {
		return nil, ErrStoreNotReady
	}
	return l.store.ListWithdrawals(ctx, opts)
}

// ListFundings lists recorded fundings and deposits in round order.
func (l *Ledger) ListFundings(ctx context.Context, opts funding.ListOpts) ([]*funding.Event, error) {
	if l.store == nil {
		return nil, ErrStoreNotReady
	}
	return l.store.ListFundings(ctx, opts)
}
