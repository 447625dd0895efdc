// Package audithook bridges Custody ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/plugin"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnFunded           = (*Extension)(nil)
	_ plugin.OnFundingRejected  = (*Extension)(nil)
	_ plugin.OnDeposited        = (*Extension)(nil)
	_ plugin.OnWithdrawn        = (*Extension)(nil)
	_ plugin.OnWithdrawalFailed = (*Extension)(nil)
	_ plugin.OnUnauthorized     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Funding hooks
// ──────────────────────────────────────────────────

// OnFunded implements plugin.OnFunded.
func (e *Extension) OnFunded(ctx context.Context, ev *funding.Event) error {
	return e.record(ctx, ActionFundingAccepted, SeverityInfo, OutcomeSuccess,
		ResourceFunding, ev.ID.String(), CategoryFunding, ev.Funder, nil,
		"amount", ev.Amount.String(),
		"reference_value", ev.ReferenceValue.String(),
		"round", ev.Round,
		"price_source", ev.PriceSource,
	)
}

// OnFundingRejected implements plugin.OnFundingRejected.
func (e *Extension) OnFundingRejected(ctx context.Context, funder common.Address, amount types.Value, reason error) error {
	return e.record(ctx, ActionFundingRejected, SeverityWarning, OutcomeFailure,
		ResourceFunding, "", CategoryFunding, funder, reason,
		"amount", amount.String(),
	)
}

// OnDeposited implements plugin.OnDeposited.
func (e *Extension) OnDeposited(ctx context.Context, ev *funding.Event) error {
	return e.record(ctx, ActionDepositReceived, SeverityInfo, OutcomeSuccess,
		ResourceDeposit, ev.ID.String(), CategoryCustody, ev.Funder, nil,
		"amount", ev.Amount.String(),
		"round", ev.Round,
	)
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnWithdrawn implements plugin.OnWithdrawn.
func (e *Extension) OnWithdrawn(ctx context.Context, w *withdrawal.Withdrawal) error {
	return e.record(ctx, ActionWithdrawalCompleted, SeverityInfo, OutcomeSuccess,
		ResourceWithdrawal, w.ID.String(), CategoryTransfer, w.Owner, nil,
		"amount", w.Amount.String(),
		"round", w.Round,
		"funders", w.FunderCount,
		"tx_ref", w.TxRef,
		"fee", w.Fee.String(),
	)
}

// OnWithdrawalFailed implements plugin.OnWithdrawalFailed. A stranded
// withdrawal halts the ledger and is recorded as critical.
func (e *Extension) OnWithdrawalFailed(ctx context.Context, w *withdrawal.Withdrawal, reason error) error {
	action, severity := ActionWithdrawalFailed, SeverityError
	if w.Status == withdrawal.StatusStranded {
		action, severity = ActionWithdrawalStranded, SeverityCritical
	}
	return e.record(ctx, action, severity, OutcomeFailure,
		ResourceWithdrawal, w.ID.String(), CategoryTransfer, w.Owner, reason,
		"amount", w.Amount.String(),
		"round", w.Round,
		"status", string(w.Status),
	)
}

// OnUnauthorized implements plugin.OnUnauthorized.
func (e *Extension) OnUnauthorized(ctx context.Context, caller common.Address, action string) error {
	return e.record(ctx, ActionAccessDenied, SeverityWarning, OutcomeFailure,
		ResourceLedger, "", CategoryAccess, caller, nil,
		"attempted", action,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	actor common.Address,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Actor:      actor.Hex(),
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
