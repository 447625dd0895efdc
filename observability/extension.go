// Package observability provides a metrics extension for Custody that records
// ledger event counts and amounts via a MetricFactory.
package observability

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/plugin"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnFunded           = (*MetricsExtension)(nil)
	_ plugin.OnFundingRejected  = (*MetricsExtension)(nil)
	_ plugin.OnDeposited        = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawn        = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawalFailed = (*MetricsExtension)(nil)
	_ plugin.OnUnauthorized     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger metrics.
// Register it as a Custody plugin to track funding and withdrawal activity.
type MetricsExtension struct {
	factory MetricFactory

	// Funding metrics
	FundingAccepted       Counter
	FundingRejected       Counter
	FundingAmount         Histogram // ether
	FundingReferenceValue Histogram // usd

	// Deposit metrics
	DepositsReceived Counter
	DepositAmount    Histogram

	// Withdrawal metrics
	WithdrawalsCompleted Counter
	WithdrawalsFailed    Counter
	WithdrawalsStranded  Counter
	WithdrawalAmount     Histogram
	WithdrawalFunders    Histogram
	WithdrawalGasUsed    Histogram

	// Access metrics
	Unauthorized Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		FundingAccepted:       factory.Counter("custody.funding.accepted"),
		FundingRejected:       factory.Counter("custody.funding.rejected"),
		FundingAmount:         factory.Histogram("custody.funding.amount_eth"),
		FundingReferenceValue: factory.Histogram("custody.funding.value_usd"),

		DepositsReceived: factory.Counter("custody.deposit.received"),
		DepositAmount:    factory.Histogram("custody.deposit.amount_eth"),

		WithdrawalsCompleted: factory.Counter("custody.withdrawal.completed"),
		WithdrawalsFailed:    factory.Counter("custody.withdrawal.failed"),
		WithdrawalsStranded:  factory.Counter("custody.withdrawal.stranded"),
		WithdrawalAmount:     factory.Histogram("custody.withdrawal.amount_eth"),
		WithdrawalFunders:    factory.Histogram("custody.withdrawal.funders"),
		WithdrawalGasUsed:    factory.Histogram("custody.withdrawal.gas_used"),

		Unauthorized: factory.Counter("custody.access.unauthorized"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Funding hooks
// ──────────────────────────────────────────────────

// OnFunded implements plugin.OnFunded.
func (m *MetricsExtension) OnFunded(_ context.Context, e *funding.Event) error {
	m.FundingAccepted.Inc()
	m.FundingAmount.Observe(major(e.Amount))
	m.FundingReferenceValue.Observe(major(e.ReferenceValue))
	return nil
}

// OnFundingRejected implements plugin.OnFundingRejected.
func (m *MetricsExtension) OnFundingRejected(_ context.Context, _ common.Address, _ types.Value, _ error) error {
	m.FundingRejected.Inc()
	return nil
}

// OnDeposited implements plugin.OnDeposited.
func (m *MetricsExtension) OnDeposited(_ context.Context, e *funding.Event) error {
	m.DepositsReceived.Inc()
	m.DepositAmount.Observe(major(e.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnWithdrawn implements plugin.OnWithdrawn.
func (m *MetricsExtension) OnWithdrawn(_ context.Context, w *withdrawal.Withdrawal) error {
	m.WithdrawalsCompleted.Inc()
	m.WithdrawalAmount.Observe(major(w.Amount))
	m.WithdrawalFunders.Observe(float64(w.FunderCount))
	m.WithdrawalGasUsed.Observe(float64(w.GasUsed))
	return nil
}

// OnWithdrawalFailed implements plugin.OnWithdrawalFailed.
func (m *MetricsExtension) OnWithdrawalFailed(_ context.Context, w *withdrawal.Withdrawal, _ error) error {
	if w != nil && w.Status == withdrawal.StatusStranded {
		m.WithdrawalsStranded.Inc()
		return nil
	}
	m.WithdrawalsFailed.Inc()
	return nil
}

// OnUnauthorized implements plugin.OnUnauthorized.
func (m *MetricsExtension) OnUnauthorized(_ context.Context, _ common.Address, _ string) error {
	m.Unauthorized.Inc()
	return nil
}

// major converts v to a float in major units. Precision loss is acceptable
// for metrics.
func major(v types.Value) float64 {
	return v.Decimal().InexactFloat64()
}
