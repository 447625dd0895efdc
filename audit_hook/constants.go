package audithook

// Action constants for audit events.
const (
	// Funding actions
	ActionFundingAccepted = "funding.accepted"
	ActionFundingRejected = "funding.rejected"
	ActionDepositReceived = "deposit.received"

	// Withdrawal actions
	ActionWithdrawalCompleted = "withdrawal.completed"
	ActionWithdrawalFailed    = "withdrawal.failed"
	ActionWithdrawalStranded  = "withdrawal.stranded"

	// Access actions
	ActionAccessDenied = "access.denied"
)

// Resource constants for audit events.
const (
	ResourceFunding    = "funding"
	ResourceDeposit    = "deposit"
	ResourceWithdrawal = "withdrawal"
	ResourceLedger     = "ledger"
)

// Category constants for audit events.
const (
	CategoryFunding  = "funding"
	CategoryCustody  = "custody"
	CategoryAccess   = "access"
	CategoryTransfer = "transfer"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
