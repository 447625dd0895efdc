package withdrawal

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
)

type Status string

const (
	// StatusPending is written after the ledger is cleared and before the
	// transfer is attempted.
	StatusPending Status = "pending"
	// StatusCompleted means the transfer succeeded and the round is closed.
	StatusCompleted Status = "completed"
	// StatusFailed means the transfer failed and the clear was rolled back.
	StatusFailed Status = "failed"
	// StatusStranded means the transfer failed after the clear was committed.
	// The contributions snapshot is the only remaining record of the round.
	StatusStranded Status = "stranded"
)

// Unresolved reports whether the outcome still needs operator attention.
func (s Status) Unresolved() bool {
	return s == StatusPending || s == StatusStranded
}

type Withdrawal struct {
	types.Entity
	ID            id.WithdrawalID             `json:"id"`
	Owner         common.Address              `json:"owner"`
	Round         int64                       `json:"round"`
	Amount        types.Value                 `json:"amount"`
	Contributions []contribution.Contribution `json:"contributions"`
	FunderCount   int                         `json:"funder_count"`
	Status        Status                      `json:"status"`
	TxRef         string                      `json:"tx_ref,omitempty"`
	GasUsed       uint64                      `json:"gas_used,omitempty"`
	Fee           types.Value                 `json:"fee"`
	FailureReason string                      `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time                  `json:"completed_at,omitempty"`
}
