package funding

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
)

// Kind distinguishes contributions from out-of-band deposits.
type Kind string

const (
	// KindFund is a contribution recorded against the funder's stake.
	KindFund Kind = "fund"
	// KindDeposit adds to the custodied balance without a stake.
	KindDeposit Kind = "deposit"
)

// Event is one accepted value inflow.
type Event struct {
	types.Entity
	ID             id.ID             `json:"id"`
	Kind           Kind              `json:"kind"`
	Funder         common.Address    `json:"funder"`
	Amount         types.Value       `json:"amount"`
	ReferenceValue types.Value       `json:"reference_value"`
	Round          int64             `json:"round"`
	Sequence       int64             `json:"sequence"`
	PriceSource    string            `json:"price_source,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Stake reports whether the event counts toward the funder's contribution.
func (e *Event) Stake() bool { return e.Kind == KindFund }
