// Package transfer defines the outbound balance transfer primitive used by
// withdrawals.
package transfer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/types"
)

// ErrRejected is returned by transferers when the recipient refuses the value.
var ErrRejected = errors.New("transfer: rejected by recipient")

// Receipt describes a completed transfer. Gas fields are zero on hosts that
// do not charge for execution.
type Receipt struct {
	TxRef             string         `json:"tx_ref"`
	To                common.Address `json:"to"`
	Amount            types.Value    `json:"amount"`
	GasUsed           uint64         `json:"gas_used"`
	EffectiveGasPrice types.Value    `json:"effective_gas_price"`
	Fee               types.Value    `json:"fee"`
}

// Transferer moves value out of custody to a recipient. Implementations may
// call back into the ledger through ctx.
type Transferer interface {
	Transfer(ctx context.Context, to common.Address, amount types.Value) (Receipt, error)
}

// Func adapts a plain function to Transferer.
type Func func(ctx context.Context, to common.Address, amount types.Value) (Receipt, error)

// Transfer implements Transferer.
func (f Func) Transfer(ctx context.Context, to common.Address, amount types.Value) (Receipt, error) {
	return f(ctx, to, amount)
}
