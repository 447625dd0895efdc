package mongo

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// valueModel stores an amount as a base-10 string of base units; BSON has no
// 256-bit integer type.
type valueModel struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
	Decimals int    `bson:"decimals"`
}

func toValueModel(v types.Value) valueModel {
	return valueModel{
		Amount:   v.Amount.Dec(),
		Currency: v.Currency,
		Decimals: int(v.Decimals),
	}
}

func fromValueModel(m valueModel) (types.Value, error) {
	return types.FromBaseUnits(m.Amount, m.Currency, uint8(m.Decimals))
}

// ==================== Funding models ====================

type fundingModel struct {
	grove.BaseModel `grove:"table:custody_fundings"`

	ID             string            `grove:"id,pk"           bson:"_id"`
	Kind           string            `grove:"kind"            bson:"kind"`
	Funder         string            `grove:"funder"          bson:"funder"`
	Amount         valueModel        `grove:"amount"          bson:"amount"`
	ReferenceValue valueModel        `grove:"reference_value" bson:"reference_value"`
	Round          int64             `grove:"round"           bson:"round"`
	Sequence       int64             `grove:"sequence"        bson:"sequence"`
	PriceSource    string            `grove:"price_source"    bson:"price_source,omitempty"`
	Metadata       map[string]string `grove:"metadata"        bson:"metadata,omitempty"`
	CreatedAt      time.Time         `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time         `grove:"updated_at"      bson:"updated_at"`
}

func toFundingModel(e *funding.Event) *fundingModel {
	return &fundingModel{
		ID:             e.ID.String(),
		Kind:           string(e.Kind),
		Funder:         e.Funder.Hex(),
		Amount:         toValueModel(e.Amount),
		ReferenceValue: toValueModel(e.ReferenceValue),
		Round:          e.Round,
		Sequence:       e.Sequence,
		PriceSource:    e.PriceSource,
		Metadata:       e.Metadata,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func fromFundingModel(m *fundingModel) (*funding.Event, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := fromValueModel(m.Amount)
	if err != nil {
		return nil, err
	}
	ref, err := fromValueModel(m.ReferenceValue)
	if err != nil {
		return nil, err
	}

	return &funding.Event{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             eventID,
		Kind:           funding.Kind(m.Kind),
		Funder:         common.HexToAddress(m.Funder),
		Amount:         amount,
		ReferenceValue: ref,
		Round:          m.Round,
		Sequence:       m.Sequence,
		PriceSource:    m.PriceSource,
		Metadata:       m.Metadata,
	}, nil
}

// ==================== Withdrawal models ====================

type withdrawalModel struct {
	grove.BaseModel `grove:"table:custody_withdrawals"`

	ID            string              `grove:"id,pk"          bson:"_id"`
	Owner         string              `grove:"owner"          bson:"owner"`
	Round         int64               `grove:"round"          bson:"round"`
	Amount        valueModel          `grove:"amount"         bson:"amount"`
	Contributions []contributionModel `grove:"contributions"  bson:"contributions"`
	FunderCount   int                 `grove:"funder_count"   bson:"funder_count"`
	Status        string              `grove:"status"         bson:"status"`
	TxRef         string              `grove:"tx_ref"         bson:"tx_ref,omitempty"`
	GasUsed       int64               `grove:"gas_used"       bson:"gas_used"`
	Fee           valueModel          `grove:"fee"            bson:"fee"`
	FailureReason string              `grove:"failure_reason" bson:"failure_reason,omitempty"`
	CompletedAt   *time.Time          `grove:"completed_at"   bson:"completed_at,omitempty"`
	CreatedAt     time.Time           `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time           `grove:"updated_at"     bson:"updated_at"`
}

type contributionModel struct {
	Funder string     `bson:"funder"`
	Amount valueModel `bson:"amount"`
}

func toWithdrawalModel(w *withdrawal.Withdrawal) *withdrawalModel {
	contributions := make([]contributionModel, len(w.Contributions))
	for i, c := range w.Contributions {
		contributions[i] = contributionModel{
			Funder: c.Funder.Hex(),
			Amount: toValueModel(c.Amount),
		}
	}

	return &withdrawalModel{
		ID:            w.ID.String(),
		Owner:         w.Owner.Hex(),
		Round:         w.Round,
		Amount:        toValueModel(w.Amount),
		Contributions: contributions,
		FunderCount:   w.FunderCount,
		Status:        string(w.Status),
		TxRef:         w.TxRef,
		GasUsed:       int64(w.GasUsed),
		Fee:           toValueModel(w.Fee),
		FailureReason: w.FailureReason,
		CompletedAt:   w.CompletedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func fromWithdrawalModel(m *withdrawalModel) (*withdrawal.Withdrawal, error) {
	wID, err := id.ParseWithdrawalID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := fromValueModel(m.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := fromValueModel(m.Fee)
	if err != nil {
		return nil, err
	}

	contributions := make([]contribution.Contribution, len(m.Contributions))
	for i, c := range m.Contributions {
		amt, err := fromValueModel(c.Amount)
		if err != nil {
			return nil, err
		}
		contributions[i] = contribution.Contribution{
			Funder: common.HexToAddress(c.Funder),
			Amount: amt,
		}
	}

	return &withdrawal.Withdrawal{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            wID,
		Owner:         common.HexToAddress(m.Owner),
		Round:         m.Round,
		Amount:        amount,
		Contributions: contributions,
		FunderCount:   m.FunderCount,
		Status:        withdrawal.Status(m.Status),
		TxRef:         m.TxRef,
		GasUsed:       uint64(m.GasUsed),
		Fee:           fee,
		FailureReason: m.FailureReason,
		CompletedAt:   m.CompletedAt,
	}, nil
}
