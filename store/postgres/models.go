package postgres

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// ==================== Funding models ====================

type fundingModel struct {
	grove.BaseModel `grove:"table:custody_fundings"`

	ID                string            `grove:"id,pk"`
	Kind              string            `grove:"kind"`
	Funder            string            `grove:"funder"`
	Amount            string            `grove:"amount"`
	Currency          string            `grove:"currency"`
	Decimals          int               `grove:"decimals"`
	ReferenceAmount   string            `grove:"reference_amount"`
	ReferenceCurrency string            `grove:"reference_currency"`
	ReferenceDecimals int               `grove:"reference_decimals"`
	Round             int64             `grove:"round"`
	Sequence          int64             `grove:"sequence"`
	PriceSource       string            `grove:"price_source"`
	Metadata          map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt         time.Time         `grove:"created_at"`
	UpdatedAt         time.Time         `grove:"updated_at"`
}

func toFundingModel(e *funding.Event) *fundingModel {
	return &fundingModel{
		ID:                e.ID.String(),
		Kind:              string(e.Kind),
		Funder:            e.Funder.Hex(),
		Amount:            e.Amount.Amount.Dec(),
		Currency:          e.Amount.Currency,
		Decimals:          int(e.Amount.Decimals),
		ReferenceAmount:   e.ReferenceValue.Amount.Dec(),
		ReferenceCurrency: e.ReferenceValue.Currency,
		ReferenceDecimals: int(e.ReferenceValue.Decimals),
		Round:             e.Round,
		Sequence:          e.Sequence,
		PriceSource:       e.PriceSource,
		Metadata:          e.Metadata,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func fromFundingModel(m *fundingModel) (*funding.Event, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := types.FromBaseUnits(m.Amount, m.Currency, uint8(m.Decimals))
	if err != nil {
		return nil, err
	}
	ref, err := types.FromBaseUnits(m.ReferenceAmount, m.ReferenceCurrency, uint8(m.ReferenceDecimals))
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

	ID            string          `grove:"id,pk"`
	Owner         string          `grove:"owner"`
	Round         int64           `grove:"round"`
	Amount        string          `grove:"amount"`
	Currency      string          `grove:"currency"`
	Decimals      int             `grove:"decimals"`
	Contributions json.RawMessage `grove:"contributions,type:jsonb"`
	FunderCount   int             `grove:"funder_count"`
	Status        string          `grove:"status"`
	TxRef         string          `grove:"tx_ref"`
	GasUsed       int64           `grove:"gas_used"`
	Fee           string          `grove:"fee"`
	FailureReason string          `grove:"failure_reason"`
	CompletedAt   *time.Time      `grove:"completed_at"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toWithdrawalModel(w *withdrawal.Withdrawal) (*withdrawalModel, error) {
	contributions, err := json.Marshal(w.Contributions)
	if err != nil {
		return nil, err
	}

	return &withdrawalModel{
		ID:            w.ID.String(),
		Owner:         w.Owner.Hex(),
		Round:         w.Round,
		Amount:        w.Amount.Amount.Dec(),
		Currency:      w.Amount.Currency,
		Decimals:      int(w.Amount.Decimals),
		Contributions: contributions,
		FunderCount:   w.FunderCount,
		Status:        string(w.Status),
		TxRef:         w.TxRef,
		GasUsed:       int64(w.GasUsed),
		Fee:           w.Fee.Amount.Dec(),
		FailureReason: w.FailureReason,
		CompletedAt:   w.CompletedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}

func fromWithdrawalModel(m *withdrawalModel) (*withdrawal.Withdrawal, error) {
	wID, err := id.ParseWithdrawalID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := types.FromBaseUnits(m.Amount, m.Currency, uint8(m.Decimals))
	if err != nil {
		return nil, err
	}
	fee, err := types.FromBaseUnits(m.Fee, m.Currency, uint8(m.Decimals))
	if err != nil {
		return nil, err
	}

	var contributions []contribution.Contribution
	if len(m.Contributions) > 0 {
		if err := json.Unmarshal(m.Contributions, &contributions); err != nil {
			return nil, err
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
