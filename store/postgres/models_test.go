package postgres

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

var funder = common.HexToAddress("0x00000000000000000000000000000000000a11ce")

func TestFundingModelRoundTrip(t *testing.T) {
	in := &funding.Event{
		Entity:         types.NewEntity(),
		ID:             id.NewDepositID(),
		Kind:           funding.KindDeposit,
		Funder:         funder,
		Amount:         types.MustEther("1.5"),
		ReferenceValue: types.MustUSD("3000"),
		Round:          4,
		Sequence:       2,
		PriceSource:    "static",
		Metadata:       map[string]string{"memo": "gift"},
	}

	out, err := fromFundingModel(toFundingModel(in))
	if err != nil {
		t.Fatalf("fromFundingModel: %v", err)
	}
	if out.ID.String() != in.ID.String() || out.Kind != in.Kind || out.Funder != in.Funder {
		t.Errorf("identity mismatch: %+v", out)
	}
	if !out.Amount.Equal(in.Amount) || !out.ReferenceValue.Equal(in.ReferenceValue) {
		t.Errorf("amounts: got %v / %v", out.Amount, out.ReferenceValue)
	}
	if out.Round != 4 || out.Sequence != 2 || out.Metadata["memo"] != "gift" {
		t.Errorf("fields: %+v", out)
	}
}

func TestWithdrawalModelRoundTrip(t *testing.T) {
	done := time.Now().UTC()
	in := &withdrawal.Withdrawal{
		Entity: types.NewEntity(),
		ID:     id.NewWithdrawalID(),
		Owner:  funder,
		Round:  2,
		Amount: types.MustEther("5"),
		Contributions: []contribution.Contribution{
			{Funder: funder, Amount: types.MustEther("5")},
		},
		FunderCount: 5,
		Status:      withdrawal.StatusCompleted,
		TxRef:       "0xfeed",
		GasUsed:     21000,
		Fee:         types.Wei(42_000_000_000_000),
		CompletedAt: &done,
	}

	m, err := toWithdrawalModel(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := fromWithdrawalModel(m)
	if err != nil {
		t.Fatalf("fromWithdrawalModel: %v", err)
	}
	if !out.Amount.Equal(in.Amount) || !out.Fee.Equal(in.Fee) {
		t.Errorf("amounts: %v / %v", out.Amount, out.Fee)
	}
	if len(out.Contributions) != 1 || out.Contributions[0].Funder != funder {
		t.Errorf("contributions: %+v", out.Contributions)
	}
	if out.Status != withdrawal.StatusCompleted || out.GasUsed != 21000 || out.CompletedAt == nil {
		t.Errorf("fields: %+v", out)
	}
}
