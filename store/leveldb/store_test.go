package leveldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody"
	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/id"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fundEvent(funder common.Address, round, seq int64, amount string) *funding.Event {
	return &funding.Event{
		Entity:         types.NewEntity(),
		ID:             id.NewFundingID(),
		Kind:           funding.KindFund,
		Funder:         funder,
		Amount:         types.MustEther(amount),
		ReferenceValue: types.MustUSD("200"),
		Round:          round,
		Sequence:       seq,
	}
}

func TestFundingPersistence(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Sequence 10 must sort after 9 despite string keys.
	events := []*funding.Event{
		fundEvent(alice, 1, 10, "1"),
		fundEvent(bob, 1, 9, "2"),
		fundEvent(alice, 2, 0, "3"),
	}
	for _, e := range events {
		if err := s.RecordFunding(ctx, e); err != nil {
			t.Fatalf("RecordFunding: %v", err)
		}
	}
	if err := s.RecordFunding(ctx, events[0]); !errors.Is(err, custody.ErrAlreadyExists) {
		t.Errorf("duplicate: got %v", err)
	}

	got, err := s.GetFunding(ctx, events[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Funder != bob || !got.Amount.Equal(types.MustEther("2")) || !got.ReferenceValue.Equal(types.MustUSD("200")) {
		t.Errorf("decoded event mismatch: %+v", got)
	}
	if got.ID.String() != events[1].ID.String() {
		t.Errorf("id: got %s", got.ID)
	}

	round1, err := s.ListFundings(ctx, funding.ListOpts{Round: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(round1) != 2 || round1[0].Sequence != 9 || round1[1].Sequence != 10 {
		t.Errorf("round 1 order: %+v", round1)
	}

	byAlice, _ := s.ListFundings(ctx, funding.ListOpts{Funder: &alice})
	if len(byAlice) != 2 {
		t.Errorf("alice: got %d", len(byAlice))
	}

	paged, _ := s.ListFundings(ctx, funding.ListOpts{Offset: 1, Limit: 1})
	if len(paged) != 1 || paged[0].Sequence != 10 {
		t.Errorf("paged: %+v", paged)
	}

	if _, err := s.GetFunding(ctx, id.NewFundingID()); !errors.Is(err, custody.ErrFundingNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestSettledRoundAdvances(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	mk := func(round int64, status withdrawal.Status) *withdrawal.Withdrawal {
		return &withdrawal.Withdrawal{
			Entity: types.NewEntity(),
			ID:     id.NewWithdrawalID(),
			Round:  round,
			Amount: types.MustEther("1"),
			Contributions: []contribution.Contribution{
				{Funder: alice, Amount: types.MustEther("1")},
			},
			FunderCount: 1,
			Status:      status,
			Fee:         types.ZeroNative(),
		}
	}

	w1 := mk(1, withdrawal.StatusPending)
	if err := s.CreateWithdrawal(ctx, w1); err != nil {
		t.Fatal(err)
	}
	if last, _ := s.LastSettledRound(ctx); last != 0 {
		t.Errorf("pending settled the round: %d", last)
	}

	now := time.Now().UTC()
	w1.Status = withdrawal.StatusCompleted
	w1.CompletedAt = &now
	if err := s.UpdateWithdrawal(ctx, w1); err != nil {
		t.Fatal(err)
	}
	if last, _ := s.LastSettledRound(ctx); last != 1 {
		t.Errorf("last settled: got %d, want 1", last)
	}

	// An older completed round never moves the marker back.
	w0 := mk(0, withdrawal.StatusCompleted)
	if err := s.CreateWithdrawal(ctx, w0); err != nil {
		t.Fatal(err)
	}
	if last, _ := s.LastSettledRound(ctx); last != 1 {
		t.Errorf("last settled moved back: %d", last)
	}

	got, err := s.GetWithdrawal(ctx, w1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != withdrawal.StatusCompleted || got.CompletedAt == nil || len(got.Contributions) != 1 {
		t.Errorf("decoded withdrawal mismatch: %+v", got)
	}

	list, _ := s.ListWithdrawals(ctx, withdrawal.ListOpts{Status: withdrawal.StatusCompleted})
	if len(list) != 2 || list[0].Round != 1 {
		t.Errorf("list: %+v", list)
	}

	if err := s.UpdateWithdrawal(ctx, mk(5, withdrawal.StatusFailed)); !errors.Is(err, custody.ErrWithdrawalNotFound) {
		t.Errorf("update missing: got %v", err)
	}
}

func TestClosed(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	if err := s.Ping(context.Background()); !errors.Is(err, custody.ErrStoreClosed) {
		t.Errorf("ping after close: got %v", err)
	}
}
