package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/transfer"
	"github.com/xraph/custody/types"
)

var owner = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestTransferChargesGas(t *testing.T) {
	gasPrice := types.Wei(2_000_000_000) // 2 gwei
	w := New(WithGas(DefaultGasUsed, gasPrice))
	if err := w.Credit(owner, types.MustEther("1")); err != nil {
		t.Fatal(err)
	}

	r, err := w.Transfer(context.Background(), owner, types.MustEther("5"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	wantFee := types.Wei(DefaultGasUsed * 2_000_000_000)
	if !r.Fee.Equal(wantFee) {
		t.Errorf("fee: got %v, want %v", r.Fee, wantFee)
	}
	if r.GasUsed != DefaultGasUsed {
		t.Errorf("gas used: got %d", r.GasUsed)
	}
	if r.TxRef == "" {
		t.Error("empty tx ref")
	}

	// start + withdrawn == end + gasCost
	end := w.BalanceOf(owner)
	lhs, _ := types.MustEther("1").Add(types.MustEther("5"))
	rhs, _ := end.Add(r.Fee)
	if !lhs.Equal(rhs) {
		t.Errorf("balance reconciliation: %v != %v", lhs, rhs)
	}
}

func TestTransferInsufficientForGas(t *testing.T) {
	w := New(WithGas(DefaultGasUsed, types.MustEther("1")))

	_, err := w.Transfer(context.Background(), owner, types.Wei(1))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	if !w.BalanceOf(owner).IsZero() {
		t.Error("balance changed on failed transfer")
	}
}

func TestFailures(t *testing.T) {
	w := New()
	boom := errors.New("boom")

	w.FailNext(boom)
	if _, err := w.Transfer(context.Background(), owner, types.Wei(1)); !errors.Is(err, boom) {
		t.Errorf("first: got %v", err)
	}
	if _, err := w.Transfer(context.Background(), owner, types.Wei(1)); err != nil {
		t.Errorf("second: %v", err)
	}

	w.FailWith(transfer.ErrRejected)
	for i := 0; i < 2; i++ {
		if _, err := w.Transfer(context.Background(), owner, types.Wei(1)); !errors.Is(err, transfer.ErrRejected) {
			t.Errorf("sticky failure %d: got %v", i, err)
		}
	}

	w.FailWith(nil)
	if _, err := w.Transfer(context.Background(), owner, types.Wei(1)); err != nil {
		t.Errorf("after clear: %v", err)
	}
	if n := len(w.Transfers()); n != 2 {
		t.Errorf("history: got %d, want 2", n)
	}
}

func TestHookRunsOutsideLock(t *testing.T) {
	var w *Wallet
	w = New(WithHook(func(_ context.Context, to common.Address, _ types.Value) error {
		_ = w.BalanceOf(to) // would deadlock if the lock were held
		return nil
	}))

	if _, err := w.Transfer(context.Background(), owner, types.Wei(7)); err != nil {
		t.Fatal(err)
	}
	if !w.BalanceOf(owner).Equal(types.Wei(7)) {
		t.Errorf("balance: %v", w.BalanceOf(owner))
	}
}
