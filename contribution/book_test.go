package contribution

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/xraph/custody/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestRecordAccumulates(t *testing.T) {
	b := NewBook()

	steps := []struct {
		funder common.Address
		amount string
	}{
		{alice, "1"},
		{bob, "0.5"},
		{alice, "0.25"},
	}
	for _, s := range steps {
		if err := b.Record(s.funder, types.MustEther(s.amount)); err != nil {
			t.Fatalf("Record(%s, %s): %v", s.funder.Hex(), s.amount, err)
		}
	}

	if got := b.AmountOf(alice); !got.Equal(types.MustEther("1.25")) {
		t.Errorf("alice: got %v, want Ξ1.25", got)
	}
	if got := b.AmountOf(bob); !got.Equal(types.MustEther("0.5")) {
		t.Errorf("bob: got %v, want Ξ0.5", got)
	}
	if b.Len() != 3 {
		t.Errorf("registry length: got %d, want 3", b.Len())
	}

	want := []common.Address{alice, bob, alice}
	for i, w := range want {
		got, err := b.FunderAt(i)
		if err != nil {
			t.Fatalf("FunderAt(%d): %v", i, err)
		}
		if got != w {
			t.Errorf("FunderAt(%d): got %s, want %s", i, got.Hex(), w.Hex())
		}
	}
}

func TestAmountOfUnknown(t *testing.T) {
	b := NewBook()
	if got := b.AmountOf(alice); !got.IsZero() {
		t.Errorf("expected zero, got %v", got)
	}
}

func TestFunderAtOutOfRange(t *testing.T) {
	b := NewBook()

	for _, idx := range []int{0, -1, 1} {
		if _, err := b.FunderAt(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("empty FunderAt(%d): got %v", idx, err)
		}
	}

	_ = b.Record(alice, types.MustEther("1"))
	if _, err := b.FunderAt(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("FunderAt(1) with one entry: got %v", err)
	}
}

func TestRecordOverflowLeavesBookUnchanged(t *testing.T) {
	b := NewBook()
	top := types.NewValue(new(uint256.Int).SetAllOne(), types.Native, types.NativeDecimals)

	if err := b.Record(alice, top); err != nil {
		t.Fatal(err)
	}
	if err := b.CanRecord(alice, types.Wei(1)); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("CanRecord: got %v, want ErrOverflow", err)
	}
	if err := b.Record(alice, types.Wei(1)); !errors.Is(err, types.ErrOverflow) {
		t.Fatalf("Record: got %v, want ErrOverflow", err)
	}

	if b.Len() != 1 {
		t.Errorf("registry grew on overflow: %d", b.Len())
	}
	if got := b.AmountOf(alice); !got.Equal(top) {
		t.Errorf("stake changed on overflow: %v", got)
	}
}

func TestSnapshotAndClear(t *testing.T) {
	b := NewBook()
	_ = b.Record(alice, types.MustEther("1"))
	_ = b.Record(bob, types.MustEther("2"))
	_ = b.Record(alice, types.MustEther("3"))

	snap := b.SnapshotAndClear()

	if len(snap.Contributions) != 2 {
		t.Fatalf("contributions: got %d, want 2", len(snap.Contributions))
	}
	if snap.Contributions[0].Funder != alice || !snap.Contributions[0].Amount.Equal(types.MustEther("4")) {
		t.Errorf("first contribution: %+v", snap.Contributions[0])
	}
	if len(snap.Funders) != 3 {
		t.Errorf("snapshot funders: got %d, want 3", len(snap.Funders))
	}
	total, err := snap.Total()
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(types.MustEther("6")) {
		t.Errorf("total: got %v, want Ξ6", total)
	}

	if b.Len() != 0 {
		t.Errorf("registry not cleared: %d", b.Len())
	}
	if !b.AmountOf(alice).IsZero() || !b.AmountOf(bob).IsZero() {
		t.Error("stakes not cleared")
	}
	if len(b.Contributions()) != 0 {
		t.Error("contributions not cleared")
	}
	if _, err := b.FunderAt(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("FunderAt(0) after clear: got %v", err)
	}
}

func TestRestore(t *testing.T) {
	b := NewBook()
	_ = b.Record(alice, types.MustEther("1"))
	_ = b.Record(bob, types.MustEther("2"))
	_ = b.Record(alice, types.MustEther("1"))

	snap := b.SnapshotAndClear()
	if err := b.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if got := b.AmountOf(alice); !got.Equal(types.MustEther("2")) {
		t.Errorf("alice after restore: %v", got)
	}
	if b.Len() != 3 {
		t.Errorf("registry after restore: %d", b.Len())
	}
	if f, _ := b.FunderAt(2); f != alice {
		t.Errorf("FunderAt(2) after restore: %s", f.Hex())
	}

	// Restoring on top of new records is refused.
	snap = b.SnapshotAndClear()
	_ = b.Record(bob, types.MustEther("1"))
	if err := b.Restore(snap); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("Restore into non-empty book: got %v", err)
	}
}
