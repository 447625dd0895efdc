package oracle_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/xraph/custody/oracle"
	"github.com/xraph/custody/types"
)

func TestConvert(t *testing.T) {
	feed := oracle.NewStaticFeed(8, big.NewInt(2000e8))
	a := oracle.NewAdapter(feed)

	tests := []struct {
		native string
		want   string
	}{
		{"1", "2000"},
		{"0.1", "200"},
		{"0.01", "20"},
		{"0.025", "50"},
		{"0", "0"},
		{"0.000000000000000001", "0.000000000000002"},
	}

	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			got, err := a.Convert(context.Background(), types.MustEther(tt.native))
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if want := types.MustUSD(tt.want); !got.Equal(want) {
				t.Errorf("got %s, want %s", got.Amount.Dec(), want.Amount.Dec())
			}
		})
	}
}

func TestConvertPrecision(t *testing.T) {
	// 1834.12345678 USD per ETH, 18-decimal price feed.
	price, _ := new(big.Int).SetString("1834123456780000000000", 10)
	a := oracle.NewAdapter(oracle.NewStaticFeed(18, price))

	got, err := a.Convert(context.Background(), types.MustEther("2"))
	if err != nil {
		t.Fatal(err)
	}
	if want := types.MustUSD("3668.24691356"); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Amount.Dec(), want.Amount.Dec())
	}
}

func TestConvertFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		decimals uint8
		setup    func(f *oracle.StaticFeed)
		opts     []oracle.AdapterOption
	}{
		{
			name:  "feed error",
			setup: func(f *oracle.StaticFeed) { f.SetError(errors.New("connection refused")) },
		},
		{
			name:  "zero price",
			setup: func(f *oracle.StaticFeed) { f.UpdateAnswer(big.NewInt(0)) },
		},
		{
			name:  "negative price",
			setup: func(f *oracle.StaticFeed) { f.UpdateAnswer(big.NewInt(-1)) },
		},
		{
			name:  "stale",
			setup: func(f *oracle.StaticFeed) { f.SetUpdatedAt(now.Add(-2 * time.Hour)) },
			opts:  []oracle.AdapterOption{oracle.WithMaxAge(time.Hour), oracle.WithClock(func() time.Time { return now })},
		},
		{
			name:  "missing timestamp",
			setup: func(f *oracle.StaticFeed) { f.SetUpdatedAt(time.Time{}) },
			opts:  []oracle.AdapterOption{oracle.WithMaxAge(time.Hour)},
		},
		{
			name:     "precision beyond 256 bits",
			decimals: oracle.MaxDecimals + 1,
			setup:    func(*oracle.StaticFeed) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decimals := tt.decimals
			if decimals == 0 {
				decimals = 8
			}
			f := oracle.NewStaticFeed(decimals, big.NewInt(2000e8))
			tt.setup(f)

			_, err := oracle.NewAdapter(f, tt.opts...).Convert(context.Background(), types.MustEther("1"))
			if !errors.Is(err, oracle.ErrUnavailable) {
				t.Errorf("got %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestConvertFreshReading(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := oracle.NewStaticFeed(8, big.NewInt(2000e8))
	f.SetUpdatedAt(now.Add(-30 * time.Minute))

	a := oracle.NewAdapter(f, oracle.WithMaxAge(time.Hour), oracle.WithClock(func() time.Time { return now }))
	if _, err := a.Convert(context.Background(), types.MustEther("1")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConvertRejectsReferenceInput(t *testing.T) {
	a := oracle.NewAdapter(oracle.NewStaticFeed(8, big.NewInt(2000e8)))
	if _, err := a.Convert(context.Background(), types.MustUSD("1")); !errors.Is(err, types.ErrInvalidAmount) {
		t.Errorf("got %v, want ErrInvalidAmount", err)
	}
}

func TestStaticFeedRounds(t *testing.T) {
	f := oracle.NewStaticFeed(8, big.NewInt(2000e8))
	f.UpdateAnswer(big.NewInt(2100e8))

	r, err := f.LatestReading(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.RoundID.Int64() != 2 {
		t.Errorf("round: got %v, want 2", r.RoundID)
	}
	if r.Price.Cmp(big.NewInt(2100e8)) != 0 {
		t.Errorf("price: got %v", r.Price)
	}
	if f.Source() == "" {
		t.Error("empty source")
	}
}

func TestScaleDecimalsBound(t *testing.T) {
	tenTo := func(n int64) *big.Int { return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil) }

	// 10^77 with 77 decimals is exactly $1 per ETH.
	got, err := oracle.Scale(types.MustEther("1"), oracle.Reading{Price: tenTo(77), Decimals: oracle.MaxDecimals})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(types.MustUSD("1")) {
		t.Errorf("77 decimals: got %s, want $1.00", got)
	}

	// One more digit no longer fits; it must fail instead of wrapping.
	got, err = oracle.Scale(types.MustEther("1"), oracle.Reading{Price: tenTo(77), Decimals: oracle.MaxDecimals + 1})
	if !errors.Is(err, oracle.ErrUnavailable) {
		t.Errorf("78 decimals: got %s, %v", got, err)
	}
}
