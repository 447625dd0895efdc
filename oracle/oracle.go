// Package oracle converts native-currency amounts into their reference
// currency value using an external price feed.
//
// A Feed reports the raw price reading. An Adapter turns readings into
// conversions with integer arithmetic only, so the same inputs always produce
// the same comparison against a minimum.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/custody/types"
)

// ErrUnavailable is returned when the feed cannot be read, reports a
// non-positive price, or reports a stale reading.
var ErrUnavailable = errors.New("oracle: price feed unavailable")

// MaxDecimals is the largest precision whose power of ten fits in 256 bits.
// Readings with more decimals are rejected.
const MaxDecimals = 77

// Reading is a single price observation: the value of one whole native unit
// expressed in reference units with Decimals fractional digits.
type Reading struct {
	RoundID   *big.Int  `json:"round_id,omitempty"`
	Price     *big.Int  `json:"price"`
	Decimals  uint8     `json:"decimals"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feed is a read-only price source for a fixed currency pair.
type Feed interface {
	// LatestReading returns the most recent price. Implementations must not
	// cache across calls.
	LatestReading(ctx context.Context) (Reading, error)

	// Source describes where readings come from (contract address, key, ...).
	Source() string
}

// Converter is the capability the ledger needs: native value in, reference
// value out.
type Converter interface {
	Convert(ctx context.Context, native types.Value) (types.Value, error)
	Source() string
}

// Adapter converts native values through a Feed.
type Adapter struct {
	feed   Feed
	maxAge time.Duration
	now    func() time.Time
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMaxAge rejects readings older than d. Zero disables the check.
func WithMaxAge(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.maxAge = d }
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) { a.now = now }
}

// NewAdapter creates an Adapter reading from feed.
func NewAdapter(feed Feed, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		feed: feed,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Converter = (*Adapter)(nil)

// Source returns the underlying feed's description.
func (a *Adapter) Source() string { return a.feed.Source() }

// Feed returns the underlying feed.
func (a *Adapter) Feed() Feed { return a.feed }

// Convert returns native * price / 10^priceDecimals in reference units.
func (a *Adapter) Convert(ctx context.Context, native types.Value) (types.Value, error) {
	if native.Currency != types.Native {
		return types.Value{}, fmt.Errorf("oracle: cannot convert %q: %w", native.Currency, types.ErrInvalidAmount)
	}

	r, err := a.feed.LatestReading(ctx)
	if err != nil {
		return types.Value{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := a.check(r); err != nil {
		return types.Value{}, err
	}

	return Scale(native, r)
}

func (a *Adapter) check(r Reading) error {
	if r.Price == nil || r.Price.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive price %v", ErrUnavailable, r.Price)
	}
	if r.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d price decimals (max %d)", ErrUnavailable, r.Decimals, MaxDecimals)
	}
	if a.maxAge <= 0 {
		return nil
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: reading has no timestamp", ErrUnavailable)
	}
	if age := a.now().Sub(r.UpdatedAt); age > a.maxAge {
		return fmt.Errorf("%w: reading is %s old (max %s)", ErrUnavailable, age.Truncate(time.Second), a.maxAge)
	}
	return nil
}

// Scale converts native into the reference currency using r. The product is
// computed with 512-bit intermediate precision and truncated toward zero.
func Scale(native types.Value, r Reading) (types.Value, error) {
	if r.Price == nil || r.Price.Sign() <= 0 {
		return types.Value{}, fmt.Errorf("%w: price %v out of range", ErrUnavailable, r.Price)
	}
	price, overflow := uint256.FromBig(r.Price)
	if overflow {
		return types.Value{}, fmt.Errorf("%w: price %v out of range", ErrUnavailable, r.Price)
	}
	if r.Decimals > MaxDecimals {
		return types.Value{}, fmt.Errorf("%w: %d price decimals (max %d)", ErrUnavailable, r.Decimals, MaxDecimals)
	}
	if native.Decimals > MaxDecimals {
		return types.Value{}, fmt.Errorf("oracle: %d native decimals (max %d): %w", native.Decimals, MaxDecimals, types.ErrOverflow)
	}

	y := price
	d := pow10(r.Decimals)

	switch {
	case types.ReferenceDecimals >= native.Decimals:
		if y, overflow = new(uint256.Int).MulOverflow(price, pow10(types.ReferenceDecimals-native.Decimals)); overflow {
			return types.Value{}, types.ErrOverflow
		}
	default:
		if d, overflow = new(uint256.Int).MulOverflow(d, pow10(native.Decimals-types.ReferenceDecimals)); overflow {
			return types.Value{}, types.ErrOverflow
		}
	}

	out, overflow := new(uint256.Int).MulDivOverflow(&native.Amount, y, d)
	if overflow {
		return types.Value{}, types.ErrOverflow
	}
	return types.NewValue(out, types.Reference, types.ReferenceDecimals), nil
}

// pow10 returns 10^n. Callers keep n <= MaxDecimals.
func pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}
