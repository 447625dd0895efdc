package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Units used by the custody ledger.
const (
	// Native is the custodied currency (ether, counted in wei).
	Native         = "eth"
	NativeDecimals = 18

	// Reference is the currency the minimum contribution is denominated in.
	Reference         = "usd"
	ReferenceDecimals = 18
)

var (
	// ErrOverflow is returned when an addition leaves the 256-bit range.
	ErrOverflow = errors.New("types: arithmetic overflow")

	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("types: arithmetic underflow")

	// ErrInvalidAmount is returned when a textual amount cannot be parsed.
	ErrInvalidAmount = errors.New("types: invalid amount")
)

// Value is a non-negative fixed-point amount of a currency, stored as an
// unsigned 256-bit count of the smallest unit. All arithmetic is integer-only
// and never wraps.
//
// Examples:
//   - Wei(1e17) = Ξ0.1
//   - MustUSD("50") = $50.00 (50 * 10^18 base units)
type Value struct {
	Amount   uint256.Int
	Currency string // lowercase: "eth", "usd"
	Decimals uint8
}

// NewValue creates a Value from a count of base units.
func NewValue(amount *uint256.Int, currency string, decimals uint8) Value {
	v := Value{Currency: strings.ToLower(currency), Decimals: decimals}
	if amount != nil {
		v.Amount.Set(amount)
	}
	return v
}

// Wei creates a native Value from a wei count.
func Wei(wei uint64) Value {
	return NewValue(uint256.NewInt(wei), Native, NativeDecimals)
}

// WeiFromBig creates a native Value from a big integer wei count.
func WeiFromBig(wei *big.Int) (Value, error) {
	if wei == nil || wei.Sign() < 0 {
		return Value{}, fmt.Errorf("%w: negative or nil wei", ErrInvalidAmount)
	}
	u, overflow := uint256.FromBig(wei)
	if overflow {
		return Value{}, ErrOverflow
	}
	return NewValue(u, Native, NativeDecimals), nil
}

// Zero returns a zero Value in the given unit.
func Zero(currency string, decimals uint8) Value {
	return Value{Currency: strings.ToLower(currency), Decimals: decimals}
}

// ZeroNative returns zero wei.
func ZeroNative() Value { return Zero(Native, NativeDecimals) }

// ZeroReference returns a zero reference-currency Value.
func ZeroReference() Value { return Zero(Reference, ReferenceDecimals) }

// ParseValue parses a decimal string expressed in major units ("0.1", "50")
// into a Value. More fractional digits than the unit carries is an error.
func ParseValue(s, currency string, decimals uint8) (Value, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return Value{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Value{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, decimals)
	}

	u, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return Value{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return NewValue(u, currency, decimals), nil
}

// Ether parses an ether amount such as "0.1".
func Ether(s string) (Value, error) { return ParseValue(s, Native, NativeDecimals) }

// MustEther is like Ether but panics on error. Use for hardcoded amounts.
func MustEther(s string) Value {
	v, err := Ether(s)
	if err != nil {
		panic(err)
	}
	return v
}

// USD parses a dollar amount such as "50".
func USD(s string) (Value, error) { return ParseValue(s, Reference, ReferenceDecimals) }

// MustUSD is like USD but panics on error.
func MustUSD(s string) Value {
	v, err := USD(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Arithmetic operations

// Add adds two Values. Panics if units don't match; returns ErrOverflow
// instead of wrapping.
func (v Value) Add(other Value) (Value, error) {
	v.assertSameUnit(other)
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&v.Amount, &other.Amount); overflow {
		return Value{}, fmt.Errorf("%w: %s + %s", ErrOverflow, v.Amount.Dec(), other.Amount.Dec())
	}
	return Value{Amount: sum, Currency: v.Currency, Decimals: v.Decimals}, nil
}

// Sub subtracts another Value. Panics if units don't match; returns
// ErrUnderflow when other is larger.
func (v Value) Sub(other Value) (Value, error) {
	v.assertSameUnit(other)
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&v.Amount, &other.Amount); underflow {
		return Value{}, fmt.Errorf("%w: %s - %s", ErrUnderflow, v.Amount.Dec(), other.Amount.Dec())
	}
	return Value{Amount: diff, Currency: v.Currency, Decimals: v.Decimals}, nil
}

// MulUint64 multiplies the Value by a quantity.
func (v Value) MulUint64(qty uint64) (Value, error) {
	var prod uint256.Int
	if _, overflow := prod.MulOverflow(&v.Amount, uint256.NewInt(qty)); overflow {
		return Value{}, fmt.Errorf("%w: %s * %d", ErrOverflow, v.Amount.Dec(), qty)
	}
	return Value{Amount: prod, Currency: v.Currency, Decimals: v.Decimals}, nil
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (v Value) IsZero() bool { return v.Amount.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (v Value) IsPositive() bool { return !v.Amount.IsZero() }

// SameUnit reports whether both values share currency and precision.
func (v Value) SameUnit(other Value) bool {
	return v.Currency == other.Currency && v.Decimals == other.Decimals
}

// Equal returns true if both Values are equal (same amount and unit).
func (v Value) Equal(other Value) bool {
	return v.SameUnit(other) && v.Amount.Eq(&other.Amount)
}

// Cmp compares two Values. Panics if units don't match.
func (v Value) Cmp(other Value) int {
	v.assertSameUnit(other)
	return v.Amount.Cmp(&other.Amount)
}

// LessThan returns true if this Value is less than other. Panics if units don't match.
func (v Value) LessThan(other Value) bool { return v.Cmp(other) < 0 }

// GreaterThan returns true if this Value is greater than other. Panics if units don't match.
func (v Value) GreaterThan(other Value) bool { return v.Cmp(other) > 0 }

// Conversions

// Big returns the amount as a new big.Int.
func (v Value) Big() *big.Int { return v.Amount.ToBig() }

// Uint256 returns a copy of the amount.
func (v Value) Uint256() *uint256.Int { return new(uint256.Int).Set(&v.Amount) }

// Decimal returns the amount in major units.
func (v Value) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(v.Amount.ToBig(), -int32(v.Decimals))
}

// Formatting methods

// FormatMajor returns the major unit string without currency symbol.
// Fiat currencies are shown with two places: "200.00" for MustUSD("200").
// Everything else keeps its significant digits: "0.1" for MustEther("0.1").
func (v Value) FormatMajor() string {
	d := v.Decimal()
	if places, ok := displayPlaces[v.Currency]; ok {
		return d.StringFixed(places)
	}
	return d.String()
}

// String returns a human-readable string with currency symbol.
// Examples: "Ξ0.1", "$50.00"
func (v Value) String() string {
	return currencySymbol(v.Currency) + v.FormatMajor()
}

type valueJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Decimals uint8  `json:"decimals"`
	Display  string `json:"display,omitempty"`
}

// MarshalJSON implements json.Marshaler. The amount is a base-10 string of
// base units so it survives JSON number precision limits.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(valueJSON{
		Amount:   v.Amount.Dec(),
		Currency: v.Currency,
		Decimals: v.Decimals,
		Display:  v.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromBaseUnits(raw.Amount, raw.Currency, raw.Decimals)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromBaseUnits parses a base-10 count of base units (as written by
// MarshalJSON and the SQL stores).
func FromBaseUnits(amount, currency string, decimals uint8) (Value, error) {
	if amount == "" {
		return Zero(currency, decimals), nil
	}
	u, err := uint256.FromDecimal(amount)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, amount, err)
	}
	return NewValue(u, currency, decimals), nil
}

// Helper functions

// assertSameUnit panics if units don't match.
func (v Value) assertSameUnit(other Value) {
	if !v.SameUnit(other) {
		panic(fmt.Sprintf("value: unit mismatch: %s/%d != %s/%d",
			v.Currency, v.Decimals, other.Currency, other.Decimals))
	}
}

var displayPlaces = map[string]int32{
	"usd": 2,
	"eur": 2,
	"gbp": 2,
}

// currencySymbol returns the symbol for a currency code.
func currencySymbol(currency string) string {
	symbols := map[string]string{
		"eth": "Ξ",
		"usd": "$",
		"eur": "€",
		"gbp": "£",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

// Sum adds values of the same unit. Returns zero native for no values.
func Sum(values ...Value) (Value, error) {
	if len(values) == 0 {
		return ZeroNative(), nil
	}

	result := values[0]
	for i := 1; i < len(values); i++ {
		var err error
		if result, err = result.Add(values[i]); err != nil {
			return Value{}, err
		}
	}
	return result, nil
}
