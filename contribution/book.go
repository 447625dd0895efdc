// Package contribution holds the per-contributor accounting of the custody
// ledger: a map from funder address to cumulative stake, and the ordered
// registry of funding events.
package contribution

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/types"
)

var (
	// ErrIndexOutOfRange is returned by FunderAt for any position outside the registry.
	ErrIndexOutOfRange = errors.New("contribution: funder index out of range")

	// ErrNotEmpty is returned when restoring a snapshot into a book that has
	// recorded contributions since it was cleared.
	ErrNotEmpty = errors.New("contribution: book is not empty")
)

// Contribution is one funder's cumulative stake.
type Contribution struct {
	Funder common.Address `json:"funder"`
	Amount types.Value    `json:"amount"`
}

// Snapshot is the full content of a Book at the moment it was cleared.
type Snapshot struct {
	// Contributions lists every distinct funder with a non-zero stake, in
	// order of first contribution.
	Contributions []Contribution `json:"contributions"`

	// Funders is the registry as it was, duplicates included.
	Funders []common.Address `json:"funders"`
}

// Total sums the snapshot's contributions.
func (s Snapshot) Total() (types.Value, error) {
	total := types.ZeroNative()
	for _, c := range s.Contributions {
		var err error
		if total, err = total.Add(c.Amount); err != nil {
			return types.Value{}, err
		}
	}
	return total, nil
}

// Book is the contributor map plus the funders registry. The two are only
// ever changed together.
//
// A Book is not safe for concurrent use; the owning ledger serializes access.
type Book struct {
	amounts map[common.Address]types.Value
	order   []common.Address // distinct funders, first-contribution order
	funders []common.Address // one entry per Record call
}

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{
		amounts: make(map[common.Address]types.Value),
	}
}

// CanRecord reports whether Record(funder, amount) would succeed, without
// changing anything.
func (b *Book) CanRecord(funder common.Address, amount types.Value) error {
	_, err := b.AmountOf(funder).Add(amount)
	return err
}

// Record adds amount to funder's stake and appends funder to the registry.
// On overflow nothing is changed.
func (b *Book) Record(funder common.Address, amount types.Value) error {
	current, seen := b.amounts[funder]
	if !seen {
		current = types.ZeroNative()
	}

	next, err := current.Add(amount)
	if err != nil {
		return fmt.Errorf("contribution: record %s: %w", funder.Hex(), err)
	}

	if !seen {
		b.order = append(b.order, funder)
	}
	b.amounts[funder] = next
	b.funders = append(b.funders, funder)
	return nil
}

// AmountOf returns funder's cumulative stake, zero if never recorded.
func (b *Book) AmountOf(funder common.Address) types.Value {
	if v, ok := b.amounts[funder]; ok {
		return v
	}
	return types.ZeroNative()
}

// FunderAt returns the registry entry at index.
func (b *Book) FunderAt(index int) (common.Address, error) {
	if index < 0 || index >= len(b.funders) {
		return common.Address{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, len(b.funders))
	}
	return b.funders[index], nil
}

// Len returns the number of registry entries.
func (b *Book) Len() int { return len(b.funders) }

// Funders returns a copy of the registry.
func (b *Book) Funders() []common.Address {
	out := make([]common.Address, len(b.funders))
	copy(out, b.funders)
	return out
}

// Contributions lists every distinct funder with a non-zero stake.
func (b *Book) Contributions() []Contribution {
	out := make([]Contribution, 0, len(b.order))
	for _, f := range b.order {
		if amt := b.amounts[f]; amt.IsPositive() {
			out = append(out, Contribution{Funder: f, Amount: amt})
		}
	}
	return out
}

// SnapshotAndClear returns the current content and empties the map and the
// registry.
func (b *Book) SnapshotAndClear() Snapshot {
	snap := Snapshot{
		Contributions: b.Contributions(),
		Funders:       b.funders,
	}

	b.amounts = make(map[common.Address]types.Value)
	b.order = nil
	b.funders = nil
	return snap
}

// Restore puts a snapshot back into an empty book, undoing SnapshotAndClear.
func (b *Book) Restore(snap Snapshot) error {
	if len(b.funders) != 0 || len(b.amounts) != 0 {
		return ErrNotEmpty
	}

	amounts := make(map[common.Address]types.Value, len(snap.Contributions))
	order := make([]common.Address, 0, len(snap.Contributions))
	for _, c := range snap.Contributions {
		amounts[c.Funder] = c.Amount
		order = append(order, c.Funder)
	}

	funders := make([]common.Address, len(snap.Funders))
	copy(funders, snap.Funders)

	b.amounts = amounts
	b.order = order
	b.funders = funders
	return nil
}
