// Package wallet is an in-process Transferer that keeps recipient balances
// in memory and charges gas the way a chain would.
package wallet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xraph/custody/transfer"
	"github.com/xraph/custody/types"
)

// ErrInsufficientFunds is returned when the recipient cannot cover the fee.
var ErrInsufficientFunds = errors.New("wallet: insufficient funds for gas")

// DefaultGasUsed is the gas charged per transfer unless configured.
const DefaultGasUsed = 21_000

// Hook runs before a transfer is applied. A non-nil error fails the transfer.
type Hook func(ctx context.Context, to common.Address, amount types.Value) error

// Wallet is a simulated account book.
type Wallet struct {
	mu       sync.Mutex
	balances map[common.Address]types.Value
	gasUsed  uint64
	gasPrice types.Value
	nonce    uint64
	fail     error
	failOnce bool
	hook     Hook
	history  []transfer.Receipt
}

var _ transfer.Transferer = (*Wallet)(nil)

// Option configures a Wallet.
type Option func(*Wallet)

// WithGas sets the gas used per transfer and its price per unit.
func WithGas(used uint64, price types.Value) Option {
	return func(w *Wallet) {
		w.gasUsed = used
		w.gasPrice = price
	}
}

// WithHook installs a hook that runs before each transfer, outside the
// wallet's lock. Tests use it to re-enter the ledger.
func WithHook(h Hook) Option {
	return func(w *Wallet) { w.hook = h }
}

// New creates an empty wallet that charges no gas.
func New(opts ...Option) *Wallet {
	w := &Wallet{
		balances: make(map[common.Address]types.Value),
		gasPrice: types.ZeroNative(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Credit adds amount to addr, e.g. to pre-fund an owner for gas.
func (w *Wallet) Credit(addr common.Address, amount types.Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := w.balanceOf(addr).Add(amount)
	if err != nil {
		return err
	}
	w.balances[addr] = next
	return nil
}

// BalanceOf returns addr's balance.
func (w *Wallet) BalanceOf(addr common.Address) types.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceOf(addr)
}

// FailWith makes every transfer fail with err until cleared with nil.
func (w *Wallet) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fail, w.failOnce = err, false
}

// FailNext makes only the next transfer fail with err.
func (w *Wallet) FailNext(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fail, w.failOnce = err, true
}

// Transfers returns the receipts of every applied transfer.
func (w *Wallet) Transfers() []transfer.Receipt {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]transfer.Receipt, len(w.history))
	copy(out, w.history)
	return out
}

// Transfer implements transfer.Transferer. The recipient receives amount and
// pays the gas fee out of the new balance.
func (w *Wallet) Transfer(ctx context.Context, to common.Address, amount types.Value) (transfer.Receipt, error) {
	if w.hook != nil {
		if err := w.hook(ctx, to, amount); err != nil {
			return transfer.Receipt{}, err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fail != nil {
		err := w.fail
		if w.failOnce {
			w.fail = nil
		}
		return transfer.Receipt{}, err
	}

	fee, err := w.gasPrice.MulUint64(w.gasUsed)
	if err != nil {
		return transfer.Receipt{}, fmt.Errorf("wallet: fee: %w", err)
	}

	credited, err := w.balanceOf(to).Add(amount)
	if err != nil {
		return transfer.Receipt{}, fmt.Errorf("wallet: credit %s: %w", to.Hex(), err)
	}
	final, err := credited.Sub(fee)
	if err != nil {
		return transfer.Receipt{}, fmt.Errorf("%w: %s needs %s", ErrInsufficientFunds, to.Hex(), fee)
	}

	w.nonce++
	receipt := transfer.Receipt{
		TxRef:             w.txRef(to, amount),
		To:                to,
		Amount:            amount,
		GasUsed:           w.gasUsed,
		EffectiveGasPrice: w.gasPrice,
		Fee:               fee,
	}
	w.balances[to] = final
	w.history = append(w.history, receipt)
	return receipt, nil
}

func (w *Wallet) balanceOf(addr common.Address) types.Value {
	if v, ok := w.balances[addr]; ok {
		return v
	}
	return types.ZeroNative()
}

func (w *Wallet) txRef(to common.Address, amount types.Value) string {
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], w.nonce)
	amt := amount.Amount.Bytes32()
	return crypto.Keccak256Hash(to.Bytes(), amt[:], nonce[:]).Hex()
}
