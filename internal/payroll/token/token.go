// Package token implements the fungible token the vault holds: an ERC-20
// style ledger of balances and allowances in base units. The ledger reads and
// writes through a Store, normally the repository of the caller's
// transaction, so token movements commit or roll back with the operation that
// caused them.
package token

import (
	"context"
	"fmt"
	"math"
	"math/big"

	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DefaultDecimals matches USDT.
const DefaultDecimals = 6

// MaxAmount is the largest amount or balance the ledger holds. Amounts are
// stored in signed 64-bit columns.
const MaxAmount uint64 = math.MaxInt64

// CheckAmount rejects amounts above MaxAmount.
func CheckAmount(amount uint64) error {
	if amount > MaxAmount {
		return fmt.Errorf("%w: amount %d exceeds %d", e.ErrInvalidInput, amount, MaxAmount)
	}
	return nil
}

// Store persists balances and allowances.
type Store interface {
	TokenBalance(ctx context.Context, owner common.Address) (uint64, error)
	SetTokenBalance(ctx context.Context, owner common.Address, amount uint64) error
	TokenAllowance(ctx context.Context, owner, spender common.Address) (uint64, error)
	SetTokenAllowance(ctx context.Context, owner, spender common.Address, amount uint64) error
}

type Ledger struct {
	store    Store
	decimals uint8
}

func New(store Store, decimals uint8) *Ledger {
	return &Ledger{store: store, decimals: decimals}
}

func (l *Ledger) Decimals() uint8 {
	return l.decimals
}

func (l *Ledger) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	return l.store.TokenBalance(ctx, owner)
}

func (l *Ledger) Allowance(ctx context.Context, owner, spender common.Address) (uint64, error) {
	return l.store.TokenAllowance(ctx, owner, spender)
}

// Approve sets, not adds to, spender's allowance over owner's tokens.
func (l *Ledger) Approve(ctx context.Context, owner, spender common.Address, amount uint64) error {
	if spender == (common.Address{}) {
		return fmt.Errorf("%w: approve to the zero address", e.ErrInvalidInput)
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	return l.store.SetTokenAllowance(ctx, owner, spender, amount)
}

func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount uint64) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", e.ErrInvalidInput)
	}
	return l.move(ctx, from, to, amount)
}

// TransferFrom moves amount from owner to to, spending spender's allowance.
func (l *Ledger) TransferFrom(ctx context.Context, spender, owner, to common.Address, amount uint64) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", e.ErrInvalidInput)
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	allowance, err := l.store.TokenAllowance(ctx, owner, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return fmt.Errorf("%w: allowance %d below %d", e.ErrInsufficientFunds, allowance, amount)
	}
	if err := l.move(ctx, owner, to, amount); err != nil {
		return err
	}
	return l.store.SetTokenAllowance(ctx, owner, spender, allowance-amount)
}

// Mint credits new tokens to to.
func (l *Ledger) Mint(ctx context.Context, to common.Address, amount uint64) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: mint to the zero address", e.ErrInvalidInput)
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	balance, err := l.store.TokenBalance(ctx, to)
	if err != nil {
		return err
	}
	if balance > MaxAmount-amount {
		return fmt.Errorf("%w: balance overflow", e.ErrInvalidInput)
	}
	return l.store.SetTokenBalance(ctx, to, balance+amount)
}

func (l *Ledger) move(ctx context.Context, from, to common.Address, amount uint64) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	fromBalance, err := l.store.TokenBalance(ctx, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: balance %d below %d", e.ErrInsufficientFunds, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance, err := l.store.TokenBalance(ctx, to)
	if err != nil {
		return err
	}
	if toBalance > MaxAmount-amount {
		return fmt.Errorf("%w: balance overflow", e.ErrInvalidInput)
	}
	if err := l.store.SetTokenBalance(ctx, from, fromBalance-amount); err != nil {
		return err
	}
	return l.store.SetTokenBalance(ctx, to, toBalance+amount)
}

// FormatUnits renders base units as a decimal string, 1500000 with 6 decimals
// being "1.5".
func FormatUnits(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).Shift(-int32(decimals)).String()
}

// ParseUnits is the inverse of FormatUnits. Fractions finer than decimals are
// rejected.
func ParseUnits(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", e.ErrInvalidInput, s, err)
	}
	base := d.Shift(int32(decimals))
	if !base.IsInteger() || base.IsNegative() {
		return 0, fmt.Errorf("%w: amount %q not representable", e.ErrInvalidInput, s)
	}
	if base.GreaterThan(decimal.NewFromBigInt(new(big.Int).SetUint64(MaxAmount), 0)) {
		return 0, fmt.Errorf("%w: amount %q overflows", e.ErrInvalidInput, s)
	}
	return base.BigInt().Uint64(), nil
}
