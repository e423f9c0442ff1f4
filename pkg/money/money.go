// Package money provides a Money value object over integer minor currency
// units. Balances and movements never touch floating point.
package money

import (
	"fmt"
	"math"

	"github.com/pocketledger/pocketledger/pkg/currency"
)

// Amount represents a monetary amount as an integer in the smallest currency
// unit (e.g., cents for USD).
type Amount int64

// Money represents a monetary amount with a currency.
type Money struct {
	amount   Amount
	currency currency.Code
}

// New creates a Money from minor currency units.
func New(amount int64, code string) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(code) {
		return Money{}, currency.ErrInvalidCurrencyCode
	}
	return Money{amount: Amount(amount), currency: currency.Code(code)}, nil
}

// NewFromData creates a Money from raw data without validation. Intended for
// repository hydration only.
func NewFromData(amount int64, code string) Money {
	return Money{amount: Amount(amount), currency: currency.Code(code)}
}

// Amount returns the amount in minor units.
func (m Money) Amount() Amount { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// AmountFloat returns the amount in major units for display purposes only.
func (m Money) AmountFloat() float64 {
	meta, err := currency.Get(string(m.currency))
	if err != nil {
		return 0
	}
	return float64(m.amount) / math.Pow10(meta.Decimals)
}

// Add adds another Money of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	if wouldOverflow(int64(m.amount), int64(other.amount)) {
		return Money{}, ErrOverflow
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract subtracts another Money of the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	return m.Add(other.Negate())
}

// Negate returns the Money with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Equals reports equality of amount and currency.
func (m Money) Equals(other Money) bool {
	return m.IsSameCurrency(other) && m.amount == other.amount
}

// IsSameCurrency reports whether both amounts share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// String returns a display representation, e.g. "12.34 USD".
func (m Money) String() string {
	meta, err := currency.Get(string(m.currency))
	if err != nil {
		return fmt.Sprintf("%d %s", m.amount, m.currency)
	}
	return fmt.Sprintf("%.*f %s", meta.Decimals, m.AmountFloat(), m.currency)
}

func wouldOverflow(a, b int64) bool {
	if b > 0 {
		return a > math.MaxInt64-b
	}
	return a < math.MinInt64-b
}
