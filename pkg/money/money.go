// Package money provides currency-safe price arithmetic for market bulletins
// using integer cents and the Fowler Money pattern. Bulletin prices are
// quoted in New Taiwan Dollars per kilogram.
package money

import (
	"errors"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes (ISO-4217)
const (
	TWD = "TWD" // New Taiwan Dollar, the bulletin currency
	USD = "USD"
)

// ErrCurrencyMismatch is returned when combining prices in different currencies
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision calculations.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromFloat creates Money from a floating-point value, rounding to the
// nearest minor unit.
func NewFromFloat(amount float64, currencyCode string) *Money {
	return NewFromDecimal(decimal.NewFromFloat(amount), currencyCode)
}

// NewFromDecimal creates Money from a decimal.Decimal value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode = TWD
		currency = money.GetCurrency(TWD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Price is shorthand for a bulletin price in TWD.
func Price(amount float64) *Money {
	return NewFromFloat(amount, TWD)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// Subtract returns m - other
func (m *Money) Subtract(other *Money) (*Money, error) {
	if !m.SameCurrency(other) {
		return nil, ErrCurrencyMismatch
	}
	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Compare returns -1, 0 or 1. Prices in different currencies compare as equal.
func (m *Money) Compare(other *Money) int {
	if !m.SameCurrency(other) {
		return 0
	}
	cmp, _ := m.m.Compare(other.m)
	return cmp
}

// SameCurrency reports whether both values share a currency
func (m *Money) SameCurrency(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	return m.m.SameCurrency(other.m)
}

// Display returns a formatted string for display (e.g., "NT$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return Price(0).Display()
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(2)
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// ToFloat64 converts to float64 (use with caution for display only)
func (m *Money) ToFloat64() float64 {
	return m.ToDecimal().InexactFloat64()
}

// ChangePercent returns the percentage change from prev to m, rounded to one
// decimal place. ok is false when prev is zero or in another currency.
func (m *Money) ChangePercent(prev *Money) (decimal.Decimal, bool) {
	if prev.IsZero() || !m.SameCurrency(prev) {
		return decimal.Zero, false
	}
	diff := m.ToDecimal().Sub(prev.ToDecimal())
	return diff.Div(prev.ToDecimal()).Mul(decimal.NewFromInt(100)).Round(1), true
}

// Mean returns the arithmetic mean of prices sharing one currency.
func Mean(prices ...*Money) (*Money, error) {
	if len(prices) == 0 {
		return nil, errors.New("no prices to average")
	}
	sum := decimal.Zero
	for _, p := range prices {
		if !prices[0].SameCurrency(p) {
			return nil, ErrCurrencyMismatch
		}
		sum = sum.Add(p.ToDecimal())
	}
	return NewFromDecimal(sum.Div(decimal.NewFromInt(int64(len(prices)))), prices[0].Currency()), nil
}
