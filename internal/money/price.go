package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when arithmetic mixes two currencies.
var ErrCurrencyMismatch = errors.New("price currencies do not match")

// Price is an immutable monetary amount denominated in a single currency.
// All arithmetic is exact decimal arithmetic; binary floats are never involved.
type Price struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New constructs a price from an exact decimal amount and an ISO 4217 code.
func New(amount decimal.Decimal, currency string) Price {
	return Price{Amount: amount, Currency: normalizeCurrency(currency)}
}

// Parse builds a price from a decimal string such as "19.90".
func Parse(amount, currency string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Price{}, err
	}
	return New(d, currency), nil
}

// IsNegative reports whether the amount is below zero.
func (p Price) IsNegative() bool {
	return p.Amount.IsNegative()
}

// Cmp compares two prices of the same currency (-1, 0 or +1).
func (p Price) Cmp(other Price) (int, error) {
	if p.Currency != other.Currency {
		return 0, ErrCurrencyMismatch
	}
	return p.Amount.Cmp(other.Amount), nil
}

// Add returns the sum of two prices of the same currency.
func (p Price) Add(other Price) (Price, error) {
	if p.Currency != other.Currency {
		return Price{}, ErrCurrencyMismatch
	}
	return Price{Amount: p.Amount.Add(other.Amount), Currency: p.Currency}, nil
}

// Sub returns the difference of two prices of the same currency.
func (p Price) Sub(other Price) (Price, error) {
	if p.Currency != other.Currency {
		return Price{}, ErrCurrencyMismatch
	}
	return Price{Amount: p.Amount.Sub(other.Amount), Currency: p.Currency}, nil
}

// Mul scales the amount by an exact decimal factor, keeping the currency.
func (p Price) Mul(factor decimal.Decimal) Price {
	return Price{Amount: p.Amount.Mul(factor), Currency: p.Currency}
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
