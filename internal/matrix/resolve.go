package matrix

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/rate-matrix/internal/money"
)

// Resolve computes the shipping charge for the given subtotal price.
//
// Tiers are scanned in stored order; tier i matches when the amount is at
// least its threshold and below the next tier's threshold (the last tier is
// open-ended). With the parse invariants in place exactly one tier matches any
// non-negative amount. The returned price carries the subtotal's currency.
func Resolve(m Matrix, price money.Price) (money.Price, error) {
	if m.Currency != price.Currency {
		return money.Price{}, ErrCurrencyMismatch
	}
	if price.IsNegative() {
		return money.Price{}, ErrNegativePrice
	}
	if len(m.Tiers) == 0 {
		return money.Price{}, ErrEmptyMatrix
	}

	for i, tier := range m.Tiers {
		if price.Amount.Cmp(tier.Threshold) < 0 {
			continue
		}
		if i+1 < len(m.Tiers) && price.Amount.Cmp(m.Tiers[i+1].Threshold) >= 0 {
			continue
		}
		amount, err := charge(tier, price.Amount)
		if err != nil {
			return money.Price{}, err
		}
		return money.New(amount, price.Currency), nil
	}
	// Unreachable when the first threshold is zero.
	return money.Price{}, ErrNegativePrice
}

func charge(tier Tier, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch tier.Kind {
	case KindFixedAmount:
		return tier.Value, nil
	case KindPercentage:
		amount := subtotal.Mul(tier.Value)
		// Min wins over max: the clamps are mutually exclusive.
		if tier.Min != nil && amount.Cmp(*tier.Min) < 0 {
			return *tier.Min, nil
		}
		if tier.Max != nil && amount.Cmp(*tier.Max) > 0 {
			return *tier.Max, nil
		}
		return amount, nil
	default:
		return decimal.Decimal{}, ErrUnsupportedTierKind
	}
}
