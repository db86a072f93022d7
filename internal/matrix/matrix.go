package matrix

import (
	"github.com/shopspring/decimal"
)

// Kind selects how a tier charges: a flat amount or a fraction of the subtotal.
type Kind string

const (
	// KindFixedAmount charges the tier value verbatim.
	KindFixedAmount Kind = "fixed_amount"
	// KindPercentage charges subtotal * value, optionally clamped to [Min, Max].
	KindPercentage Kind = "percentage"
)

// Tier is one row of the price matrix: a subtotal threshold plus a pricing rule.
type Tier struct {
	Threshold decimal.Decimal  `json:"threshold"`
	Kind      Kind             `json:"kind"`
	Value     decimal.Decimal  `json:"value"`
	Min       *decimal.Decimal `json:"min,omitempty"`
	Max       *decimal.Decimal `json:"max,omitempty"`
}

// Matrix is the full ordered pricing table. Tier order is threshold order:
// the first threshold is zero and thresholds strictly increase, so the tiers
// partition [0, inf) into right-open intervals.
type Matrix struct {
	Currency string `json:"currency"`
	Tiers    []Tier `json:"tiers"`
}

// Rows serialises the matrix back into the tabular form Parse accepts.
// Parsing the result reproduces an equivalent matrix.
func (m Matrix) Rows() [][]string {
	rows := make([][]string, 0, len(m.Tiers))
	for _, t := range m.Tiers {
		row := []string{t.Threshold.String(), string(t.Kind), t.Value.String()}
		if t.Kind == KindPercentage && (t.Min != nil || t.Max != nil) {
			if t.Min != nil {
				row = append(row, t.Min.String())
			} else {
				row = append(row, "")
			}
			if t.Max != nil {
				row = append(row, t.Max.String())
			}
		}
		rows = append(rows, row)
	}
	return rows
}
