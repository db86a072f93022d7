package matrix

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Column positions in a submitted row.
const (
	colThreshold = 0
	colKind      = 1
	colValue     = 2
	colMin       = 3
	colMax       = 4
)

// Parse validates the submitted rows and assembles an ordered matrix.
//
// Rows are taken in the order they arrive; that order is the tier order and is
// never re-sorted. Validation is all-or-nothing: every problem across the whole
// submission is collected into a RowErrors list, and a single bad cell discards
// the entire table. The cross-row threshold check runs even for rows that
// already failed elsewhere, comparing whatever threshold value each row parsed
// to, so the caller sees every violation at once.
//
// expectedCurrency is mandatory and becomes the matrix currency.
func Parse(rows [][]string, expectedCurrency string) (Matrix, error) {
	currency := strings.ToUpper(strings.TrimSpace(expectedCurrency))
	if currency == "" {
		return Matrix{}, ErrCurrencyRequired
	}
	if len(rows) == 0 {
		return Matrix{}, RowErrors{{Row: 0, Col: colThreshold, Code: CodeTooFewColumns}}
	}

	var errs RowErrors
	tiers := make([]Tier, 0, len(rows))
	thresholds := make([]*decimal.Decimal, len(rows))

	for i, raw := range rows {
		cells := trimTrailingEmpty(raw)
		if len(cells) < 3 {
			errs = append(errs, RowError{Row: i, Col: colThreshold, Code: CodeTooFewColumns})
			continue
		}

		var tier Tier
		rowOK := true

		threshold, err := parseCell(cells[colThreshold])
		if err != nil {
			errs = append(errs, RowError{Row: i, Col: colThreshold, Code: CodeInvalidThreshold})
			rowOK = false
		} else {
			thresholds[i] = &threshold
			tier.Threshold = threshold
			if i == 0 && !threshold.IsZero() {
				errs = append(errs, RowError{Row: i, Col: colThreshold, Code: CodeFirstThresholdNotZero})
				rowOK = false
			}
		}

		switch Kind(cells[colKind]) {
		case KindFixedAmount, KindPercentage:
			tier.Kind = Kind(cells[colKind])
		default:
			errs = append(errs, RowError{Row: i, Col: colKind, Code: CodeInvalidKind})
			rowOK = false
		}

		value, err := parseCell(cells[colValue])
		if err != nil {
			errs = append(errs, RowError{Row: i, Col: colValue, Code: CodeInvalidValue})
			rowOK = false
		} else {
			tier.Value = value
			if tier.Kind == KindPercentage && (value.IsNegative() || value.GreaterThan(decimal.NewFromInt(1))) {
				errs = append(errs, RowError{Row: i, Col: colValue, Code: CodePercentageOutOfRange})
				rowOK = false
			}
		}

		if tier.Kind == KindFixedAmount && len(cells) > 3 {
			errs = append(errs, RowError{Row: i, Col: colMin, Code: CodeUnexpectedExtraColumns})
			rowOK = false
		}

		if tier.Kind == KindPercentage {
			if len(cells) > colMin && cells[colMin] != "" {
				min, err := parseCell(cells[colMin])
				if err != nil {
					errs = append(errs, RowError{Row: i, Col: colMin, Code: CodeInvalidMin})
					rowOK = false
				} else {
					tier.Min = &min
				}
			}
			if len(cells) > colMax && cells[colMax] != "" {
				max, err := parseCell(cells[colMax])
				if err != nil {
					errs = append(errs, RowError{Row: i, Col: colMax, Code: CodeInvalidMax})
					rowOK = false
				} else {
					tier.Max = &max
				}
			}
		}

		if rowOK {
			tiers = append(tiers, tier)
		}
	}

	// Adjacency check over parsed thresholds, independent of other row errors.
	for i := 1; i < len(thresholds); i++ {
		prev, next := thresholds[i-1], thresholds[i]
		if prev == nil || next == nil {
			continue
		}
		if !next.GreaterThan(*prev) {
			errs = append(errs, RowError{Row: i, Col: colThreshold, Code: CodeThresholdsNotIncreasing})
		}
	}

	if len(errs) > 0 {
		return Matrix{}, errs
	}
	return Matrix{Currency: currency, Tiers: tiers}, nil
}

func parseCell(cell string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(cell))
}

// trimTrailingEmpty drops blank padding cells that CSV writers append when a
// row carries fewer columns than the widest row in the file.
func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
