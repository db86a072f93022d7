package matrix_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rate-matrix/internal/matrix"
	"github.com/noah-isme/rate-matrix/internal/money"
)

func testMatrix(t *testing.T) matrix.Matrix {
	t.Helper()
	m, err := matrix.Parse([][]string{
		{"0", "fixed_amount", "5"},
		{"100", "percentage", "0.1", "10", "50"},
	}, "USD")
	require.NoError(t, err)
	return m
}

func quote(t *testing.T, m matrix.Matrix, amount string) money.Price {
	t.Helper()
	price, err := money.Parse(amount, "USD")
	require.NoError(t, err)
	result, err := matrix.Resolve(m, price)
	require.NoError(t, err)
	return result
}

func TestResolveFixedTier(t *testing.T) {
	m := testMatrix(t)
	result := quote(t, m, "50")
	require.True(t, result.Amount.Equal(decimal.NewFromInt(5)), "got %s", result.Amount)
	require.Equal(t, "USD", result.Currency)
}

func TestResolvePercentageTier(t *testing.T) {
	m := testMatrix(t)

	// 500 * 0.1 = 50: exactly the max, no clamp applies.
	require.True(t, quote(t, m, "500").Amount.Equal(decimal.NewFromInt(50)))

	// 1000 * 0.1 = 100, clamped down to the max of 50.
	require.True(t, quote(t, m, "1000").Amount.Equal(decimal.NewFromInt(50)))

	// 110 * 0.1 = 11: inside the clamp window.
	require.True(t, quote(t, m, "110").Amount.Equal(decimal.NewFromInt(11)))
}

func TestResolveMinClampWinsOverMax(t *testing.T) {
	m, err := matrix.Parse([][]string{
		{"0", "percentage", "0.1", "10", "50"},
	}, "USD")
	require.NoError(t, err)

	// 0 * 0.1 = 0, lifted to the min of 10.
	require.True(t, quote(t, m, "0").Amount.Equal(decimal.NewFromInt(10)))
	// 300 * 0.1 = 30: no clamp.
	require.True(t, quote(t, m, "300").Amount.Equal(decimal.NewFromInt(30)))
	// 1000 * 0.1 = 100, ceiling of 50.
	require.True(t, quote(t, m, "1000").Amount.Equal(decimal.NewFromInt(50)))
}

func TestResolveBoundariesPartitionTheDomain(t *testing.T) {
	m, err := matrix.Parse([][]string{
		{"0", "fixed_amount", "1"},
		{"100", "fixed_amount", "2"},
		{"200", "fixed_amount", "3"},
	}, "USD")
	require.NoError(t, err)

	cases := map[string]int64{
		"0":      1,
		"99.99":  1,
		"100":    2,
		"199.99": 2,
		"200":    3,
		"100000": 3,
	}
	for amount, want := range cases {
		result := quote(t, m, amount)
		require.True(t, result.Amount.Equal(decimal.NewFromInt(want)), "amount %s: got %s", amount, result.Amount)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	m := testMatrix(t)
	price, err := money.Parse("123.45", "USD")
	require.NoError(t, err)
	first, err := matrix.Resolve(m, price)
	require.NoError(t, err)
	second, err := matrix.Resolve(m, price)
	require.NoError(t, err)
	require.True(t, first.Amount.Equal(second.Amount))
}

func TestResolveCurrencyMismatch(t *testing.T) {
	m := testMatrix(t)
	price, err := money.Parse("100", "IDR")
	require.NoError(t, err)
	_, err = matrix.Resolve(m, price)
	require.ErrorIs(t, err, matrix.ErrCurrencyMismatch)
}

func TestResolveNegativePrice(t *testing.T) {
	m := testMatrix(t)
	price, err := money.Parse("-1", "USD")
	require.NoError(t, err)
	_, err = matrix.Resolve(m, price)
	require.ErrorIs(t, err, matrix.ErrNegativePrice)
}

func TestResolveEmptyMatrix(t *testing.T) {
	price, err := money.Parse("10", "USD")
	require.NoError(t, err)
	_, err = matrix.Resolve(matrix.Matrix{Currency: "USD"}, price)
	require.ErrorIs(t, err, matrix.ErrEmptyMatrix)
}

func TestResolveUnsupportedTierKind(t *testing.T) {
	m := matrix.Matrix{
		Currency: "USD",
		Tiers:    []matrix.Tier{{Threshold: decimal.Zero, Kind: "teleport", Value: decimal.NewFromInt(1)}},
	}
	price, err := money.Parse("10", "USD")
	require.NoError(t, err)
	_, err = matrix.Resolve(m, price)
	require.ErrorIs(t, err, matrix.ErrUnsupportedTierKind)
}

func TestResolveExactDecimalMultiplication(t *testing.T) {
	m, err := matrix.Parse([][]string{
		{"0", "percentage", "0.1"},
	}, "USD")
	require.NoError(t, err)

	// 0.3 * 0.1 must be exactly 0.03, not a binary-float approximation.
	result := quote(t, m, "0.3")
	require.Equal(t, "0.03", result.Amount.String())
}
