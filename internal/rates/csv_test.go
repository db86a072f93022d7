package rates_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rate-matrix/internal/rates"
)

func TestDecodeRowsKeepsRaggedRows(t *testing.T) {
	input := "0,fixed_amount,5\n100,percentage,0.1,10,50\n200,percentage,0.2\n"
	rows, err := rates.DecodeRows(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"0", "fixed_amount", "5"}, rows[0])
	require.Equal(t, []string{"100", "percentage", "0.1", "10", "50"}, rows[1])
	require.Equal(t, []string{"200", "percentage", "0.2"}, rows[2])
}

func TestDecodeRowsTrimsLeadingSpace(t *testing.T) {
	rows, err := rates.DecodeRows(strings.NewReader("0, fixed_amount, 5\n"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "fixed_amount", "5"}, rows[0])
}

func TestDecodeRowsQuotedCells(t *testing.T) {
	rows, err := rates.DecodeRows(strings.NewReader("\"0\",\"fixed_amount\",\"5\"\n"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "fixed_amount", "5"}, rows[0])
}

func TestDecodeRowsEnforcesLimit(t *testing.T) {
	input := "0,fixed_amount,5\n100,fixed_amount,7\n200,fixed_amount,9\n"
	_, err := rates.DecodeRows(strings.NewReader(input), 2)
	require.ErrorIs(t, err, rates.ErrTooManyRows)
}

func TestDecodeRowsEmptyInput(t *testing.T) {
	rows, err := rates.DecodeRows(strings.NewReader(""), 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeRowsRejectsBareQuote(t *testing.T) {
	_, err := rates.DecodeRows(strings.NewReader("0,fixed_amount,\"5\n"), 10)
	require.Error(t, err)
}
