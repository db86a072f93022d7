package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rate-matrix/internal/config"
)

func TestLoadRequiresDatabaseAndRedis(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.ErrorContains(t, err, "DATABASE_URL")

	_, err = config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/rates",
		"REDIS_URL":    "",
	})
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":             "postgres://localhost:5432/rates",
		"REDIS_URL":                "redis://localhost:6379",
		"PORT":                     "",
		"RATES_CURRENCY_CODE":      "",
		"RATES_MATRIX_CACHE_TTL":   "",
		"RATES_MATRIX_MAX_ROWS":    "",
		"RATES_QUOTE_RATE_PER_MIN": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 5*time.Minute, cfg.MatrixCacheTTL)
	require.Equal(t, 1000, cfg.MatrixMaxRows)
	require.EqualValues(t, 120, cfg.QuoteRatePerMin)
	require.Empty(t, cfg.CurrencyCode)
}

func TestLoadNormalisesCurrency(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost:5432/rates",
		"REDIS_URL":           "redis://localhost:6379",
		"RATES_CURRENCY_CODE": " usd ",
	})
	require.NoError(t, err)
	require.Equal(t, "USD", cfg.CurrencyCode)
}

func TestHTTPAddrPassthrough(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/rates",
		"REDIS_URL":    "redis://localhost:6379",
		"PORT":         ":9090",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}
