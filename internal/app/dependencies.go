package app

import (
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "ratematrix:limiter",
	})
}

// NewQuoteLimiter builds the per-client limiter applied to the public quote
// endpoint.
func NewQuoteLimiter(store limiter.Store, rate limiter.Rate) *limiter.Limiter {
	return limiter.New(store, rate)
}

// RunMigrations applies pending schema migrations at startup. An up-to-date
// schema is not an error.
func RunMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// NewValidator returns the request payload validator shared by handlers.
func NewValidator() *validator.Validate {
	return validator.New()
}
