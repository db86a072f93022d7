package rates_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rate-matrix/internal/cache"
	"github.com/noah-isme/rate-matrix/internal/matrix"
	"github.com/noah-isme/rate-matrix/internal/rates"
	"github.com/noah-isme/rate-matrix/internal/store"
)

// fakeStore records calls so tests can assert cache behaviour.
type fakeStore struct {
	active      store.StoredMatrix
	activeErr   error
	replaceErr  error
	history     []store.Summary
	historyErr  error
	replaced    []matrix.Matrix
	activeCalls int
}

func (f *fakeStore) Replace(_ context.Context, m matrix.Matrix) (store.StoredMatrix, error) {
	if f.replaceErr != nil {
		return store.StoredMatrix{}, f.replaceErr
	}
	f.replaced = append(f.replaced, m)
	stored := store.StoredMatrix{
		ID:        uuid.New(),
		Matrix:    m,
		RowCount:  len(m.Tiers),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	f.active = stored
	f.activeErr = nil
	return stored, nil
}

func (f *fakeStore) Active(context.Context) (store.StoredMatrix, error) {
	f.activeCalls++
	if f.activeErr != nil {
		return store.StoredMatrix{}, f.activeErr
	}
	return f.active, nil
}

func (f *fakeStore) History(_ context.Context, limit int) ([]store.Summary, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if limit > 0 && limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, time.Minute)
}

func newTestService(t *testing.T) (*rates.Service, *fakeStore) {
	t.Helper()
	fs := &fakeStore{activeErr: store.ErrNoActiveMatrix}
	svc := &rates.Service{Store: fs, Cache: newTestCache(t)}
	return svc, fs
}

func cacheKey() string { return cache.KeyActiveMatrix }

func validRows() [][]string {
	return [][]string{
		{"0", "fixed_amount", "5"},
		{"100", "percentage", "0.1", "10", "50"},
	}
}
