package rates

import (
	"context"
	"errors"

	"github.com/noah-isme/rate-matrix/internal/cache"
	"github.com/noah-isme/rate-matrix/internal/matrix"
	"github.com/noah-isme/rate-matrix/internal/money"
	"github.com/noah-isme/rate-matrix/internal/store"
)

// Store abstracts matrix persistence for the service.
type Store interface {
	Replace(ctx context.Context, m matrix.Matrix) (store.StoredMatrix, error)
	Active(ctx context.Context) (store.StoredMatrix, error)
	History(ctx context.Context, limit int) ([]store.Summary, error)
}

// Service coordinates matrix ingestion, caching and quote resolution.
type Service struct {
	Store Store
	Cache *cache.Cache
}

// Upload validates the submitted rows and installs them as the new active
// matrix. Validation is all-or-nothing: on any row error nothing is persisted
// and the full error list is returned.
func (s *Service) Upload(ctx context.Context, rows [][]string, currency string) (store.StoredMatrix, error) {
	if s.Store == nil {
		return store.StoredMatrix{}, errors.New("matrix store not configured")
	}
	m, err := matrix.Parse(rows, currency)
	if err != nil {
		return store.StoredMatrix{}, err
	}
	stored, err := s.Store.Replace(ctx, m)
	if err != nil {
		return store.StoredMatrix{}, err
	}
	// Drop the stale entry first so a failed warm leaves a miss, not old data.
	_ = s.Cache.Delete(ctx, cache.KeyActiveMatrix)
	_ = s.Cache.SetJSON(ctx, cache.KeyActiveMatrix, stored)
	return stored, nil
}

// ActiveMatrix returns the active matrix, preferring the cache.
func (s *Service) ActiveMatrix(ctx context.Context) (store.StoredMatrix, error) {
	if s.Store == nil {
		return store.StoredMatrix{}, errors.New("matrix store not configured")
	}
	var cached store.StoredMatrix
	if found, err := s.Cache.GetJSON(ctx, cache.KeyActiveMatrix, &cached); err == nil && found {
		return cached, nil
	}
	stored, err := s.Store.Active(ctx)
	if err != nil {
		return store.StoredMatrix{}, err
	}
	_ = s.Cache.SetJSON(ctx, cache.KeyActiveMatrix, stored)
	return stored, nil
}

// Quote resolves the shipping charge for the given subtotal against the
// active matrix.
func (s *Service) Quote(ctx context.Context, subtotal money.Price) (money.Price, error) {
	stored, err := s.ActiveMatrix(ctx)
	if err != nil {
		return money.Price{}, err
	}
	return matrix.Resolve(stored.Matrix, subtotal)
}

// History lists recent uploads, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.Summary, error) {
	if s.Store == nil {
		return nil, errors.New("matrix store not configured")
	}
	return s.Store.History(ctx, limit)
}
