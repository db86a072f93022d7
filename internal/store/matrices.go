package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/rate-matrix/internal/matrix"
)

var (
	// ErrNoActiveMatrix is returned when no matrix has been uploaded yet.
	ErrNoActiveMatrix = errors.New("no active rate matrix")
	// ErrConcurrentReplace is returned when two uploads race for the single
	// active slot; the loser should simply retry.
	ErrConcurrentReplace = errors.New("another matrix upload is in flight")
)

// StoredMatrix pairs a persisted matrix with its upload metadata.
type StoredMatrix struct {
	ID        uuid.UUID     `json:"id"`
	Matrix    matrix.Matrix `json:"matrix"`
	RowCount  int           `json:"rowCount"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Summary describes one upload without its tiers.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Currency  string    `json:"currency"`
	RowCount  int       `json:"rowCount"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Matrices persists rate matrices in Postgres. Uploads are full replacements:
// the previous matrix is deactivated and the new one inserted in a single
// transaction, matching the all-or-nothing ingestion contract.
type Matrices struct {
	Pool *pgxpool.Pool
}

// Replace deactivates the current matrix and stores m as the new active one.
func (s *Matrices) Replace(ctx context.Context, m matrix.Matrix) (StoredMatrix, error) {
	if s.Pool == nil {
		return StoredMatrix{}, errors.New("matrix store not configured")
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return StoredMatrix{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE rate_matrices SET active = false WHERE active`); err != nil {
		return StoredMatrix{}, fmt.Errorf("deactivate previous matrix: %w", err)
	}

	var (
		id        uuid.UUID
		createdAt time.Time
	)
	err = tx.QueryRow(ctx,
		`INSERT INTO rate_matrices (currency, row_count, active) VALUES ($1, $2, true) RETURNING id, created_at`,
		m.Currency, len(m.Tiers),
	).Scan(&id, &createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return StoredMatrix{}, ErrConcurrentReplace
		}
		return StoredMatrix{}, fmt.Errorf("insert matrix: %w", err)
	}

	batch := &pgx.Batch{}
	for i, tier := range m.Tiers {
		batch.Queue(
			`INSERT INTO rate_tiers (matrix_id, position, threshold, kind, value, min_charge, max_charge)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, i, tier.Threshold.String(), string(tier.Kind), tier.Value.String(),
			optionalDecimal(tier.Min), optionalDecimal(tier.Max),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return StoredMatrix{}, fmt.Errorf("insert tiers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return StoredMatrix{}, fmt.Errorf("commit: %w", err)
	}
	return StoredMatrix{ID: id, Matrix: m, RowCount: len(m.Tiers), Active: true, CreatedAt: createdAt}, nil
}

// Active loads the currently active matrix with its tiers in stored order.
func (s *Matrices) Active(ctx context.Context) (StoredMatrix, error) {
	if s.Pool == nil {
		return StoredMatrix{}, errors.New("matrix store not configured")
	}
	var stored StoredMatrix
	err := s.Pool.QueryRow(ctx,
		`SELECT id, currency, row_count, created_at FROM rate_matrices WHERE active`,
	).Scan(&stored.ID, &stored.Matrix.Currency, &stored.RowCount, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredMatrix{}, ErrNoActiveMatrix
		}
		return StoredMatrix{}, fmt.Errorf("load active matrix: %w", err)
	}
	stored.Active = true

	rows, err := s.Pool.Query(ctx,
		`SELECT threshold, kind, value, min_charge, max_charge FROM rate_tiers WHERE matrix_id = $1 ORDER BY position`,
		stored.ID,
	)
	if err != nil {
		return StoredMatrix{}, fmt.Errorf("load tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			threshold, kind, value string
			minText, maxText       pgtype.Text
		)
		if err := rows.Scan(&threshold, &kind, &value, &minText, &maxText); err != nil {
			return StoredMatrix{}, fmt.Errorf("scan tier: %w", err)
		}
		tier, err := buildTier(threshold, kind, value, minText, maxText)
		if err != nil {
			return StoredMatrix{}, err
		}
		stored.Matrix.Tiers = append(stored.Matrix.Tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return StoredMatrix{}, fmt.Errorf("iterate tiers: %w", err)
	}
	return stored, nil
}

// History lists recent uploads, newest first.
func (s *Matrices) History(ctx context.Context, limit int) ([]Summary, error) {
	if s.Pool == nil {
		return nil, errors.New("matrix store not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, currency, row_count, active, created_at FROM rate_matrices ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list matrices: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0, limit)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Currency, &s.RowCount, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan matrix: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func buildTier(threshold, kind, value string, minText, maxText pgtype.Text) (matrix.Tier, error) {
	var tier matrix.Tier
	var err error
	if tier.Threshold, err = decimal.NewFromString(threshold); err != nil {
		return matrix.Tier{}, fmt.Errorf("stored threshold %q: %w", threshold, err)
	}
	tier.Kind = matrix.Kind(kind)
	if tier.Value, err = decimal.NewFromString(value); err != nil {
		return matrix.Tier{}, fmt.Errorf("stored value %q: %w", value, err)
	}
	if tier.Min, err = nullableDecimal(minText); err != nil {
		return matrix.Tier{}, fmt.Errorf("stored min %q: %w", minText.String, err)
	}
	if tier.Max, err = nullableDecimal(maxText); err != nil {
		return matrix.Tier{}, fmt.Errorf("stored max %q: %w", maxText.String, err)
	}
	return tier, nil
}

func optionalDecimal(d *decimal.Decimal) pgtype.Text {
	if d == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.String(), Valid: true}
}

func nullableDecimal(t pgtype.Text) (*decimal.Decimal, error) {
	if !t.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(t.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
