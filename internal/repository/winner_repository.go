package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresWinnerRepository implements WinnerRepository for PostgreSQL
type PostgresWinnerRepository struct {
	db *database.DB
}

// NewPostgresWinnerRepository creates a new winner repository
func NewPostgresWinnerRepository(db *database.DB) WinnerRepository {
	return &PostgresWinnerRepository{db: db}
}

// GetByPool retrieves every announced winner in a pool
func (r *PostgresWinnerRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.ActualWinner, error) {
	query := `
		SELECT pool_id, category_id, nominee_id, entered_by, is_auto_detected, updated_at
		FROM actual_winners
		WHERE pool_id = $1
		ORDER BY category_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}
	defer rows.Close()

	var winners []*models.ActualWinner
	for rows.Next() {
		winner := &models.ActualWinner{}
		err := rows.Scan(&winner.PoolID, &winner.CategoryID, &winner.NomineeID, &winner.EnteredBy, &winner.IsAutoDetected, &winner.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, winner)
	}

	return winners, rows.Err()
}

// HasWinner reports whether a winner is announced for a base category
func (r *PostgresWinnerRepository) HasWinner(ctx context.Context, poolID uuid.UUID, baseCategoryID string) (bool, error) {
	var exists bool
	err := r.db.GetPool().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM actual_winners
			WHERE pool_id = $1 AND regexp_replace(category_id, '-\d{4}$', '') = $2
		)
	`, poolID, baseCategoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check winner: %w", err)
	}

	return exists, nil
}

// AnyWinner reports whether any category winner exists in the pool
func (r *PostgresWinnerRepository) AnyWinner(ctx context.Context, poolID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM actual_winners WHERE pool_id = $1)`,
		poolID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check winners: %w", err)
	}

	return exists, nil
}

// Upsert records or corrects the announced winner for a category
func (r *PostgresWinnerRepository) Upsert(ctx context.Context, winner *models.ActualWinner) error {
	query := `
		INSERT INTO actual_winners (pool_id, category_id, nominee_id, entered_by, is_auto_detected, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pool_id, category_id) DO UPDATE SET
			nominee_id = EXCLUDED.nominee_id,
			entered_by = EXCLUDED.entered_by,
			is_auto_detected = EXCLUDED.is_auto_detected,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		winner.PoolID, winner.CategoryID, winner.NomineeID,
		winner.EnteredBy, winner.IsAutoDetected, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert winner: %w", err)
	}

	return nil
}
