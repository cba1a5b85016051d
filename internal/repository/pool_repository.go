package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresPoolRepository implements PoolRepository for PostgreSQL
type PostgresPoolRepository struct {
	db *database.DB
}

// NewPostgresPoolRepository creates a new pool repository
func NewPostgresPoolRepository(db *database.DB) PoolRepository {
	return &PostgresPoolRepository{db: db}
}

// GetByID retrieves a pool by id
func (r *PostgresPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	query := `
		SELECT id, name, year, owner_id, created_at, updated_at
		FROM pools
		WHERE id = $1
	`

	pool := &models.Pool{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&pool.ID, &pool.Name, &pool.Year, &pool.OwnerID, &pool.CreatedAt, &pool.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	return pool, nil
}

// GetSettings retrieves a pool's scoring settings. A pool without a settings
// row gets defaults: no overrides, multiplier disabled.
func (r *PostgresPoolRepository) GetSettings(ctx context.Context, poolID uuid.UUID) (*models.PoolSettings, error) {
	query := `
		SELECT pool_id, category_points, odds_multiplier_enabled, odds_multiplier_formula, updated_at
		FROM pool_settings
		WHERE pool_id = $1
	`

	settings := &models.PoolSettings{}
	var pointsJSON []byte
	err := r.db.GetPool().QueryRow(ctx, query, poolID).Scan(
		&settings.PoolID, &pointsJSON, &settings.OddsMultiplierEnabled,
		&settings.OddsMultiplierFormula, &settings.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return &models.PoolSettings{PoolID: poolID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool settings: %w", err)
	}

	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &settings.CategoryPoints); err != nil {
			return nil, fmt.Errorf("failed to parse category points: %w", err)
		}
	}

	return settings, nil
}

// UpdateSettingsIfUnfrozen writes pool settings inside a transaction that
// re-checks the freeze: once any winner is announced in the pool, settings
// are immutable.
func (r *PostgresPoolRepository) UpdateSettingsIfUnfrozen(ctx context.Context, settings *models.PoolSettings) error {
	pointsJSON, err := json.Marshal(settings.CategoryPoints)
	if err != nil {
		return fmt.Errorf("failed to encode category points: %w", err)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var frozen bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM actual_winners WHERE pool_id = $1)`,
			settings.PoolID,
		).Scan(&frozen)
		if err != nil {
			return fmt.Errorf("failed to check settings freeze: %w", err)
		}
		if frozen {
			return models.ErrSettingsFrozen
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO pool_settings (pool_id, category_points, odds_multiplier_enabled, odds_multiplier_formula, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (pool_id) DO UPDATE SET
				category_points = EXCLUDED.category_points,
				odds_multiplier_enabled = EXCLUDED.odds_multiplier_enabled,
				odds_multiplier_formula = EXCLUDED.odds_multiplier_formula,
				updated_at = EXCLUDED.updated_at
		`, settings.PoolID, pointsJSON, settings.OddsMultiplierEnabled,
			settings.OddsMultiplierFormula, time.Now())
		if err != nil {
			return fmt.Errorf("failed to update pool settings: %w", err)
		}

		return nil
	})
}
