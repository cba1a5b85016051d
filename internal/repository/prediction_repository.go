package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = "pool_id, user_id, category_id, nominee_id, odds_percentage, original_odds_percentage, created_at, updated_at"

// lockedPredicate matches predictions whose category winner is announced in
// the prediction's pool. Winner rows may carry a year-suffixed category id
// while predictions use the base id, so the comparison normalizes in SQL.
const lockedPredicate = `EXISTS (
	SELECT 1 FROM actual_winners w
	WHERE w.pool_id = p.pool_id
	  AND regexp_replace(w.category_id, '-\d{4}$', '') = p.category_id
)`

// Get retrieves a single prediction by its unique (pool, user, category) key
func (r *PostgresPredictionRepository) Get(ctx context.Context, poolID, userID uuid.UUID, categoryID string) (*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE pool_id = $1 AND user_id = $2 AND category_id = $3
	`

	prediction := &models.Prediction{}
	err := r.db.GetPool().QueryRow(ctx, query, poolID, userID, categoryID).Scan(
		&prediction.PoolID, &prediction.UserID, &prediction.CategoryID, &prediction.NomineeID,
		&prediction.OddsPercentage, &prediction.OriginalOddsPercentage,
		&prediction.CreatedAt, &prediction.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return prediction, nil
}

// GetByPoolAndUser retrieves all of a user's predictions in a pool
func (r *PostgresPredictionRepository) GetByPoolAndUser(ctx context.Context, poolID, userID uuid.UUID) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE pool_id = $1 AND user_id = $2
		ORDER BY category_id ASC
	`

	return r.queryMany(ctx, query, poolID, userID)
}

// GetByPool retrieves every prediction in a pool
func (r *PostgresPredictionRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE pool_id = $1
		ORDER BY user_id, category_id ASC
	`

	return r.queryMany(ctx, query, poolID)
}

// GetUnlockedByCategory retrieves predictions for a base category across all
// pools of the given award year whose winner is not yet announced. This is
// the working set for the ratchet sweep; locked categories never reach it.
func (r *PostgresPredictionRepository) GetUnlockedByCategory(ctx context.Context, baseCategoryID string, year int) ([]*models.Prediction, error) {
	query := `
		SELECT p.pool_id, p.user_id, p.category_id, p.nominee_id, p.odds_percentage, p.original_odds_percentage, p.created_at, p.updated_at
		FROM predictions p
		JOIN pools pl ON pl.id = p.pool_id
		WHERE p.category_id = $1 AND pl.year = $2 AND NOT ` + lockedPredicate + `
	`

	return r.queryMany(ctx, query, baseCategoryID, year)
}

// UpsertIfUnlocked writes a prediction inside a transaction that re-checks
// the winner lock at write time. The re-check guards the one real race:
// a pick landing in the same instant a winner is entered.
func (r *PostgresPredictionRepository) UpsertIfUnlocked(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var locked bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM actual_winners w
				WHERE w.pool_id = $1
				  AND regexp_replace(w.category_id, '-\d{4}$', '') = $2
			)
		`, prediction.PoolID, prediction.CategoryID).Scan(&locked)
		if err != nil {
			return fmt.Errorf("failed to check winner lock: %w", err)
		}
		if locked {
			return models.ErrBallotLocked
		}

		now := time.Now()
		_, err = tx.Exec(ctx, `
			INSERT INTO predictions (pool_id, user_id, category_id, nominee_id, odds_percentage, original_odds_percentage, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			ON CONFLICT (pool_id, user_id, category_id) DO UPDATE SET
				nominee_id = EXCLUDED.nominee_id,
				odds_percentage = EXCLUDED.odds_percentage,
				original_odds_percentage = EXCLUDED.original_odds_percentage,
				updated_at = EXCLUDED.updated_at
		`, prediction.PoolID, prediction.UserID, prediction.CategoryID, prediction.NomineeID,
			prediction.OddsPercentage, prediction.OriginalOddsPercentage, now)
		if err != nil {
			return fmt.Errorf("failed to upsert prediction: %w", err)
		}

		return nil
	})
}

// UpdateOddsIfUnlocked overwrites the stored odds for one prediction row
// unless its category winner has been announced. The original odds baseline
// is deliberately left untouched. Returns true when a row was updated.
func (r *PostgresPredictionRepository) UpdateOddsIfUnlocked(ctx context.Context, poolID, userID uuid.UUID, categoryID string, odds float64) (bool, error) {
	query := `
		UPDATE predictions p
		SET odds_percentage = $4, updated_at = $5
		WHERE p.pool_id = $1 AND p.user_id = $2 AND p.category_id = $3 AND NOT ` + lockedPredicate

	tag, err := r.db.GetPool().Exec(ctx, query, poolID, userID, categoryID, odds, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to update prediction odds: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteUnlockedForUser deletes the user's predictions in a pool, skipping
// categories whose winner is already announced. Returns rows deleted.
func (r *PostgresPredictionRepository) DeleteUnlockedForUser(ctx context.Context, poolID, userID uuid.UUID) (int, error) {
	query := `
		DELETE FROM predictions p
		WHERE p.pool_id = $1 AND p.user_id = $2 AND NOT ` + lockedPredicate

	tag, err := r.db.GetPool().Exec(ctx, query, poolID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *PostgresPredictionRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*models.Prediction, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		prediction := &models.Prediction{}
		err := rows.Scan(
			&prediction.PoolID, &prediction.UserID, &prediction.CategoryID, &prediction.NomineeID,
			&prediction.OddsPercentage, &prediction.OriginalOddsPercentage,
			&prediction.CreatedAt, &prediction.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, prediction)
	}

	return predictions, rows.Err()
}
