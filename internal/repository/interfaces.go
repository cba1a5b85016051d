package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gold-envelope/internal/models"
)

// OddsRepository defines the interface for odds snapshot data access.
// Snapshots are append-only; there are no update or delete operations.
type OddsRepository interface {
	Insert(ctx context.Context, snapshot *models.OddsSnapshot) error
	InsertBatch(ctx context.Context, snapshots []*models.OddsSnapshot) error
	// GetLatest returns the most recent snapshot for a pair.
	GetLatest(ctx context.Context, categoryID, nomineeID string) (*models.OddsSnapshot, error)
	// GetAtTime returns the latest snapshot taken at or before the given time.
	GetAtTime(ctx context.Context, categoryID, nomineeID string, at time.Time) (*models.OddsSnapshot, error)
	// GetLatestForPairs returns the most recent snapshot per distinct pair.
	GetLatestForPairs(ctx context.Context, pairs []models.CategoryNominee) (map[models.CategoryNominee]*models.OddsSnapshot, error)
	// GetTimeSeries returns snapshots for a pair within a time range, oldest first.
	GetTimeSeries(ctx context.Context, categoryID, nomineeID string, start, end time.Time) ([]*models.OddsSnapshot, error)
}

// PredictionRepository defines the interface for prediction data access.
type PredictionRepository interface {
	Get(ctx context.Context, poolID, userID uuid.UUID, categoryID string) (*models.Prediction, error)
	GetByPoolAndUser(ctx context.Context, poolID, userID uuid.UUID) ([]*models.Prediction, error)
	GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Prediction, error)
	// GetUnlockedByCategory returns predictions for a base category across
	// every pool of the given year whose winner is not yet announced.
	GetUnlockedByCategory(ctx context.Context, baseCategoryID string, year int) ([]*models.Prediction, error)
	// UpsertIfUnlocked writes the prediction inside a transaction that
	// re-checks the winner lock; returns models.ErrBallotLocked if a winner
	// exists for the category in that pool.
	UpsertIfUnlocked(ctx context.Context, prediction *models.Prediction) error
	// UpdateOddsIfUnlocked overwrites stored odds for one prediction unless
	// the category is locked. Returns true when a row was updated.
	UpdateOddsIfUnlocked(ctx context.Context, poolID, userID uuid.UUID, categoryID string, odds float64) (bool, error)
	// DeleteUnlockedForUser deletes the user's predictions in a pool,
	// skipping locked categories. Returns the number of rows deleted.
	DeleteUnlockedForUser(ctx context.Context, poolID, userID uuid.UUID) (int, error)
}

// CategoryRepository defines the interface for category reference data.
type CategoryRepository interface {
	GetByYear(ctx context.Context, year int) ([]*models.Category, error)
	GetByID(ctx context.Context, baseID string, year int) (*models.Category, error)
}

// PoolRepository defines the interface for pool and settings data access.
type PoolRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error)
	GetSettings(ctx context.Context, poolID uuid.UUID) (*models.PoolSettings, error)
	// UpdateSettingsIfUnfrozen writes settings unless any winner has been
	// announced in the pool; returns models.ErrSettingsFrozen otherwise.
	UpdateSettingsIfUnfrozen(ctx context.Context, settings *models.PoolSettings) error
}

// MemberRepository defines the interface for pool membership data access.
type MemberRepository interface {
	// GetByPool returns members ordered by join time.
	GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.PoolMember, error)
	IsMember(ctx context.Context, poolID, userID uuid.UUID) (bool, error)
}

// WinnerRepository defines the interface for announced-winner data access.
type WinnerRepository interface {
	GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.ActualWinner, error)
	// HasWinner reports whether a winner is announced for the base category.
	HasWinner(ctx context.Context, poolID uuid.UUID, baseCategoryID string) (bool, error)
	// AnyWinner reports whether any category winner exists in the pool.
	AnyWinner(ctx context.Context, poolID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, winner *models.ActualWinner) error
}
