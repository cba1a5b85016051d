package models

import (
	"time"

	"github.com/google/uuid"
)

// Pool represents a scored competition instance for one award year.
type Pool struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Year      int       `db:"year" json:"year" validate:"required,gte=1929"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PoolSettings holds the pool owner's scoring configuration. CategoryPoints
// is keyed by base category id. Settings are frozen once any winner has
// been announced in the pool.
type PoolSettings struct {
	PoolID                uuid.UUID      `db:"pool_id" json:"pool_id" validate:"required"`
	CategoryPoints        map[string]int `db:"category_points" json:"category_points"`
	OddsMultiplierEnabled bool           `db:"odds_multiplier_enabled" json:"odds_multiplier_enabled"`
	OddsMultiplierFormula string         `db:"odds_multiplier_formula" json:"odds_multiplier_formula" validate:"omitempty,oneof=linear inverse sqrt log"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// BasePointsFor resolves the point value of a category: the pool override
// when one exists, otherwise the category's default. One policy for both
// the leaderboard and the submissions view.
func (s *PoolSettings) BasePointsFor(category *Category) int {
	if category == nil {
		return 0
	}
	if s != nil && s.CategoryPoints != nil {
		if pts, ok := s.CategoryPoints[category.BaseID]; ok {
			return pts
		}
	}
	return category.DefaultPoints
}
