package repository

import (
	"fmt"

	"github.com/yourusername/gold-envelope/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Odds       OddsRepository
	Prediction PredictionRepository
	Category   CategoryRepository
	Pool       PoolRepository
	Member     MemberRepository
	Winner     WinnerRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Odds:       NewPostgresOddsRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
		Category:   NewPostgresCategoryRepository(db),
		Pool:       NewPostgresPoolRepository(db),
		Member:     NewPostgresMemberRepository(db),
		Winner:     NewPostgresWinnerRepository(db),
	}, nil
}
