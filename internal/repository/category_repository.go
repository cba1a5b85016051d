package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresCategoryRepository implements CategoryRepository for PostgreSQL
type PostgresCategoryRepository struct {
	db *database.DB
}

// NewPostgresCategoryRepository creates a new category repository
func NewPostgresCategoryRepository(db *database.DB) CategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

// GetByYear retrieves all award categories for a ceremony year
func (r *PostgresCategoryRepository) GetByYear(ctx context.Context, year int) ([]*models.Category, error) {
	query := `
		SELECT base_id, year, name, default_points, created_at
		FROM categories
		WHERE year = $1
		ORDER BY base_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		err := rows.Scan(&category.BaseID, &category.Year, &category.Name, &category.DefaultPoints, &category.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// GetByID retrieves one category by base id and year
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, baseID string, year int) (*models.Category, error) {
	query := `
		SELECT base_id, year, name, default_points, created_at
		FROM categories
		WHERE base_id = $1 AND year = $2
	`

	category := &models.Category{}
	err := r.db.GetPool().QueryRow(ctx, query, baseID, year).Scan(
		&category.BaseID, &category.Year, &category.Name, &category.DefaultPoints, &category.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}
