package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresMemberRepository implements MemberRepository for PostgreSQL
type PostgresMemberRepository struct {
	db *database.DB
}

// NewPostgresMemberRepository creates a new member repository
func NewPostgresMemberRepository(db *database.DB) MemberRepository {
	return &PostgresMemberRepository{db: db}
}

// GetByPool retrieves a pool's members ordered by join time. Join order is
// load-bearing: it drives the "Ballot #N" fallback names and the stable
// tie-break in scoring.
func (r *PostgresMemberRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.PoolMember, error) {
	query := `
		SELECT pool_id, user_id, submission_name, has_paid, joined_at
		FROM pool_members
		WHERE pool_id = $1
		ORDER BY joined_at ASC, user_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool members: %w", err)
	}
	defer rows.Close()

	var members []*models.PoolMember
	for rows.Next() {
		member := &models.PoolMember{}
		err := rows.Scan(&member.PoolID, &member.UserID, &member.SubmissionName, &member.HasPaid, &member.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pool member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// IsMember reports whether a user belongs to a pool
func (r *PostgresMemberRepository) IsMember(ctx context.Context, poolID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pool_members WHERE pool_id = $1 AND user_id = $2)`,
		poolID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pool membership: %w", err)
	}

	return exists, nil
}
