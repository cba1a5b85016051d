package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PoolMember represents a user's membership in a pool. Members define the
// scope of who is scored. Email addresses deliberately do not appear here:
// anything derived from a member must be safe to show to the whole pool.
type PoolMember struct {
	PoolID         uuid.UUID `db:"pool_id" json:"pool_id" validate:"required"`
	UserID         uuid.UUID `db:"user_id" json:"user_id" validate:"required"`
	SubmissionName *string   `db:"submission_name" json:"submission_name"`
	HasPaid        bool      `db:"has_paid" json:"has_paid"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
}

// DisplayName returns the member's submission name, falling back to
// "Ballot #N" where N is the member's 1-based join position.
func (m *PoolMember) DisplayName(ordinal int) string {
	if m.SubmissionName != nil && *m.SubmissionName != "" {
		return *m.SubmissionName
	}
	return fmt.Sprintf("Ballot #%d", ordinal)
}
