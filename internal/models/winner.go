package models

import (
	"time"

	"github.com/google/uuid"
)

// ActualWinner records the announced winner of a category within a pool.
// Once a row exists the category is locked: predictions for it can no
// longer be created, mutated, or deleted by the normal write path.
type ActualWinner struct {
	PoolID         uuid.UUID `db:"pool_id" json:"pool_id" validate:"required"`
	CategoryID     string    `db:"category_id" json:"category_id" validate:"required"`
	NomineeID      string    `db:"nominee_id" json:"nominee_id" validate:"required"`
	EnteredBy      uuid.UUID `db:"entered_by" json:"entered_by"`
	IsAutoDetected bool      `db:"is_auto_detected" json:"is_auto_detected"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// BaseCategoryID returns the winner's category id normalized to the
// year-less base form predictions are keyed by.
func (w *ActualWinner) BaseCategoryID() string {
	return NormalizeCategoryID(w.CategoryID)
}
