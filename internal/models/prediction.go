package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// OddsEpsilon is the smallest stored-odds change worth persisting. Ratchet
// passes below this threshold are treated as no-ops so repeated sweeps stay
// idempotent.
const OddsEpsilon = 0.01

// Prediction represents a user's pick of one nominee for one category within
// one pool. CategoryID is the year-less base id; the pool carries the year.
//
// OddsPercentage is the value used at scoring time. It is captured at write
// time and may only move toward a worse (lower) value via the ratchet path.
// OriginalOddsPercentage is the baseline captured when the current nominee
// was first selected; it is reset on a nominee switch and never touched by
// the ratchet.
type Prediction struct {
	PoolID                 uuid.UUID `db:"pool_id" json:"pool_id" validate:"required"`
	UserID                 uuid.UUID `db:"user_id" json:"user_id" validate:"required"`
	CategoryID             string    `db:"category_id" json:"category_id" validate:"required"`
	NomineeID              string    `db:"nominee_id" json:"nominee_id" validate:"required"`
	OddsPercentage         *float64  `db:"odds_percentage" json:"odds_percentage"`
	OriginalOddsPercentage *float64  `db:"original_odds_percentage" json:"original_odds_percentage"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// HasOdds reports whether the prediction carries usable stored odds.
func (p *Prediction) HasOdds() bool {
	return p.OddsPercentage != nil && *p.OddsPercentage > 0 && *p.OddsPercentage <= 100
}

// RatchetTarget computes the odds value the ratchet would settle on given
// the current market odds: the minimum of current and original when both
// are known, otherwise whichever is known. Returns nil when neither is.
func (p *Prediction) RatchetTarget(current *float64) *float64 {
	original := p.OriginalOddsPercentage
	switch {
	case current == nil && original == nil:
		return nil
	case current == nil:
		v := *original
		return &v
	case original == nil:
		v := *current
		return &v
	}
	v := math.Min(*current, *original)
	return &v
}

// NeedsUpgrade reports whether the stored odds differ from the ratchet
// target by more than the epsilon. A nil target never triggers an upgrade.
func (p *Prediction) NeedsUpgrade(target *float64) bool {
	if target == nil {
		return false
	}
	if p.OddsPercentage == nil {
		return true
	}
	return math.Abs(*target-*p.OddsPercentage) > OddsEpsilon
}
