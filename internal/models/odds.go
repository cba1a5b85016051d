package models

import (
	"time"
)

// CategoryNominee identifies a nominee within a year-qualified category.
// Used as the grouping key for batched "latest snapshot" lookups.
type CategoryNominee struct {
	CategoryID string `json:"category_id"`
	NomineeID  string `json:"nominee_id"`
}

// OddsSnapshot represents a point-in-time record of a nominee's
// market-implied win probability. Snapshots are append-only; every refresh
// cycle adds a row even when the percentage is unchanged, so historical
// trends can be reconstructed.
type OddsSnapshot struct {
	CategoryID     string    `db:"category_id" json:"category_id" validate:"required"`
	NomineeID      string    `db:"nominee_id" json:"nominee_id" validate:"required"`
	NomineeName    string    `db:"nominee_name" json:"nominee_name"`
	NomineeFilm    string    `db:"nominee_film" json:"nominee_film"`
	OddsPercentage *float64  `db:"odds_percentage" json:"odds_percentage" validate:"omitempty,gt=0,lte=100"`
	SnapshotTime   time.Time `db:"snapshot_time" json:"snapshot_time" validate:"required"`
}

// Pair returns the snapshot's grouping key.
func (o *OddsSnapshot) Pair() CategoryNominee {
	return CategoryNominee{CategoryID: o.CategoryID, NomineeID: o.NomineeID}
}

// HasOdds reports whether the snapshot carries a usable percentage.
// Values outside (0, 100] count as "no odds" for multiplier purposes.
func (o *OddsSnapshot) HasOdds() bool {
	return o.OddsPercentage != nil && *o.OddsPercentage > 0 && *o.OddsPercentage <= 100
}

// Percentage returns the odds percentage when usable, nil otherwise.
func (o *OddsSnapshot) Percentage() *float64 {
	if o == nil || !o.HasOdds() {
		return nil
	}
	return o.OddsPercentage
}
