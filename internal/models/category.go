package models

import (
	"fmt"
	"regexp"
	"time"
)

// yearSuffix matches the trailing award-year suffix on composite category
// ids, e.g. the "-2026" in "best-picture-2026".
var yearSuffix = regexp.MustCompile(`-\d{4}$`)

// NormalizeCategoryID strips the award-year suffix from a category id,
// returning the base id. Ids without a year suffix pass through unchanged.
// All call sites that move category ids across a boundary (winners, odds
// lookups, settings overrides) normalize through this one function.
func NormalizeCategoryID(id string) string {
	return yearSuffix.ReplaceAllString(id, "")
}

// CompositeCategoryID builds the year-qualified category id used by the odds
// store and reference data, e.g. ("best-picture", 2026) -> "best-picture-2026".
func CompositeCategoryID(baseID string, year int) string {
	return fmt.Sprintf("%s-%d", baseID, year)
}

// Category represents an award category for a given ceremony year.
// The base id and year are stored as two fields; the composite id is derived.
type Category struct {
	BaseID        string    `db:"base_id" json:"base_id" validate:"required"`
	Year          int       `db:"year" json:"year" validate:"required,gte=1929"`
	Name          string    `db:"name" json:"name" validate:"required"`
	DefaultPoints int       `db:"default_points" json:"default_points" validate:"gte=0"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ID returns the composite year-qualified category id.
func (c *Category) ID() string {
	return CompositeCategoryID(c.BaseID, c.Year)
}
