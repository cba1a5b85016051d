// Package oddsfeed fetches nominee odds from external providers.
package oddsfeed

import (
	"context"
	"errors"
	"time"
)

// OddsSource defines the interface for fetching award odds from external providers
type OddsSource interface {
	// FetchOdds retrieves current odds for every category in a ceremony year
	FetchOdds(ctx context.Context, year int) ([]CategoryOdds, error)

	// FetchCategoryOdds retrieves current odds for a single category
	FetchCategoryOdds(ctx context.Context, categoryID string) (*CategoryOdds, error)

	// Name returns the name of the odds source
	Name() string

	// IsEnabled returns whether this odds source is currently enabled
	IsEnabled() bool
}

// CategoryOdds represents normalized odds for one award category
type CategoryOdds struct {
	CategoryID string        `json:"category_id"` // Year-suffixed category id
	FetchedAt  time.Time     `json:"fetched_at"`  // When the provider was queried
	Nominees   []NomineeOdds `json:"nominees"`
}

// NomineeOdds represents one nominee's win probability from the provider
type NomineeOdds struct {
	NomineeID      string   `json:"nominee_id"`
	Name           string   `json:"name"`
	Film           *string  `json:"film"`
	WinProbability *float64 `json:"win_probability"` // Percentage in (0, 100], nil when unpriced
}

// FeedError represents errors from odds source operations
type FeedError struct {
	Source  string // Odds source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "source_disabled"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("odds not found")
	ErrInvalidData          = errors.New("invalid odds format")
	ErrSourceDisabled       = errors.New("odds source disabled")
)

// NewFeedError creates a new odds feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
