package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/repository"
)

// TrendDirection labels how a nominee's odds moved over a window.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendFlat   TrendDirection = "flat"
	TrendNoData TrendDirection = "no_data"
)

// OddsTrend summarizes a nominee's odds movement over a time window.
type OddsTrend struct {
	CategoryID string                 `json:"category_id"`
	NomineeID  string                 `json:"nominee_id"`
	Direction  TrendDirection         `json:"direction"`
	First      *float64               `json:"first"`
	Latest     *float64               `json:"latest"`
	Samples    int                    `json:"samples"`
	History    []*models.OddsSnapshot `json:"history,omitempty"`
}

// OddsHistoryService reads the append-only snapshot history.
type OddsHistoryService struct {
	oddsRepo repository.OddsRepository
	logger   *logrus.Logger
}

// NewOddsHistoryService creates a new odds history service
func NewOddsHistoryService(oddsRepo repository.OddsRepository, log *logrus.Logger) *OddsHistoryService {
	return &OddsHistoryService{oddsRepo: oddsRepo, logger: log}
}

// GetTrend returns a nominee's odds movement over the window ending now.
// Movement below models.OddsEpsilon counts as flat.
func (s *OddsHistoryService) GetTrend(ctx context.Context, categoryID, nomineeID string, window time.Duration) (*OddsTrend, error) {
	end := time.Now().UTC()
	start := end.Add(-window)

	history, err := s.oddsRepo.GetTimeSeries(ctx, categoryID, nomineeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load odds history: %w", err)
	}

	trend := &OddsTrend{
		CategoryID: categoryID,
		NomineeID:  nomineeID,
		Direction:  TrendNoData,
		Samples:    len(history),
		History:    history,
	}

	var first, latest *float64
	for _, snapshot := range history {
		if pct := snapshot.Percentage(); pct != nil {
			if first == nil {
				first = pct
			}
			latest = pct
		}
	}
	trend.First = first
	trend.Latest = latest

	if first == nil || latest == nil {
		return trend, nil
	}

	delta := *latest - *first
	switch {
	case delta > models.OddsEpsilon:
		trend.Direction = TrendUp
	case delta < -models.OddsEpsilon:
		trend.Direction = TrendDown
	default:
		trend.Direction = TrendFlat
	}

	return trend, nil
}

// GetOddsAt returns the odds a pair carried at a point in time, or nil when
// no snapshot existed yet.
func (s *OddsHistoryService) GetOddsAt(ctx context.Context, categoryID, nomineeID string, at time.Time) (*float64, error) {
	snapshot, err := s.oddsRepo.GetAtTime(ctx, categoryID, nomineeID, at)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snapshot.Percentage(), nil
}
