package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/scoring"
)

// ScoreService loads a pool's state and runs the scoring engine over it.
type ScoreService struct {
	poolRepo       repository.PoolRepository
	categoryRepo   repository.CategoryRepository
	winnerRepo     repository.WinnerRepository
	predictionRepo repository.PredictionRepository
	memberRepo     repository.MemberRepository
	logger         *logrus.Logger
}

// NewScoreService creates a new score service
func NewScoreService(
	poolRepo repository.PoolRepository,
	categoryRepo repository.CategoryRepository,
	winnerRepo repository.WinnerRepository,
	predictionRepo repository.PredictionRepository,
	memberRepo repository.MemberRepository,
	log *logrus.Logger,
) *ScoreService {
	return &ScoreService{
		poolRepo:       poolRepo,
		categoryRepo:   categoryRepo,
		winnerRepo:     winnerRepo,
		predictionRepo: predictionRepo,
		memberRepo:     memberRepo,
		logger:         log,
	}
}

// CalculateScores scores every member of a pool. Members with empty or
// partial ballots are scored alongside complete ones; they are simply
// credited for the categories they picked.
func (s *ScoreService) CalculateScores(ctx context.Context, poolID uuid.UUID) (*scoring.Result, error) {
	start := time.Now()

	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}

	settings, err := s.poolRepo.GetSettings(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool settings: %w", err)
	}

	categories, err := s.categoryRepo.GetByYear(ctx, pool.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	winners, err := s.winnerRepo.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winners: %w", err)
	}

	predictions, err := s.predictionRepo.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}

	members, err := s.memberRepo.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	result := scoring.CalculateScores(scoring.Input{
		Settings:    settings,
		Categories:  categories,
		Winners:     winners,
		Predictions: predictions,
		Members:     members,
	})

	metrics.RecordScoringRun(time.Since(start).Seconds())
	s.logger.WithFields(logrus.Fields{
		"pool_id":  poolID,
		"members":  len(members),
		"winners":  len(winners),
		"duration": time.Since(start).String(),
	}).Debug("Pool scored")

	return result, nil
}

// GetUserScore scores the pool and returns one member's entry. Returns
// models.ErrNotFound when the user is not a pool member.
func (s *ScoreService) GetUserScore(ctx context.Context, poolID, userID uuid.UUID) (*scoring.UserScore, error) {
	result, err := s.CalculateScores(ctx, poolID)
	if err != nil {
		return nil, err
	}

	for _, score := range result.Scores {
		if score.UserID == userID {
			return score, nil
		}
	}

	return nil, models.ErrNotFound
}

// GetStandings scores the pool and orders members by what they can still
// reach: possible points descending, current score as the tie-break.
func (s *ScoreService) GetStandings(ctx context.Context, poolID uuid.UUID) (*scoring.Result, error) {
	result, err := s.CalculateScores(ctx, poolID)
	if err != nil {
		return nil, err
	}

	scoring.SortStandings(result.Scores)
	return result, nil
}
