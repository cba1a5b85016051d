package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/scoring"
)

// Submission is the pool-overview row for one member. It carries a display
// name and point totals only; user contact details never appear here.
type Submission struct {
	UserID         uuid.UUID `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	HasPaid        bool      `json:"has_paid"`
	EarnedPoints   float64   `json:"earned_points"`
	PossiblePoints float64   `json:"possible_points"`
	CorrectCount   int       `json:"correct_count"`
	FilledCount    int       `json:"filled_count"`
	Complete       bool      `json:"complete"`
}

// SubmissionService builds the pool submissions overview.
type SubmissionService struct {
	memberRepo   repository.MemberRepository
	scoreService *ScoreService
	logger       *logrus.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	memberRepo repository.MemberRepository,
	scoreService *ScoreService,
	log *logrus.Logger,
) *SubmissionService {
	return &SubmissionService{
		memberRepo:   memberRepo,
		scoreService: scoreService,
		logger:       log,
	}
}

// GetPoolSubmissions returns one row per pool member with earned and
// possible points from the shared scoring engine. Members without a chosen
// submission name are shown as "Ballot #N", numbered by join order. Rows are
// ordered by earned points descending with join order breaking ties.
func (s *SubmissionService) GetPoolSubmissions(ctx context.Context, poolID uuid.UUID) ([]*Submission, error) {
	members, err := s.memberRepo.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	result, err := s.scoreService.CalculateScores(ctx, poolID)
	if err != nil {
		return nil, err
	}

	scoresByUser := make(map[uuid.UUID]*scoring.UserScore, len(result.Scores))
	for _, score := range result.Scores {
		scoresByUser[score.UserID] = score
	}

	// Fallback names are numbered by join order, independent of score.
	names := make(map[uuid.UUID]string, len(members))
	for i, member := range members {
		names[member.UserID] = member.DisplayName(i + 1)
	}

	paid := make(map[uuid.UUID]bool, len(members))
	for _, member := range members {
		paid[member.UserID] = member.HasPaid
	}

	// result.Scores is already score-descending with join-order ties.
	submissions := make([]*Submission, 0, len(result.Scores))
	for _, score := range result.Scores {
		submissions = append(submissions, &Submission{
			UserID:         score.UserID,
			DisplayName:    names[score.UserID],
			HasPaid:        paid[score.UserID],
			EarnedPoints:   scoring.Round1(score.Score),
			PossiblePoints: scoring.Round1(score.PossiblePoints),
			CorrectCount:   score.CorrectCount,
			FilledCount:    score.FilledCount,
			Complete:       result.TotalCategories > 0 && score.FilledCount == result.TotalCategories,
		})
	}

	return submissions, nil
}
