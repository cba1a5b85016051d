package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/logger"
	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/scoring"
)

// PoolService manages pool settings and winner announcements.
type PoolService struct {
	poolRepo   repository.PoolRepository
	winnerRepo repository.WinnerRepository
	logger     *logrus.Logger
	audit      *logger.AuditLogger
}

// NewPoolService creates a new pool service
func NewPoolService(
	poolRepo repository.PoolRepository,
	winnerRepo repository.WinnerRepository,
	log *logrus.Logger,
) *PoolService {
	return &PoolService{
		poolRepo:   poolRepo,
		winnerRepo: winnerRepo,
		logger:     log,
		audit:      logger.NewAuditLogger(log),
	}
}

// EnterWinner records the announced winner for a category. Re-entering a
// winner overwrites the previous one; announcing a winner locks the category
// for every ballot in the pool and freezes pool settings.
func (s *PoolService) EnterWinner(ctx context.Context, poolID uuid.UUID, categoryID, nomineeID string, enteredBy uuid.UUID, autoDetected bool) error {
	if categoryID == "" || nomineeID == "" {
		return models.ErrInvalidID
	}

	if _, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		return fmt.Errorf("failed to load pool: %w", err)
	}

	winner := &models.ActualWinner{
		PoolID:         poolID,
		CategoryID:     categoryID,
		NomineeID:      nomineeID,
		EnteredBy:      enteredBy,
		IsAutoDetected: autoDetected,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := s.winnerRepo.Upsert(ctx, winner); err != nil {
		return fmt.Errorf("failed to record winner: %w", err)
	}

	metrics.RecordWinnerEntered()
	s.audit.LogWinnerEntered(poolID, categoryID, nomineeID, enteredBy, autoDetected, winner.UpdatedAt)

	return nil
}

// UpdateSettings writes pool scoring settings. Settings are rejected once any
// winner has been announced in the pool.
func (s *PoolService) UpdateSettings(ctx context.Context, settings *models.PoolSettings) error {
	if settings == nil {
		return fmt.Errorf("settings must not be nil")
	}

	if _, err := s.poolRepo.GetByID(ctx, settings.PoolID); err != nil {
		return fmt.Errorf("failed to load pool: %w", err)
	}

	if settings.OddsMultiplierEnabled && settings.OddsMultiplierFormula != "" {
		switch scoring.Formula(settings.OddsMultiplierFormula) {
		case scoring.FormulaLinear, scoring.FormulaInverse, scoring.FormulaSqrt, scoring.FormulaLog:
		default:
			return fmt.Errorf("invalid multiplier formula: %s", settings.OddsMultiplierFormula)
		}
	}
	for categoryID, points := range settings.CategoryPoints {
		if points <= 0 {
			return fmt.Errorf("point value for category %s must be positive", categoryID)
		}
	}

	settings.UpdatedAt = time.Now().UTC()

	if err := s.poolRepo.UpdateSettingsIfUnfrozen(ctx, settings); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"pool_id":            settings.PoolID,
		"multiplier_enabled": settings.OddsMultiplierEnabled,
		"formula":            settings.OddsMultiplierFormula,
		"overrides":          len(settings.CategoryPoints),
	}).Info("Pool settings updated")

	return nil
}
