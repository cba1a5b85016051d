package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/logger"
	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/repository"
)

// PredictionService manages the pick lifecycle: creating and switching picks,
// ratcheting stored odds, clearing ballots and copying them between pools.
type PredictionService struct {
	predictionRepo repository.PredictionRepository
	oddsRepo       repository.OddsRepository
	poolRepo       repository.PoolRepository
	memberRepo     repository.MemberRepository
	winnerRepo     repository.WinnerRepository
	logger         *logrus.Logger
	audit          *logger.AuditLogger
}

// UpgradeReport summarizes one ratchet sweep over a category.
type UpgradeReport struct {
	Checked  int
	Upgraded int
	Failed   int
}

// CopyReport summarizes a ballot copy between pools.
type CopyReport struct {
	Copied  int
	Skipped int
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	predictionRepo repository.PredictionRepository,
	oddsRepo repository.OddsRepository,
	poolRepo repository.PoolRepository,
	memberRepo repository.MemberRepository,
	winnerRepo repository.WinnerRepository,
	log *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		predictionRepo: predictionRepo,
		oddsRepo:       oddsRepo,
		poolRepo:       poolRepo,
		memberRepo:     memberRepo,
		winnerRepo:     winnerRepo,
		logger:         log,
		audit:          logger.NewAuditLogger(log),
	}
}

// CreateOrUpdatePrediction records a user's pick of a nominee for a category.
// Current market odds are captured as both the stored and the original odds
// when the nominee changes; re-picking the same nominee refreshes the stored
// odds to the current market while preserving the original baseline. Returns
// the stored prediction together with the freshly fetched market odds (nil
// when the pair is unpriced); the stored value is what scoring uses. Returns
// models.ErrBallotLocked once the category winner is announced.
func (s *PredictionService) CreateOrUpdatePrediction(ctx context.Context, poolID, userID uuid.UUID, baseCategoryID, nomineeID string) (*models.Prediction, *float64, error) {
	isMember, err := s.memberRepo.IsMember(ctx, poolID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, nil, models.ErrNotAMember
	}

	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pool: %w", err)
	}

	now := time.Now().UTC()
	prediction := &models.Prediction{
		PoolID:     poolID,
		UserID:     userID,
		CategoryID: models.NormalizeCategoryID(baseCategoryID),
		NomineeID:  nomineeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switched := false
	existing, err := s.predictionRepo.Get(ctx, poolID, userID, prediction.CategoryID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load existing prediction: %w", err)
	}

	// A pair with no usable snapshot stays unpriced and scores at
	// multiplier 1.
	snapshot, err := s.oddsRepo.GetLatest(ctx, models.CompositeCategoryID(prediction.CategoryID, pool.Year), nomineeID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load current odds: %w", err)
	}
	var currentOdds *float64
	if pct := snapshot.Percentage(); pct != nil {
		v := *pct
		currentOdds = &v
	}

	if existing != nil && existing.NomineeID == nomineeID {
		// Same nominee re-picked: refresh the stored odds to the
		// current market, keep the original baseline.
		if currentOdds != nil {
			odds := *currentOdds
			existing.OddsPercentage = &odds
			if existing.OriginalOddsPercentage == nil {
				original := *currentOdds
				existing.OriginalOddsPercentage = &original
			}
		}
		existing.UpdatedAt = now
		prediction = existing
	} else {
		if existing != nil {
			switched = true
			prediction.CreatedAt = existing.CreatedAt
		}
		if currentOdds != nil {
			odds := *currentOdds
			prediction.OddsPercentage = &odds
			original := *currentOdds
			prediction.OriginalOddsPercentage = &original
		}
	}

	if err := s.predictionRepo.UpsertIfUnlocked(ctx, prediction); err != nil {
		if errors.Is(err, models.ErrBallotLocked) {
			metrics.RecordPredictionLocked()
		}
		return nil, nil, err
	}

	metrics.RecordPredictionWritten()
	s.audit.LogPickWritten(poolID, userID, prediction.CategoryID, nomineeID,
		prediction.OddsPercentage, prediction.OriginalOddsPercentage, switched)

	return prediction, currentOdds, nil
}

// UpgradeOddsIfBetter loads a user's pick by ids, fetches the current market
// odds for its nominee and ratchets the stored odds where that improves them.
// Returns models.ErrNotFound when the user has no pick for the category.
func (s *PredictionService) UpgradeOddsIfBetter(ctx context.Context, poolID, userID uuid.UUID, baseCategoryID string) (bool, error) {
	base := models.NormalizeCategoryID(baseCategoryID)

	prediction, err := s.predictionRepo.Get(ctx, poolID, userID, base)
	if err != nil {
		return false, fmt.Errorf("failed to load prediction: %w", err)
	}

	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return false, fmt.Errorf("failed to load pool: %w", err)
	}

	snapshot, err := s.oddsRepo.GetLatest(ctx, models.CompositeCategoryID(base, pool.Year), prediction.NomineeID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("failed to load current odds: %w", err)
	}

	return s.ApplyOddsUpgrade(ctx, prediction, snapshot.Percentage())
}

// ApplyOddsUpgrade ratchets one prediction's stored odds toward the
// minimum of current market odds and the original baseline. Changes below
// models.OddsEpsilon are skipped so repeated sweeps stay idempotent. The
// original baseline is never modified.
func (s *PredictionService) ApplyOddsUpgrade(ctx context.Context, prediction *models.Prediction, currentOdds *float64) (bool, error) {
	target := prediction.RatchetTarget(currentOdds)
	if !prediction.NeedsUpgrade(target) {
		return false, nil
	}

	updated, err := s.predictionRepo.UpdateOddsIfUnlocked(ctx, prediction.PoolID, prediction.UserID, prediction.CategoryID, *target)
	if err != nil {
		return false, fmt.Errorf("failed to upgrade stored odds: %w", err)
	}
	if !updated {
		// Winner announced between the sweep read and this write.
		return false, nil
	}

	s.audit.LogRatchetApplied(prediction.PoolID, prediction.UserID, prediction.CategoryID,
		prediction.OddsPercentage, *target)
	prediction.OddsPercentage = target

	return true, nil
}

// UpgradeAllPredictionsForCategory sweeps every unlocked prediction on a base
// category across pools of the given year and ratchets stored odds where the
// market has moved in the picker's favor. Individual failures do not stop the
// sweep.
func (s *PredictionService) UpgradeAllPredictionsForCategory(ctx context.Context, baseCategoryID string, year int) (*UpgradeReport, error) {
	baseCategoryID = models.NormalizeCategoryID(baseCategoryID)
	report := &UpgradeReport{}

	predictions, err := s.predictionRepo.GetUnlockedByCategory(ctx, baseCategoryID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for category %s: %w", baseCategoryID, err)
	}
	if len(predictions) == 0 {
		return report, nil
	}

	// One batched read covers every nominee in the category.
	compositeID := models.CompositeCategoryID(baseCategoryID, year)
	pairSet := make(map[models.CategoryNominee]struct{})
	pairs := make([]models.CategoryNominee, 0)
	for _, p := range predictions {
		pair := models.CategoryNominee{CategoryID: compositeID, NomineeID: p.NomineeID}
		if _, seen := pairSet[pair]; !seen {
			pairSet[pair] = struct{}{}
			pairs = append(pairs, pair)
		}
	}

	latest, err := s.oddsRepo.GetLatestForPairs(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest odds: %w", err)
	}

	for _, prediction := range predictions {
		report.Checked++

		var current *float64
		if snapshot, ok := latest[models.CategoryNominee{CategoryID: compositeID, NomineeID: prediction.NomineeID}]; ok {
			current = snapshot.Percentage()
		}

		upgraded, err := s.ApplyOddsUpgrade(ctx, prediction, current)
		if err != nil {
			report.Failed++
			metrics.RecordUpgrade("failed")
			s.logger.WithError(err).WithFields(logrus.Fields{
				"pool_id":     prediction.PoolID,
				"user_id":     prediction.UserID,
				"category_id": prediction.CategoryID,
			}).Error("Failed to upgrade prediction odds")
			continue
		}
		if upgraded {
			report.Upgraded++
			metrics.RecordUpgrade("applied")
		} else {
			metrics.RecordUpgrade("unchanged")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": baseCategoryID,
		"year":        year,
		"checked":     report.Checked,
		"upgraded":    report.Upgraded,
		"failed":      report.Failed,
	}).Info("Prediction upgrade sweep complete")

	return report, nil
}

// DeleteAllPredictions clears a user's ballot in a pool, skipping categories
// whose winner is already announced. Returns the number of picks deleted and
// the number skipped by the winner lock.
func (s *PredictionService) DeleteAllPredictions(ctx context.Context, poolID, userID uuid.UUID) (deleted, skipped int, err error) {
	existing, err := s.predictionRepo.GetByPoolAndUser(ctx, poolID, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load predictions: %w", err)
	}
	if len(existing) == 0 {
		return 0, 0, nil
	}

	deleted, err = s.predictionRepo.DeleteUnlockedForUser(ctx, poolID, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	skipped = len(existing) - deleted

	s.audit.LogBallotCleared(poolID, userID, deleted, skipped)

	return deleted, skipped, nil
}

// CopyPredictionsFromPool copies a user's ballot from one pool into another.
// Both pools must cover the same ceremony year and the user must belong to
// both. Locked categories in the target pool are skipped. Each copied pick
// gets a fresh baseline from the current market odds rather than carrying
// the source pool's drift history.
func (s *PredictionService) CopyPredictionsFromPool(ctx context.Context, sourcePoolID, targetPoolID, userID uuid.UUID) (*CopyReport, error) {
	if sourcePoolID == targetPoolID {
		return nil, fmt.Errorf("source and target pool are the same")
	}

	sourcePool, err := s.poolRepo.GetByID(ctx, sourcePoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source pool: %w", err)
	}
	targetPool, err := s.poolRepo.GetByID(ctx, targetPoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target pool: %w", err)
	}
	if sourcePool.Year != targetPool.Year {
		return nil, models.ErrPoolYearMismatch
	}

	for _, poolID := range []uuid.UUID{sourcePoolID, targetPoolID} {
		isMember, err := s.memberRepo.IsMember(ctx, poolID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !isMember {
			return nil, models.ErrNotAMember
		}
	}

	predictions, err := s.predictionRepo.GetByPoolAndUser(ctx, sourcePoolID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source predictions: %w", err)
	}

	report := &CopyReport{}
	now := time.Now().UTC()

	for _, source := range predictions {
		pick := &models.Prediction{
			PoolID:     targetPoolID,
			UserID:     userID,
			CategoryID: source.CategoryID,
			NomineeID:  source.NomineeID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		// Re-fetch current odds in the target pool's context and
		// write a fresh baseline. A pair with no usable snapshot is
		// copied unpriced.
		snapshot, err := s.oddsRepo.GetLatest(ctx, models.CompositeCategoryID(source.CategoryID, targetPool.Year), source.NomineeID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return report, fmt.Errorf("failed to load current odds for category %s: %w", source.CategoryID, err)
		}
		if pct := snapshot.Percentage(); pct != nil {
			odds := *pct
			pick.OddsPercentage = &odds
			original := *pct
			pick.OriginalOddsPercentage = &original
		}

		err = s.predictionRepo.UpsertIfUnlocked(ctx, pick)
		if errors.Is(err, models.ErrBallotLocked) {
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to copy prediction for category %s: %w", source.CategoryID, err)
		}
		report.Copied++
	}

	s.logger.WithFields(logrus.Fields{
		"source_pool_id": sourcePoolID,
		"target_pool_id": targetPoolID,
		"user_id":        userID,
		"copied":         report.Copied,
		"skipped":        report.Skipped,
	}).Info("Ballot copied between pools")

	return report, nil
}
