package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/oddsfeed"
	"github.com/yourusername/gold-envelope/internal/repository"
)

// OddsRefreshService pulls current odds from the external feed, appends
// snapshots, and triggers the ratchet sweep for every refreshed category.
type OddsRefreshService struct {
	source            oddsfeed.OddsSource
	oddsRepo          repository.OddsRepository
	predictionService *PredictionService
	logger            *logrus.Logger
}

// RefreshReport summarizes one refresh run.
type RefreshReport struct {
	Categories int
	Snapshots  int
	Upgraded   int
	Duration   time.Duration
}

// NewOddsRefreshService creates a new odds refresh service
func NewOddsRefreshService(
	source oddsfeed.OddsSource,
	oddsRepo repository.OddsRepository,
	predictionService *PredictionService,
	log *logrus.Logger,
) *OddsRefreshService {
	return &OddsRefreshService{
		source:            source,
		oddsRepo:          oddsRepo,
		predictionService: predictionService,
		logger:            log,
	}
}

// RefreshOdds fetches current odds for the ceremony year, records one
// snapshot per nominee, and sweeps predictions in each refreshed category.
// Snapshots are appended even when unchanged; history needs the cadence.
func (s *OddsRefreshService) RefreshOdds(ctx context.Context, year int) (*RefreshReport, error) {
	start := time.Now()
	report := &RefreshReport{}

	if !s.source.IsEnabled() {
		metrics.RecordRefresh("skipped", 0)
		return report, nil
	}

	categoryOdds, err := s.source.FetchOdds(ctx, year)
	if err != nil {
		metrics.RecordRefresh("error", time.Since(start).Seconds())
		metrics.RecordFeedError()
		return nil, fmt.Errorf("failed to fetch odds from %s: %w", s.source.Name(), err)
	}

	snapshotTime := time.Now().UTC()
	snapshots := make([]*models.OddsSnapshot, 0)
	for _, category := range categoryOdds {
		for _, nominee := range category.Nominees {
			snapshot := &models.OddsSnapshot{
				CategoryID:   category.CategoryID,
				NomineeID:    nominee.NomineeID,
				NomineeName:  nominee.Name,
				SnapshotTime: snapshotTime,
			}
			if nominee.Film != nil {
				snapshot.NomineeFilm = *nominee.Film
			}
			if nominee.WinProbability != nil {
				v := *nominee.WinProbability
				snapshot.OddsPercentage = &v
			}
			snapshots = append(snapshots, snapshot)
		}
	}

	if err := s.oddsRepo.InsertBatch(ctx, snapshots); err != nil {
		metrics.RecordRefresh("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to store odds snapshots: %w", err)
	}

	report.Categories = len(categoryOdds)
	report.Snapshots = len(snapshots)
	metrics.RecordSnapshots(len(snapshots))
	metrics.UpdateTrackedPairs(len(snapshots))

	// Ratchet pass per refreshed category. A failing sweep does not fail
	// the refresh; snapshots are already stored.
	for _, category := range categoryOdds {
		baseID := models.NormalizeCategoryID(category.CategoryID)
		sweep, err := s.predictionService.UpgradeAllPredictionsForCategory(ctx, baseID, year)
		if err != nil {
			s.logger.WithError(err).WithField("category_id", baseID).
				Error("Upgrade sweep failed after refresh")
			continue
		}
		report.Upgraded += sweep.Upgraded
	}

	report.Duration = time.Since(start)
	metrics.RecordRefresh("success", report.Duration.Seconds())
	metrics.UpdateLastRefresh(float64(snapshotTime.Unix()))

	s.logger.WithFields(logrus.Fields{
		"year":       year,
		"categories": report.Categories,
		"snapshots":  report.Snapshots,
		"upgraded":   report.Upgraded,
		"duration":   report.Duration.String(),
	}).Info("Odds refresh complete")

	return report, nil
}

// HandleStreamUpdate records one pushed odds update as a snapshot and
// ratchets predictions in its category. Wired as an oddsfeed.UpdateHandler.
func (s *OddsRefreshService) HandleStreamUpdate(ctx context.Context, year int) oddsfeed.UpdateHandler {
	return func(update oddsfeed.OddsUpdate) error {
		snapshotTime := time.Unix(update.Timestamp, 0).UTC()
		if update.Timestamp == 0 {
			snapshotTime = time.Now().UTC()
		}

		snapshot := &models.OddsSnapshot{
			CategoryID:   update.CategoryID,
			NomineeID:    update.NomineeID,
			NomineeName:  update.Name,
			SnapshotTime: snapshotTime,
		}
		if update.Film != nil {
			snapshot.NomineeFilm = *update.Film
		}
		if update.WinProbability != nil {
			v := *update.WinProbability
			snapshot.OddsPercentage = &v
		}

		if err := s.oddsRepo.Insert(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to store streamed snapshot: %w", err)
		}
		metrics.RecordSnapshots(1)

		baseID := models.NormalizeCategoryID(update.CategoryID)
		if _, err := s.predictionService.UpgradeAllPredictionsForCategory(ctx, baseID, year); err != nil {
			return fmt.Errorf("upgrade sweep failed for category %s: %w", baseID, err)
		}

		return nil
	}
}
