// Package scheduler runs the periodic odds refresh and ratchet sweep jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/service"
	"github.com/yourusername/gold-envelope/internal/tracing"
)

// Scheduler manages the periodic odds refresh and upgrade sweep jobs
type Scheduler struct {
	cron            *cron.Cron
	refreshSvc      *service.OddsRefreshService
	predictionSvc   *service.PredictionService
	categoryRepo    repository.CategoryRepository
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	refreshTimeout  time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(
	refreshSvc *service.OddsRefreshService,
	predictionSvc *service.PredictionService,
	categoryRepo repository.CategoryRepository,
	refreshTimeout time.Duration,
	logger *logrus.Logger,
) *Scheduler {
	if refreshTimeout <= 0 {
		refreshTimeout = 5 * time.Minute
	}

	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		refreshSvc:      refreshSvc,
		predictionSvc:   predictionSvc,
		categoryRepo:    categoryRepo,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		refreshTimeout:  refreshTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleOddsRefresh schedules the feed poll for a ceremony year
func (s *Scheduler) ScheduleOddsRefresh(cronExpression string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		err := tracing.Capture(ctx, "odds_refresh", func(ctx context.Context) error {
			report, err := s.refreshSvc.RefreshOdds(ctx, year)
			if err != nil {
				return err
			}

			s.logger.WithFields(logrus.Fields{
				"categories": report.Categories,
				"snapshots":  report.Snapshots,
				"upgraded":   report.Upgraded,
			}).Debug("Scheduled odds refresh complete")
			return nil
		})
		if err != nil {
			s.logger.WithError(err).Error("Scheduled odds refresh failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add odds refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
		"year": year,
	}).Info("Scheduled odds refresh job")

	return nil
}

// ScheduleUpgradeSweep schedules a safety-net ratchet pass over every
// category of the year. The per-refresh sweep normally catches everything;
// this covers snapshots written outside the refresh path, like the stream.
func (s *Scheduler) ScheduleUpgradeSweep(cronExpression string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		start := time.Now()
		categories, err := s.categoryRepo.GetByYear(ctx, year)
		if err != nil {
			s.logger.WithError(err).Error("Upgrade sweep failed to load categories")
			return
		}

		total := &service.UpgradeReport{}
		for _, category := range categories {
			report, err := s.predictionSvc.UpgradeAllPredictionsForCategory(ctx, category.BaseID, year)
			if err != nil {
				s.logger.WithError(err).WithField("category_id", category.BaseID).
					Error("Upgrade sweep failed for category")
				continue
			}
			total.Checked += report.Checked
			total.Upgraded += report.Upgraded
			total.Failed += report.Failed
		}

		metrics.UpgradeSweepDuration.Observe(time.Since(start).Seconds())
		s.logger.WithFields(logrus.Fields{
			"categories": len(categories),
			"checked":    total.Checked,
			"upgraded":   total.Upgraded,
			"failed":     total.Failed,
		}).Info("Scheduled upgrade sweep complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add upgrade sweep job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
		"year": year,
	}).Info("Scheduled upgrade sweep job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
