// Package main provides the entry point for the pool service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/config"
	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/health"
	"github.com/yourusername/gold-envelope/internal/logger"
	"github.com/yourusername/gold-envelope/internal/metrics"
	"github.com/yourusername/gold-envelope/internal/oddsfeed"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/scheduler"
	"github.com/yourusername/gold-envelope/internal/service"
	"github.com/yourusername/gold-envelope/internal/tracing"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"award_year":  cfg.App.AwardYear,
		"version":     Version,
	}).Info("Gold Envelope pool service starting")

	// Initialize distributed tracing
	if err := tracing.Initialize(tracing.Config{
		ServiceName:  cfg.App.Name,
		Enabled:      cfg.Tracing.Enabled,
		SamplingRate: cfg.Tracing.SamplingRate,
		DaemonAddr:   cfg.Tracing.DaemonAddr,
	}, appLog); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize tracing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Initialize odds feed client
	httpClient := oddsfeed.NewRateLimitedHTTPClient(oddsfeed.HTTPClientConfig{
		Timeout:           time.Duration(cfg.OddsFeed.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.OddsFeed.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.OddsFeed.RateLimit,
		CircuitBreakerMax: 5,
	}, appLog)
	defer httpClient.Close()

	feedClient := oddsfeed.NewClient(httpClient, oddsfeed.ClientConfig{
		BaseURL:  cfg.OddsFeed.BaseURL,
		APIKey:   cfg.OddsFeed.APIKey,
		Enabled:  cfg.OddsFeed.Enabled,
		CacheTTL: time.Duration(cfg.OddsFeed.CacheTTLSeconds) * time.Second,
	}, appLog)

	// Initialize services
	predictionSvc := service.NewPredictionService(
		repos.Prediction, repos.Odds, repos.Pool, repos.Member, repos.Winner, appLog)
	refreshSvc := service.NewOddsRefreshService(feedClient, repos.Odds, predictionSvc, appLog)

	// Initialize metrics
	var metricsHandler = metrics.Handler()
	if !cfg.Metrics.Enabled {
		metricsHandler = nil
	}

	// Start health server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        healthPort(cfg),
		Logger:      appLog,
		DB:          db,
		Metrics:     metricsHandler,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Schedule periodic jobs
	sched := scheduler.NewScheduler(
		refreshSvc,
		predictionSvc,
		repos.Category,
		time.Duration(cfg.Schedule.RefreshTimeoutSeconds)*time.Second,
		appLog,
	)
	if err := sched.ScheduleOddsRefresh(cfg.Schedule.OddsRefreshCron, cfg.App.AwardYear); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule odds refresh")
	}
	if err := sched.ScheduleUpgradeSweep(cfg.Schedule.UpgradeSweepCron, cfg.App.AwardYear); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule upgrade sweep")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Connect the odds push stream when configured
	var stream *oddsfeed.StreamClient
	if cfg.OddsFeed.StreamEnabled {
		stream = oddsfeed.NewStreamClient(cfg.OddsFeed.StreamURL, cfg.OddsFeed.APIKey, appLog)
		stream.AddHandler(refreshSvc.HandleStreamUpdate(ctx, cfg.App.AwardYear))
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Odds stream stopped")
			}
		}()
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"feed_enabled":   cfg.OddsFeed.Enabled,
		"stream_enabled": cfg.OddsFeed.StreamEnabled,
		"next_run":       sched.GetNextRun().Format(time.RFC3339),
	}).Info("Pool service running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig.String()).Info("Shutdown signal received")

	// Graceful shutdown
	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			appLog.WithError(err).Error("Error closing odds stream")
		}
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error shutting down health server")
	}

	appLog.Info("Gold Envelope pool service shut down")
}

func healthPort(cfg *config.Config) string {
	if cfg.Health.Port != "" {
		return cfg.Health.Port
	}
	if cfg.Metrics.Enabled {
		return strconv.Itoa(cfg.Metrics.Port)
	}
	return ""
}
