// Package main provides the one-shot odds synchronization CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gold-envelope/internal/config"
	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/logger"
	"github.com/yourusername/gold-envelope/internal/oddsfeed"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/service"
)

var (
	configFile string
	year       int
	category   string
	sweepOnly  bool

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVarP(&year, "year", "y", 0, "Ceremony year (defaults to app.award_year)")
	rootCmd.Flags().StringVar(&category, "category", "", "Limit the ratchet sweep to one base category")
	rootCmd.Flags().BoolVar(&sweepOnly, "sweep-only", false, "Skip the feed fetch and only run the ratchet sweep")
}

var rootCmd = &cobra.Command{
	Use:   "odds-sync",
	Short: "Fetch current odds and ratchet predictions",
	Long: `Pulls current nominee odds from the configured feed, appends one
snapshot per nominee, and upgrades stored prediction odds where the market
has moved in the picker's favor.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func run(ctx context.Context) error {
	if year == 0 {
		year = cfg.App.AwardYear
	}

	predictionSvc := service.NewPredictionService(
		repos.Prediction, repos.Odds, repos.Pool, repos.Member, repos.Winner, appLog)

	if sweepOnly {
		return runSweep(ctx, predictionSvc)
	}

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

	refreshSvc := service.NewOddsRefreshService(feedClient, repos.Odds, predictionSvc, appLog)

	report, err := refreshSvc.RefreshOdds(ctx, year)
	if err != nil {
		return err
	}

	fmt.Printf("Odds sync complete: %d categories, %d snapshots, %d picks upgraded (%s)\n",
		report.Categories, report.Snapshots, report.Upgraded, report.Duration.Round(time.Millisecond))

	return nil
}

func runSweep(ctx context.Context, predictionSvc *service.PredictionService) error {
	categories := []string{category}
	if category == "" {
		loaded, err := repos.Category.GetByYear(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		categories = categories[:0]
		for _, c := range loaded {
			categories = append(categories, c.BaseID)
		}
	}

	total := &service.UpgradeReport{}
	for _, baseID := range categories {
		report, err := predictionSvc.UpgradeAllPredictionsForCategory(ctx, baseID, year)
		if err != nil {
			return fmt.Errorf("sweep failed for category %s: %w", baseID, err)
		}
		total.Checked += report.Checked
		total.Upgraded += report.Upgraded
		total.Failed += report.Failed
	}

	fmt.Printf("Sweep complete: %d checked, %d upgraded, %d failed\n",
		total.Checked, total.Upgraded, total.Failed)

	return nil
}
