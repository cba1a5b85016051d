// Package main provides the pool standings CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gold-envelope/internal/config"
	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/repository"
	"github.com/yourusername/gold-envelope/internal/service"
)

var (
	configFile string
	byPossible bool

	cfg   *config.Config
	db    *database.DB
	repos *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&byPossible, "by-possible", false, "Order by possible points instead of earned score")
}

var rootCmd = &cobra.Command{
	Use:   "standings <pool-id>",
	Short: "Print the leaderboard for a pool",
	Long: `Scores every ballot in the pool and prints the leaderboard. With
--by-possible the rows are ordered by what each member can still reach
rather than by points already earned.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		db, err = database.NewDB(cmd.Context(), &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		poolID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid pool id %q: %w", args[0], err)
		}
		return printStandings(cmd.Context(), poolID)
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

func printStandings(ctx context.Context, poolID uuid.UUID) error {
	quiet := logrus.New()
	quiet.SetLevel(logrus.WarnLevel)

	scoreSvc := service.NewScoreService(
		repos.Pool, repos.Category, repos.Winner, repos.Prediction, repos.Member, quiet)
	submissionSvc := service.NewSubmissionService(repos.Member, scoreSvc, quiet)

	pool, err := repos.Pool.GetByID(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to load pool: %w", err)
	}

	submissions, err := submissionSvc.GetPoolSubmissions(ctx, poolID)
	if err != nil {
		return err
	}

	if byPossible {
		result, err := scoreSvc.GetStandings(ctx, poolID)
		if err != nil {
			return err
		}
		order := make(map[uuid.UUID]int, len(result.Scores))
		for i, score := range result.Scores {
			order[score.UserID] = i
		}
		sortSubmissions(submissions, order)
	}

	fmt.Printf("%s (%d) - %d ballots\n\n", pool.Name, pool.Year, len(submissions))
	fmt.Printf("%-4s %-28s %8s %10s %9s %6s\n", "#", "Ballot", "Earned", "Possible", "Correct", "Paid")

	for i, sub := range submissions {
		paid := ""
		if sub.HasPaid {
			paid = "yes"
		}
		fmt.Printf("%-4d %-28s %8.1f %10.1f %5d/%-3d %6s\n",
			i+1, sub.DisplayName, sub.EarnedPoints, sub.PossiblePoints,
			sub.CorrectCount, sub.FilledCount, paid)
	}

	return nil
}

// sortSubmissions reorders submissions to match a standings ranking.
func sortSubmissions(submissions []*service.Submission, order map[uuid.UUID]int) {
	sort.SliceStable(submissions, func(i, j int) bool {
		return order[submissions[i].UserID] < order[submissions[j].UserID]
	})
}
