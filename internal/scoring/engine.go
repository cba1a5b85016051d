package scoring

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/gold-envelope/internal/models"
)

// Input bundles everything the engine needs to score one pool. Members must
// be ordered by join time; that order is the stable tie-break for equal
// scores. All inputs are treated as already-validated reference data.
type Input struct {
	Settings    *models.PoolSettings
	Categories  []*models.Category
	Winners     []*models.ActualWinner
	Predictions []*models.Prediction
	Members     []*models.PoolMember
}

// CategoryBreakdown is the per-category display entry recorded for every
// prediction a user holds, whether correct or not.
type CategoryBreakdown struct {
	CategoryID      string   `json:"category_id"`
	NomineeID       string   `json:"nominee_id"`
	OddsPercentage  *float64 `json:"odds_percentage"`
	Multiplier      float64  `json:"multiplier"`
	BasePoints      int      `json:"base_points"`
	WinnerAnnounced bool     `json:"winner_announced"`
	Correct         bool     `json:"correct"`
	EarnedPoints    float64  `json:"earned_points"`
	PossiblePoints  float64  `json:"possible_points"`
}

// UserScore aggregates one member's realized and potential points.
type UserScore struct {
	UserID         uuid.UUID           `json:"user_id"`
	Score          float64             `json:"score"`
	PossiblePoints float64             `json:"possible_points"`
	CorrectCount   int                 `json:"correct_count"`
	FilledCount    int                 `json:"filled_count"`
	Breakdown      []CategoryBreakdown `json:"breakdown"`
}

// Result is the scored view of a pool.
type Result struct {
	Scores          []*UserScore `json:"scores"`
	TotalCategories int          `json:"total_categories"`
}

// CalculateScores computes realized scores and possible points for every
// member of a pool. The earned/possible semantics live in one place here;
// the leaderboard, standings, and submissions views all consume this output
// so they cannot drift apart.
//
// Per category, per user:
//   - winner announced: points are earned only on a correct pick, and
//     whatever is earned is also all that remains possible;
//   - no winner yet: the pick's full potential counts as possible and
//     nothing as earned. A user with no pick in an unresolved category
//     contributes zero possible points for it.
func CalculateScores(in Input) *Result {
	formula := ParseFormula("")
	multiplierEnabled := false
	if in.Settings != nil {
		formula = ParseFormula(in.Settings.OddsMultiplierFormula)
		multiplierEnabled = in.Settings.OddsMultiplierEnabled
	}

	categories := make(map[string]*models.Category, len(in.Categories))
	for _, c := range in.Categories {
		categories[c.BaseID] = c
	}

	winners := make(map[string]string, len(in.Winners))
	for _, w := range in.Winners {
		winners[w.BaseCategoryID()] = w.NomineeID
	}

	predictionsByUser := make(map[uuid.UUID][]*models.Prediction, len(in.Members))
	for _, p := range in.Predictions {
		predictionsByUser[p.UserID] = append(predictionsByUser[p.UserID], p)
	}

	basePointsFor := func(baseID string) int {
		category := categories[baseID]
		if in.Settings != nil {
			return in.Settings.BasePointsFor(category)
		}
		if category == nil {
			return 0
		}
		return category.DefaultPoints
	}

	scores := make([]*UserScore, 0, len(in.Members))
	for _, member := range in.Members {
		user := &UserScore{UserID: member.UserID}

		preds := predictionsByUser[member.UserID]
		// Deterministic breakdown order for display.
		sort.SliceStable(preds, func(i, j int) bool {
			return preds[i].CategoryID < preds[j].CategoryID
		})

		for _, pred := range preds {
			baseID := models.NormalizeCategoryID(pred.CategoryID)
			basePoints := basePointsFor(baseID)

			mult := 1.0
			if multiplierEnabled && pred.HasOdds() {
				mult = Multiplier(*pred.OddsPercentage, formula)
			}

			entry := CategoryBreakdown{
				CategoryID:     baseID,
				NomineeID:      pred.NomineeID,
				OddsPercentage: pred.OddsPercentage,
				Multiplier:     mult,
				BasePoints:     basePoints,
			}

			winnerNominee, announced := winners[baseID]
			entry.WinnerAnnounced = announced

			potential := float64(basePoints) * mult
			if announced {
				if pred.NomineeID == winnerNominee {
					entry.Correct = true
					entry.EarnedPoints = potential
					entry.PossiblePoints = potential
					user.Score += potential
					user.PossiblePoints += potential
					user.CorrectCount++
				}
			} else {
				entry.PossiblePoints = potential
				user.PossiblePoints += potential
			}

			user.FilledCount++
			user.Breakdown = append(user.Breakdown, entry)
		}

		scores = append(scores, user)
	}

	// Descending by score; ties keep member join order.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return &Result{
		Scores:          scores,
		TotalCategories: len(in.Categories),
	}
}

// SortStandings orders user scores for the standings view: possible points
// descending, tie-broken by current earned score descending. The sort is
// stable, so remaining ties keep their existing order.
func SortStandings(scores []*UserScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].PossiblePoints != scores[j].PossiblePoints {
			return scores[i].PossiblePoints > scores[j].PossiblePoints
		}
		return scores[i].Score > scores[j].Score
	})
}

// Round1 rounds a point total to one decimal place for display.
func Round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
