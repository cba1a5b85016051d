//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/repository"
)

const skipIntegration = "Skipping integration test in short mode"

func floatPtr(v float64) *float64 { return &v }

// seedPool inserts a pool with two members and two categories for the given
// year and returns the pool id plus the member ids in join order.
func seedPool(t *testing.T, ctx context.Context, db *database.DB, year int) (uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()

	poolID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	pool := db.GetPool()
	_, err := pool.Exec(ctx,
		`INSERT INTO pools (id, name, year, owner_id) VALUES ($1, $2, $3, $4)`,
		poolID, "Integration Pool", year, alice)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO pool_members (pool_id, user_id, joined_at) VALUES ($1, $2, $3), ($1, $4, $5)`,
		poolID, alice, time.Now().Add(-time.Hour), bob, time.Now())
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO categories (base_id, year, name, default_points)
		 VALUES ('best-picture', $1, 'Best Picture', 3), ('best-director', $1, 'Best Director', 2)
		 ON CONFLICT (base_id, year) DO NOTHING`,
		year)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM pools WHERE id = $1`, poolID)
	})

	return poolID, alice, bob
}

// TestWinnerLockEnforcement verifies the lock is enforced in SQL, not just in
// service code: once a winner row exists, upserts, odds updates, and deletes
// for that category all refuse to touch the ballot.
func TestWinnerLockEnforcement(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	poolID, alice, _ := seedPool(t, ctx, db, 2026)

	pick := &models.Prediction{
		PoolID:                 poolID,
		UserID:                 alice,
		CategoryID:             "best-picture",
		NomineeID:              "film-a",
		OddsPercentage:         floatPtr(40),
		OriginalOddsPercentage: floatPtr(40),
	}
	require.NoError(t, repos.Prediction.UpsertIfUnlocked(ctx, pick))

	// Announce the winner with a year-suffixed id; the lock predicate has
	// to normalize it against the base id predictions use.
	require.NoError(t, repos.Winner.Upsert(ctx, &models.ActualWinner{
		PoolID:     poolID,
		CategoryID: "best-picture-2026",
		NomineeID:  "film-b",
		EnteredBy:  alice,
	}))

	err = repos.Prediction.UpsertIfUnlocked(ctx, &models.Prediction{
		PoolID:     poolID,
		UserID:     alice,
		CategoryID: "best-picture",
		NomineeID:  "film-c",
	})
	assert.ErrorIs(t, err, models.ErrBallotLocked)

	updated, err := repos.Prediction.UpdateOddsIfUnlocked(ctx, poolID, alice, "best-picture", 20)
	require.NoError(t, err)
	assert.False(t, updated)

	deleted, err := repos.Prediction.DeleteUnlockedForUser(ctx, poolID, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	// The locked pick survives with its odds intact.
	kept, err := repos.Prediction.Get(ctx, poolID, alice, "best-picture")
	require.NoError(t, err)
	assert.Equal(t, "film-a", kept.NomineeID)
	assert.Equal(t, 40.0, *kept.OddsPercentage)
}

// TestDeleteSkipsLockedCategories verifies the deleted count excludes locked
// rows so the service can report how many picks the lock kept.
func TestDeleteSkipsLockedCategories(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	poolID, alice, _ := seedPool(t, ctx, db, 2026)

	for _, categoryID := range []string{"best-picture", "best-director"} {
		require.NoError(t, repos.Prediction.UpsertIfUnlocked(ctx, &models.Prediction{
			PoolID:     poolID,
			UserID:     alice,
			CategoryID: categoryID,
			NomineeID:  "nominee-x",
		}))
	}

	require.NoError(t, repos.Winner.Upsert(ctx, &models.ActualWinner{
		PoolID:     poolID,
		CategoryID: "best-picture",
		NomineeID:  "nominee-x",
		EnteredBy:  alice,
	}))

	deleted, err := repos.Prediction.DeleteUnlockedForUser(ctx, poolID, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

// TestOddsStoreAppendOnly verifies that repeated inserts accumulate history
// and that reads resolve the latest and at-time snapshots correctly.
func TestOddsStoreAppendOnly(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	categoryID := "best-picture-" + uuid.NewString()[:8]
	base := time.Now().Add(-10 * time.Hour).UTC()

	for i := 0; i < 10; i++ {
		require.NoError(t, repos.Odds.Insert(ctx, &models.OddsSnapshot{
			CategoryID:     categoryID,
			NomineeID:      "film-a",
			OddsPercentage: floatPtr(float64(50 - i)),
			SnapshotTime:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	latest, err := repos.Odds.GetLatest(ctx, categoryID, "film-a")
	require.NoError(t, err)
	assert.Equal(t, 41.0, *latest.OddsPercentage)

	// At-time read resolves the snapshot in effect five hours in.
	at, err := repos.Odds.GetAtTime(ctx, categoryID, "film-a", base.Add(5*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 45.0, *at.OddsPercentage)

	series, err := repos.Odds.GetTimeSeries(ctx, categoryID, "film-a", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, series, 10)
	assert.True(t, series[0].SnapshotTime.Before(series[len(series)-1].SnapshotTime))
}

// TestGetLatestForPairsBatch verifies the single-query latest-per-pair read
// the upgrade sweep depends on.
func TestGetLatestForPairsBatch(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	categoryID := "best-director-" + uuid.NewString()[:8]
	now := time.Now().UTC()

	for _, row := range []struct {
		nominee string
		odds    float64
		offset  time.Duration
	}{
		{"director-x", 30, -2 * time.Hour},
		{"director-x", 25, -1 * time.Hour},
		{"director-y", 10, -2 * time.Hour},
	} {
		require.NoError(t, repos.Odds.Insert(ctx, &models.OddsSnapshot{
			CategoryID:     categoryID,
			NomineeID:      row.nominee,
			OddsPercentage: floatPtr(row.odds),
			SnapshotTime:   now.Add(row.offset),
		}))
	}

	latest, err := repos.Odds.GetLatestForPairs(ctx, []models.CategoryNominee{
		{CategoryID: categoryID, NomineeID: "director-x"},
		{CategoryID: categoryID, NomineeID: "director-y"},
		{CategoryID: categoryID, NomineeID: "never-priced"},
	})
	require.NoError(t, err)

	require.Contains(t, latest, models.CategoryNominee{CategoryID: categoryID, NomineeID: "director-x"})
	assert.Equal(t, 25.0, *latest[models.CategoryNominee{CategoryID: categoryID, NomineeID: "director-x"}].OddsPercentage)
	assert.NotContains(t, latest, models.CategoryNominee{CategoryID: categoryID, NomineeID: "never-priced"})
}

// TestSettingsFreezeAfterWinner verifies the settings write path refuses once
// any winner exists in the pool.
func TestSettingsFreezeAfterWinner(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	poolID, alice, _ := seedPool(t, ctx, db, 2026)

	settings := &models.PoolSettings{
		PoolID:                poolID,
		CategoryPoints:        map[string]int{"best-picture": 5},
		OddsMultiplierEnabled: true,
		OddsMultiplierFormula: "linear",
	}
	require.NoError(t, repos.Pool.UpdateSettingsIfUnfrozen(ctx, settings))

	require.NoError(t, repos.Winner.Upsert(ctx, &models.ActualWinner{
		PoolID:     poolID,
		CategoryID: "best-director",
		NomineeID:  "director-x",
		EnteredBy:  alice,
	}))

	err = repos.Pool.UpdateSettingsIfUnfrozen(ctx, settings)
	assert.ErrorIs(t, err, models.ErrSettingsFrozen)
}

// TestMemberJoinOrder verifies GetByPool returns members oldest-first; the
// ordering is load-bearing for ballot numbering and scoring tie-breaks.
func TestMemberJoinOrder(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	poolID, alice, bob := seedPool(t, ctx, db, 2026)

	members, err := repos.Member.GetByPool(ctx, poolID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, alice, members[0].UserID)
	assert.Equal(t, bob, members[1].UserID)
}

// TestConcurrentPickWrites verifies concurrent upserts on distinct categories
// all land under pool load.
func TestConcurrentPickWrites(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	poolID, alice, bob := seedPool(t, ctx, db, 2026)

	var wg sync.WaitGroup
	users := []uuid.UUID{alice, bob}
	categories := []string{"best-picture", "best-director"}

	for _, userID := range users {
		for _, categoryID := range categories {
			wg.Add(1)
			go func(userID uuid.UUID, categoryID string) {
				defer wg.Done()
				err := repos.Prediction.UpsertIfUnlocked(ctx, &models.Prediction{
					PoolID:     poolID,
					UserID:     userID,
					CategoryID: categoryID,
					NomineeID:  "nominee-z",
				})
				assert.NoError(t, err)
			}(userID, categoryID)
		}
	}
	wg.Wait()

	all, err := repos.Prediction.GetByPool(ctx, poolID)
	require.NoError(t, err)
	assert.Len(t, all, len(users)*len(categories))
}
