package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gold-envelope/internal/models"
)

func newSubmissionService() (*SubmissionService, *scoreServiceMocks) {
	scoreSvc, m := newScoreService()
	return NewSubmissionService(m.members, scoreSvc, quietLogger()), m
}

func TestGetPoolSubmissions(t *testing.T) {
	svc, m := newSubmissionService()
	poolID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	setupScoredPool(m, poolID, alice, bob)

	submissions, err := svc.GetPoolSubmissions(context.Background(), poolID)
	require.NoError(t, err)
	require.Len(t, submissions, 2)

	assert.Equal(t, alice, submissions[0].UserID)
	assert.Equal(t, 3.0, submissions[0].EarnedPoints)
	assert.Equal(t, 5.0, submissions[0].PossiblePoints)
	assert.Equal(t, 1, submissions[0].CorrectCount)
	assert.True(t, submissions[0].Complete)

	assert.Equal(t, bob, submissions[1].UserID)
	assert.Equal(t, 1, submissions[1].FilledCount)
	assert.False(t, submissions[1].Complete)
}

// Ballot numbers follow join order, not rank. The second joiner stays
// "Ballot #2" even when they lead the pool.
func TestSubmissionFallbackNamesFollowJoinOrder(t *testing.T) {
	svc, m := newSubmissionService()
	ctx := context.Background()
	poolID, first, second := uuid.New(), uuid.New(), uuid.New()

	m.pools.On("GetByID", ctx, poolID).Return(&models.Pool{ID: poolID, Year: 2026}, nil)
	m.pools.On("GetSettings", ctx, poolID).Return(&models.PoolSettings{PoolID: poolID}, nil)
	m.categories.On("GetByYear", ctx, 2026).Return([]*models.Category{
		{BaseID: "best-picture", Year: 2026, DefaultPoints: 3},
	}, nil)
	m.winners.On("GetByPool", ctx, poolID).Return([]*models.ActualWinner{
		{PoolID: poolID, CategoryID: "best-picture-2026", NomineeID: "film-a"},
	}, nil)
	m.predictions.On("GetByPool", ctx, poolID).Return([]*models.Prediction{
		{PoolID: poolID, UserID: second, CategoryID: "best-picture", NomineeID: "film-a"},
	}, nil)
	m.members.On("GetByPool", ctx, poolID).Return([]*models.PoolMember{
		{PoolID: poolID, UserID: first},
		{PoolID: poolID, UserID: second, HasPaid: true},
	}, nil)

	submissions, err := svc.GetPoolSubmissions(ctx, poolID)
	require.NoError(t, err)
	require.Len(t, submissions, 2)

	assert.Equal(t, "Ballot #2", submissions[0].DisplayName)
	assert.True(t, submissions[0].HasPaid)
	assert.Equal(t, "Ballot #1", submissions[1].DisplayName)
}

func TestSubmissionChosenNameWins(t *testing.T) {
	svc, m := newSubmissionService()
	ctx := context.Background()
	poolID, userID := uuid.New(), uuid.New()
	name := "Popcorn Prophet"

	m.pools.On("GetByID", ctx, poolID).Return(&models.Pool{ID: poolID, Year: 2026}, nil)
	m.pools.On("GetSettings", ctx, poolID).Return(&models.PoolSettings{PoolID: poolID}, nil)
	m.categories.On("GetByYear", ctx, 2026).Return([]*models.Category{}, nil)
	m.winners.On("GetByPool", ctx, poolID).Return([]*models.ActualWinner{}, nil)
	m.predictions.On("GetByPool", ctx, poolID).Return([]*models.Prediction{}, nil)
	m.members.On("GetByPool", ctx, poolID).Return([]*models.PoolMember{
		{PoolID: poolID, UserID: userID, SubmissionName: &name},
	}, nil)

	submissions, err := svc.GetPoolSubmissions(ctx, poolID)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, name, submissions[0].DisplayName)
	// Zero categories never counts as a complete ballot.
	assert.False(t, submissions[0].Complete)
}

// The overview is shared with the whole pool, so its JSON must never carry
// contact details.
func TestSubmissionJSONHasNoContactFields(t *testing.T) {
	raw, err := json.Marshal(&Submission{DisplayName: "Ballot #1"})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "email")
	assert.NotContains(t, fields, "phone")
	assert.Contains(t, fields, "display_name")
}
