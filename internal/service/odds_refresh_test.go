package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/oddsfeed"
)

func newRefreshService() (*OddsRefreshService, *MockOddsSource, *MockOddsRepository, *MockPredictionRepository) {
	source := &MockOddsSource{}
	odds := &MockOddsRepository{}
	predictions := &MockPredictionRepository{}

	predictionSvc := NewPredictionService(predictions, odds,
		&MockPoolRepository{}, &MockMemberRepository{}, &MockWinnerRepository{}, quietLogger())
	svc := NewOddsRefreshService(source, odds, predictionSvc, quietLogger())
	return svc, source, odds, predictions
}

func TestRefreshOddsDisabledSource(t *testing.T) {
	svc, source, odds, _ := newRefreshService()

	source.On("IsEnabled").Return(false)

	report, err := svc.RefreshOdds(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Snapshots)
	source.AssertNotCalled(t, "FetchOdds", mock.Anything, mock.Anything)
	odds.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestRefreshOddsStoresSnapshotsAndSweeps(t *testing.T) {
	svc, source, odds, predictions := newRefreshService()
	ctx := context.Background()
	film := "The Long Take"
	prob := 42.5

	source.On("IsEnabled").Return(true)
	source.On("FetchOdds", ctx, 2026).Return([]oddsfeed.CategoryOdds{
		{
			CategoryID: "best-picture-2026",
			Nominees: []oddsfeed.NomineeOdds{
				{NomineeID: "film-a", Name: "Film A", Film: &film, WinProbability: &prob},
				{NomineeID: "film-b", Name: "Film B"},
			},
		},
	}, nil)
	odds.On("InsertBatch", ctx, mock.MatchedBy(func(snapshots []*models.OddsSnapshot) bool {
		if len(snapshots) != 2 {
			return false
		}
		priced := snapshots[0]
		return priced.CategoryID == "best-picture-2026" &&
			priced.OddsPercentage != nil && *priced.OddsPercentage == prob &&
			snapshots[1].OddsPercentage == nil
	})).Return(nil)

	// Sweep runs on the base category id after the batch insert.
	predictions.On("GetUnlockedByCategory", ctx, "best-picture", 2026).
		Return([]*models.Prediction{}, nil)

	report, err := svc.RefreshOdds(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Categories)
	assert.Equal(t, 2, report.Snapshots)
	predictions.AssertExpectations(t)
}

func TestRefreshOddsFeedError(t *testing.T) {
	svc, source, odds, _ := newRefreshService()
	ctx := context.Background()

	source.On("IsEnabled").Return(true)
	source.On("FetchOdds", ctx, 2026).Return(nil, errors.New("upstream down"))

	_, err := svc.RefreshOdds(ctx, 2026)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock_source")
	odds.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestHandleStreamUpdate(t *testing.T) {
	svc, _, odds, predictions := newRefreshService()
	ctx := context.Background()
	prob := 33.0

	odds.On("Insert", ctx, mock.MatchedBy(func(s *models.OddsSnapshot) bool {
		return s.CategoryID == "best-director-2026" &&
			s.NomineeID == "director-x" &&
			s.OddsPercentage != nil && *s.OddsPercentage == prob &&
			!s.SnapshotTime.IsZero()
	})).Return(nil)
	predictions.On("GetUnlockedByCategory", ctx, "best-director", 2026).
		Return([]*models.Prediction{}, nil)

	handler := svc.HandleStreamUpdate(ctx, 2026)
	err := handler(oddsfeed.OddsUpdate{
		CategoryID:     "best-director-2026",
		NomineeID:      "director-x",
		Name:           "Director X",
		WinProbability: &prob,
	})
	require.NoError(t, err)
	odds.AssertExpectations(t)
	predictions.AssertExpectations(t)
}

func TestHandleStreamUpdateInsertFailure(t *testing.T) {
	svc, _, odds, predictions := newRefreshService()
	ctx := context.Background()

	odds.On("Insert", ctx, mock.AnythingOfType("*models.OddsSnapshot")).
		Return(errors.New("connection reset"))

	handler := svc.HandleStreamUpdate(ctx, 2026)
	err := handler(oddsfeed.OddsUpdate{CategoryID: "best-picture-2026", NomineeID: "film-a"})
	require.Error(t, err)
	predictions.AssertNotCalled(t, "GetUnlockedByCategory", mock.Anything, mock.Anything, mock.Anything)
}
