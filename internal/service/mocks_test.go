package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/gold-envelope/internal/models"
	"github.com/yourusername/gold-envelope/internal/oddsfeed"
)

// MockOddsRepository mocks repository.OddsRepository
type MockOddsRepository struct {
	mock.Mock
}

func (m *MockOddsRepository) Insert(ctx context.Context, snapshot *models.OddsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockOddsRepository) InsertBatch(ctx context.Context, snapshots []*models.OddsSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockOddsRepository) GetLatest(ctx context.Context, categoryID, nomineeID string) (*models.OddsSnapshot, error) {
	args := m.Called(ctx, categoryID, nomineeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OddsSnapshot), args.Error(1)
}

func (m *MockOddsRepository) GetAtTime(ctx context.Context, categoryID, nomineeID string, at time.Time) (*models.OddsSnapshot, error) {
	args := m.Called(ctx, categoryID, nomineeID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OddsSnapshot), args.Error(1)
}

func (m *MockOddsRepository) GetLatestForPairs(ctx context.Context, pairs []models.CategoryNominee) (map[models.CategoryNominee]*models.OddsSnapshot, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.CategoryNominee]*models.OddsSnapshot), args.Error(1)
}

func (m *MockOddsRepository) GetTimeSeries(ctx context.Context, categoryID, nomineeID string, start, end time.Time) ([]*models.OddsSnapshot, error) {
	args := m.Called(ctx, categoryID, nomineeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OddsSnapshot), args.Error(1)
}

// MockPredictionRepository mocks repository.PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Get(ctx context.Context, poolID, userID uuid.UUID, categoryID string) (*models.Prediction, error) {
	args := m.Called(ctx, poolID, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetByPoolAndUser(ctx context.Context, poolID, userID uuid.UUID) ([]*models.Prediction, error) {
	args := m.Called(ctx, poolID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Prediction, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetUnlockedByCategory(ctx context.Context, baseCategoryID string, year int) ([]*models.Prediction, error) {
	args := m.Called(ctx, baseCategoryID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) UpsertIfUnlocked(ctx context.Context, prediction *models.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionRepository) UpdateOddsIfUnlocked(ctx context.Context, poolID, userID uuid.UUID, categoryID string, odds float64) (bool, error) {
	args := m.Called(ctx, poolID, userID, categoryID, odds)
	return args.Bool(0), args.Error(1)
}

func (m *MockPredictionRepository) DeleteUnlockedForUser(ctx context.Context, poolID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, poolID, userID)
	return args.Int(0), args.Error(1)
}

// MockCategoryRepository mocks repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetByYear(ctx context.Context, year int) ([]*models.Category, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, baseID string, year int) (*models.Category, error) {
	args := m.Called(ctx, baseID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// MockPoolRepository mocks repository.PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetSettings(ctx context.Context, poolID uuid.UUID) (*models.PoolSettings, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PoolSettings), args.Error(1)
}

func (m *MockPoolRepository) UpdateSettingsIfUnfrozen(ctx context.Context, settings *models.PoolSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockMemberRepository mocks repository.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.PoolMember, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PoolMember), args.Error(1)
}

func (m *MockMemberRepository) IsMember(ctx context.Context, poolID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poolID, userID)
	return args.Bool(0), args.Error(1)
}

// MockWinnerRepository mocks repository.WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) GetByPool(ctx context.Context, poolID uuid.UUID) ([]*models.ActualWinner, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActualWinner), args.Error(1)
}

func (m *MockWinnerRepository) HasWinner(ctx context.Context, poolID uuid.UUID, baseCategoryID string) (bool, error) {
	args := m.Called(ctx, poolID, baseCategoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWinnerRepository) AnyWinner(ctx context.Context, poolID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poolID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWinnerRepository) Upsert(ctx context.Context, winner *models.ActualWinner) error {
	args := m.Called(ctx, winner)
	return args.Error(0)
}

// MockOddsSource mocks oddsfeed.OddsSource
type MockOddsSource struct {
	mock.Mock
}

func (m *MockOddsSource) FetchOdds(ctx context.Context, year int) ([]oddsfeed.CategoryOdds, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oddsfeed.CategoryOdds), args.Error(1)
}

func (m *MockOddsSource) FetchCategoryOdds(ctx context.Context, categoryID string) (*oddsfeed.CategoryOdds, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oddsfeed.CategoryOdds), args.Error(1)
}

func (m *MockOddsSource) Name() string {
	return "mock_source"
}

func (m *MockOddsSource) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
