package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/verify-api/internal/pkg/errors"
)

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func createTestStatsService(codeRepo *MockVerificationCodeRepository, cache *MockCacheRepository) *StatsService {
	svc := &StatsService{
		codeRepo: codeRepo,
		cacheTTL: 15 * time.Second,
		now:      func() time.Time { return testNow },
	}
	if cache != nil {
		svc.cache = cache
	}
	return svc
}

func TestStatsService_GetCodeStats_EmptyStore(t *testing.T) {
	// Arrange
	mockCodeRepo := new(MockVerificationCodeRepository)
	mockCodeRepo.On("CountActive", testNow).Return(int64(0), nil)
	mockCodeRepo.On("CountExpired", testNow).Return(int64(0), nil)
	mockCodeRepo.On("CountHighAttempts", MaxAttempts-1).Return(int64(0), nil)

	svc := createTestStatsService(mockCodeRepo, nil)

	// Act
	stats, err := svc.GetCodeStats(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &CodeStats{TotalActive: 0, ExpiredCount: 0, HighAttemptCount: 0}, stats)
}

func TestStatsService_GetCodeStats_MixedRows(t *testing.T) {
	// Сценарий: три кода, один истёк, ни один не у лимита попыток
	mockCodeRepo := new(MockVerificationCodeRepository)
	mockCodeRepo.On("CountActive", testNow).Return(int64(2), nil)
	mockCodeRepo.On("CountExpired", testNow).Return(int64(1), nil)
	mockCodeRepo.On("CountHighAttempts", MaxAttempts-1).Return(int64(0), nil)

	svc := createTestStatsService(mockCodeRepo, nil)

	stats, err := svc.GetCodeStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalActive)
	assert.Equal(t, int64(1), stats.ExpiredCount)
	assert.Equal(t, int64(0), stats.HighAttemptCount)
}

func TestStatsService_GetCodeStats_CacheHit(t *testing.T) {
	// При попадании в кеш база не трогается
	mockCodeRepo := new(MockVerificationCodeRepository)
	mockCache := new(MockCacheRepository)
	mockCache.On("GetJSON", statsCacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*CodeStats)
			*dest = CodeStats{TotalActive: 9, ExpiredCount: 4, HighAttemptCount: 1}
		}).
		Return(nil)

	svc := createTestStatsService(mockCodeRepo, mockCache)

	stats, err := svc.GetCodeStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.TotalActive)
	mockCodeRepo.AssertNotCalled(t, "CountActive", mock.Anything)
}

func TestStatsService_GetCodeStats_CacheMiss_StoresSnapshot(t *testing.T) {
	mockCodeRepo := new(MockVerificationCodeRepository)
	mockCodeRepo.On("CountActive", testNow).Return(int64(2), nil)
	mockCodeRepo.On("CountExpired", testNow).Return(int64(1), nil)
	mockCodeRepo.On("CountHighAttempts", MaxAttempts-1).Return(int64(0), nil)

	mockCache := new(MockCacheRepository)
	mockCache.On("GetJSON", statsCacheKey, mock.Anything).Return(apperrors.ErrNotFound)
	mockCache.On("SetJSON", statsCacheKey, mock.Anything, 15*time.Second).Return(nil)

	svc := createTestStatsService(mockCodeRepo, mockCache)

	stats, err := svc.GetCodeStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalActive)
	mockCache.AssertCalled(t, "SetJSON", statsCacheKey, mock.Anything, 15*time.Second)
}
