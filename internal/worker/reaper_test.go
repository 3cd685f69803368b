package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/verify-api/internal/domain/entity"
	apperrors "github.com/yourusername/verify-api/internal/pkg/errors"
	"github.com/yourusername/verify-api/internal/service"
)

// stubUserRepo — минимальная заглушка справочника пользователей
type stubUserRepo struct{}

func (stubUserRepo) Create(*entity.User) error { return nil }
func (stubUserRepo) GetByID(uint) (*entity.User, error) {
	return nil, apperrors.ErrNotFound
}
func (stubUserRepo) GetByEmail(string) (*entity.User, error) {
	return nil, apperrors.ErrNotFound
}
func (stubUserRepo) MarkEmailVerified(uint) error { return nil }

// stubCodeRepo считает вызовы очистки
type stubCodeRepo struct {
	deleteExpiredCalls atomic.Int64
}

func (s *stubCodeRepo) Create(*entity.VerificationCode) error { return nil }
func (s *stubCodeRepo) GetActiveByUserID(uint) (*entity.VerificationCode, error) {
	return nil, apperrors.ErrNotFound
}
func (s *stubCodeRepo) ReplaceForUser(*entity.VerificationCode) error { return nil }
func (s *stubCodeRepo) IncrementAttempts(uint) error                  { return nil }
func (s *stubCodeRepo) Consume(uint, uint) error                      { return nil }
func (s *stubCodeRepo) DeleteByID(uint) error                         { return nil }
func (s *stubCodeRepo) DeleteByUserID(uint) error                     { return nil }
func (s *stubCodeRepo) DeleteExpired(time.Time) (int64, error) {
	s.deleteExpiredCalls.Add(1)
	return 0, nil
}
func (s *stubCodeRepo) CountActive(time.Time) (int64, error)  { return 0, nil }
func (s *stubCodeRepo) CountExpired(time.Time) (int64, error) { return 0, nil }
func (s *stubCodeRepo) CountHighAttempts(int) (int64, error)  { return 0, nil }

func TestReaper_Run_SweepsUntilCancelled(t *testing.T) {
	codeRepo := &stubCodeRepo{}

	verification, err := service.NewVerificationService(stubUserRepo{}, codeRepo)
	require.NoError(t, err)
	stats, err := service.NewStatsService(codeRepo, nil, time.Second)
	require.NoError(t, err)

	reaper, err := NewReaper(verification, stats, 10*time.Millisecond, time.Hour, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	reaper.Run(ctx)

	assert.GreaterOrEqual(t, codeRepo.deleteExpiredCalls.Load(), int64(1),
		"Reaper должен запускать очистку по тикеру")
}

func TestNewReaper_RequiresServices(t *testing.T) {
	_, err := NewReaper(nil, nil, time.Minute, time.Minute, "test")
	assert.Error(t, err)
}
