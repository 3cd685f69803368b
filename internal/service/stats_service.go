package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/verify-api/internal/domain/repository"
)

const statsCacheKey = "verification:code_stats"

// CodeStats is a monitoring snapshot over the verification code table. The
// three counts are read independently, a poll may observe them across a
// concurrent write.
type CodeStats struct {
	TotalActive      int64 `json:"total_active"`
	ExpiredCount     int64 `json:"expired_count"`
	HighAttemptCount int64 `json:"high_attempt_count"`
}

// StatsService computes aggregate verification code counts for dashboards.
// When a cache is provided, snapshots are memoised for a few seconds so a
// busy monitoring poller does not hammer the store.
type StatsService struct {
	codeRepo repository.VerificationCodeRepository
	cache    repository.CacheRepository
	cacheTTL time.Duration
	now      func() time.Time
}

// NewStatsService creates the reporter. cache may be nil, in which case
// every call hits the store.
func NewStatsService(
	codeRepo repository.VerificationCodeRepository,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
) (*StatsService, error) {
	if codeRepo == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Second
	}
	return &StatsService{
		codeRepo: codeRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// GetCodeStats returns the current snapshot: codes still inside their TTL,
// expired rows awaiting reaping, and rows at or near the attempt cap.
func (s *StatsService) GetCodeStats(ctx context.Context) (*CodeStats, error) {
	if s.cache != nil {
		var cached CodeStats
		if err := s.cache.GetJSON(statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	now := s.now()

	totalActive, err := s.codeRepo.CountActive(now)
	if err != nil {
		return nil, fmt.Errorf("failed to count active codes: %w", err)
	}
	expired, err := s.codeRepo.CountExpired(now)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired codes: %w", err)
	}
	highAttempts, err := s.codeRepo.CountHighAttempts(MaxAttempts - 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count high-attempt codes: %w", err)
	}

	stats := &CodeStats{
		TotalActive:      totalActive,
		ExpiredCount:     expired,
		HighAttemptCount: highAttempts,
	}

	if s.cache != nil {
		// Best effort, the snapshot is still valid without the cache.
		_ = s.cache.SetJSON(statsCacheKey, stats, s.cacheTTL)
	}

	return stats, nil
}
