package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/verify-api/internal/service"
)

// Reaper drives the periodic maintenance of the verification code table: it
// sweeps expired rows and logs aggregate stats for monitoring. The services
// themselves never self-schedule, this loop is the external scheduler.
type Reaper struct {
	verification *service.VerificationService
	stats        *service.StatsService

	cleanupInterval time.Duration
	statsInterval   time.Duration

	// instanceID distinguishes concurrent reaper instances in logs.
	instanceID string
}

func NewReaper(
	verification *service.VerificationService,
	stats *service.StatsService,
	cleanupInterval, statsInterval time.Duration,
	instanceID string,
) (*Reaper, error) {
	if verification == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats service is required")
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	if statsInterval <= 0 {
		statsInterval = 5 * time.Minute
	}
	return &Reaper{
		verification:    verification,
		stats:           stats,
		cleanupInterval: cleanupInterval,
		statsInterval:   statsInterval,
		instanceID:      instanceID,
	}, nil
}

// Run blocks until ctx is cancelled, sweeping on every cleanup tick and
// reporting stats on every stats tick. Concurrent reapers are safe: the
// sweep is a single predicate delete and double-deleting a gone row is a
// no-op.
func (r *Reaper) Run(ctx context.Context) {
	log.Printf("[Reaper %s] started (cleanup every %v, stats every %v)",
		r.instanceID, r.cleanupInterval, r.statsInterval)

	cleanupTicker := time.NewTicker(r.cleanupInterval)
	defer cleanupTicker.Stop()
	statsTicker := time.NewTicker(r.statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Reaper %s] stopped", r.instanceID)
			return
		case <-cleanupTicker.C:
			r.sweep(ctx)
		case <-statsTicker.C:
			r.report(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	removed, err := r.verification.CleanupExpiredCodes(ctx)
	if err != nil {
		log.Printf("[Reaper %s] cleanup failed: %v", r.instanceID, err)
		return
	}
	if removed > 0 {
		log.Printf("[Reaper %s] reaped %d expired verification codes", r.instanceID, removed)
	}
}

func (r *Reaper) report(ctx context.Context) {
	stats, err := r.stats.GetCodeStats(ctx)
	if err != nil {
		log.Printf("[Reaper %s] stats failed: %v", r.instanceID, err)
		return
	}
	log.Printf("[Reaper %s] codes: active=%d expired=%d high_attempts=%d",
		r.instanceID, stats.TotalActive, stats.ExpiredCount, stats.HighAttemptCount)
}
