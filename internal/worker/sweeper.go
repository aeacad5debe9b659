package worker

import (
	"context"
	"time"

	"taskAssistant/internal/logger"

	"go.uber.org/zap"
)

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type BucketSweeper interface {
	Sweep(idle time.Duration) int
}

// Sweeper periodically drops expired sessions and idle rate-limit buckets.
type Sweeper struct {
	sessions   SessionPurger
	buckets    BucketSweeper
	interval   time.Duration
	bucketIdle time.Duration
}

func NewSweeper(sessions SessionPurger, buckets BucketSweeper, interval, bucketIdle *time.Duration) *Sweeper {
	intervalToSet := 5 * time.Minute
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}

	idleToSet := 30 * time.Minute
	if bucketIdle != nil && *bucketIdle > 0 {
		idleToSet = *bucketIdle
	}

	return &Sweeper{
		sessions:   sessions,
		buckets:    buckets,
		interval:   intervalToSet,
		bucketIdle: idleToSet,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Sweeper stopping")
			return
		}
	}
}

// Check runs one sweep.
func (w *Sweeper) Check(ctx context.Context) {
	start := time.Now()

	purged, err := w.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.Warn("Worker: Failed to purge expired sessions", zap.Error(err))
	}

	swept := 0
	if w.buckets != nil {
		swept = w.buckets.Sweep(w.bucketIdle)
	}

	logger.Info(
		"Worker: Sweep finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int64("sessions_purged", purged),
		zap.Int("buckets_swept", swept),
	)
}
