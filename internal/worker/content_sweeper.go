package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes downloaded files older than a TTL.
type Sweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// StartContentSweeper runs sweeper every interval until ctx is done. A
// non-positive ttl disables it. The returned channel closes when the loop exits.
func StartContentSweeper(ctx context.Context, sweeper Sweeper, ttl, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || ttl <= 0 || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := sweeper.Sweep(ttl)
				if err != nil {
					logger.Warn("content sweep failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					logger.Info("content swept", zap.Int("removed", removed))
				}
			}
		}
	}()
	return done
}
