package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunRetention purges visits older than retention once immediately and then
// every interval until ctx is done.
func (s *Store) RunRetention(ctx context.Context, retention, interval time.Duration, logger *zap.Logger) {
	purge := func() {
		removed, err := s.Cleanup(ctx, time.Now().Add(-retention))
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("visit cleanup failed", zap.Error(err))
			}
			return
		}
		if removed > 0 {
			logger.Info("visit cleanup", zap.Int64("removed", removed), zap.Duration("retention", retention))
		}
	}

	purge()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
