package donation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/antonminaichev/foodflow/internal/metrics"
)

const DefaultSweepInterval = time.Minute

type Expirer interface {
	ExpirePendingDonations(ctx context.Context, now time.Time) (int64, error)
}

// SweeperLoop expires overdue pending donations every interval until ctx is done.
func SweeperLoop(ctx context.Context, expirer Expirer, interval time.Duration, log *zap.Logger) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("expiry sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("expiry sweeper stopped")
			return nil
		case <-ticker.C:
			sweepOnce(ctx, expirer, time.Now().UTC(), log)
		}
	}
}

// sweepOnce never returns an error: a failed run is retried on the next tick.
func sweepOnce(ctx context.Context, expirer Expirer, now time.Time, log *zap.Logger) int64 {
	n, err := expirer.ExpirePendingDonations(ctx, now)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("sweep").Inc()
		log.Error("expiry sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		metrics.DonationsExpiredTotal.Add(float64(n))
		log.Info("donations expired", zap.Int64("count", n))
	}
	return n
}
