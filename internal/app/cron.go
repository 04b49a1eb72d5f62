package app

import (
	"context"
	"fmt"
	"time"

	pkgcron "github.com/worksite/core/internal/pkg/cron"
	"github.com/worksite/core/internal/pkg/session"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, sessions session.Store, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "sweep_expired_sessions",
		Description: "remove sessions past their refresh expiry",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			swept, err := sessions.SweepExpired(ctx)
			if err != nil {
				cronLogger.Warn("session sweep failed", zap.Error(err))
				return err
			}
			if swept > 0 {
				cronLogger.Info(fmt.Sprintf("session sweep removed %d expired sessions", swept))
			}
			return nil
		},
	})
}
