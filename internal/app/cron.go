package app

import (
	"context"
	"time"

	"github.com/echoverse/core/internal/pkg/cron"
	"go.uber.org/zap"
)

const sweepInterval = 5 * time.Minute

// registerJobs wires the background sweeps. Both stores stay correct
// without them; the sweeps only bound memory.
func (a *App) registerJobs() {
	a.sched.Register(cron.Job{
		Name:        "session-sweep",
		Description: "Delete expired sessions",
		Interval:    sweepInterval,
		Fn: func(ctx context.Context) error {
			removed := a.sessions.Sweep()
			if removed > 0 {
				a.logger.Info("session sweep", zap.Int("removed", removed))
			}
			return nil
		},
	})

	a.sched.Register(cron.Job{
		Name:        "ratelimit-prune",
		Description: "Drop rate-limit keys with no recent requests",
		Interval:    sweepInterval,
		Fn: func(ctx context.Context) error {
			removed := a.limiter.Prune()
			if removed > 0 {
				a.logger.Info("rate limiter prune", zap.Int("removed", removed))
			}
			return nil
		},
	})
}
