// Package schedule drives periodic feed synchronization with cron.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SyncRunner is the job the scheduler fires; feedsync.Syncer satisfies it.
type SyncRunner interface {
	SyncDue(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New registers the feed sweep on the given cron spec (seconds precision).
func New(spec string, runner SyncRunner, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		synced, err := runner.SyncDue(ctx)
		if err != nil {
			if logger != nil {
				logger.Error("feed sweep failed", "error", err)
			}
			return
		}
		if synced > 0 && logger != nil {
			logger.Info("feed sweep completed", "synced", synced)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
