// Package scheduler runs the expiry sweep on a cron schedule, so stale
// matches disappear even when nobody opens the app.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/bola-na-rede/internal/config"
	"github.com/iliyamo/bola-na-rede/internal/logger"
)

// Sweeper is the part of the match service the scheduler drives.
type Sweeper interface {
	SweepNow(ctx context.Context) (int, error)
}

type Scheduler struct {
	c       *cron.Cron
	config  config.SweepConfig
	sweeper Sweeper
	timeout time.Duration
}

// New registers the sweep job.  The spec uses the standard five fields and is
// evaluated in loc (server local time when nil).
func New(cfg config.SweepConfig, sweeper Sweeper, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		c:       cron.New(cron.WithLocation(loc)),
		config:  cfg,
		sweeper: sweeper,
		timeout: 30 * time.Second,
	}
	if _, err := s.c.AddFunc(cfg.CronSpec, s.Tick); err != nil {
		return nil, err
	}
	return s, nil
}

// Tick runs one sweep.  Errors are logged; the next tick retries.
func (s *Scheduler) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.sweeper.SweepNow(ctx)
	if err != nil {
		logger.Error("scheduled sweep failed: %v", err)
		return
	}
	logger.Info("scheduled sweep done, matches removed: %d", n)
}

func (s *Scheduler) Start() {
	logger.Info("starting sweep scheduler (cron=%s)", s.config.CronSpec)
	s.c.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
