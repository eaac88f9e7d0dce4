// Package scheduler runs the billing jobs on calendar triggers.
//
// Each job is bound to a cron expression evaluated in one fixed
// timezone. Triggered runs execute sequentially in the cron goroutine —
// there is no free-running loop and no intra-run fan-out, which keeps
// write ordering within a billing pass predictable.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds a single job invocation.
const runTimeout = 30 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	log  *zap.Logger
}

// New creates a scheduler whose cron expressions are evaluated in the
// named timezone.
func New(timezone string, logger *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		loc:  loc,
		log:  logger,
	}, nil
}

// AddJob schedules run on the given cron expression. Job errors are
// logged, never fatal: the next trigger still fires.
func (s *Scheduler) AddJob(spec, name string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		start := time.Now()
		s.log.Info("job triggered", zap.String("job", name))
		if err := run(ctx); err != nil {
			s.log.Error("job failed",
				zap.String("job", name),
				zap.Duration("took", time.Since(start)),
				zap.Error(err))
			return
		}
		s.log.Info("job finished",
			zap.String("job", name),
			zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return err
	}
	s.log.Info("job scheduled",
		zap.String("job", name),
		zap.String("cron", spec),
		zap.String("timezone", s.loc.String()))
	return nil
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("timezone", s.loc.String()))
}

// Stop halts triggering and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
