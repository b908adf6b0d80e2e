package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    map[string]job
	running atomic.Bool
}

type job struct {
	spec string
	fn   func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]job),
	}
}

// Register adds a named job to run on the cron spec (e.g. "@every 10m").
func (s *Scheduler) Register(name, spec string, fn func(ctx context.Context) error) {
	s.jobs[name] = job{spec: spec, fn: fn}
}

func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Warn().Msg("no jobs registered, scheduler not started")
		return nil
	}
	for name, j := range s.jobs {
		name, j := name, j
		_, err := s.cron.AddFunc(j.spec, func() {
			if err := j.fn(s.ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.running.Store(true)
	log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Info().Msg("scheduler stopped")
}

// IsRunning reports whether Start launched the cron loop and Stop has not
// been called since.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}
