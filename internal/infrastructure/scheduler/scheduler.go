package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Logger is the subset of the app logger the scheduler needs.
type Logger interface {
	Errorf(template string, args ...interface{})
}

// Scheduler runs sync jobs on cron specs. Interval jobs use "@every"
// specs; jobs report their own progress, the scheduler only records
// failures of an iteration.
type Scheduler struct {
	cron   *cron.Cron
	logger Logger
}

func New(logger Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

func (s *Scheduler) AddJob(spec string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil && s.logger != nil {
			s.logger.Errorf("Scheduled job failed: %v", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
