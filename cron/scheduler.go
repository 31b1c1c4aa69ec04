package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"doctordash/utils"
)

// SweepFunc is one periodic batch pass over due work items.
type SweepFunc func(ctx context.Context) error

// SweepTask is a named sweep registered with the scheduler.
type SweepTask struct {
	Name  string
	Every time.Duration
	Run   SweepFunc
}

// Scheduler drives the registered sweeps on fixed intervals. Ticks are
// scheduled independently of task completion, so a slow sweep can overlap
// the next one; the sweeps themselves are written to tolerate that.
type Scheduler struct {
	cron   *cron.Cron
	clock  utils.Clock
	logger *zap.Logger
	tasks  []SweepTask
}

func NewScheduler(clock utils.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		clock:  clock,
		logger: logger,
	}
}

// Register adds a sweep task. Must be called before Start.
func (s *Scheduler) Register(name string, every time.Duration, run SweepFunc) {
	s.tasks = append(s.tasks, SweepTask{Name: name, Every: every, Run: run})
}

// Tasks returns the registered sweeps, mainly for tests and introspection.
func (s *Scheduler) Tasks() []SweepTask {
	return s.tasks
}

// Start schedules all registered tasks and begins ticking.
func (s *Scheduler) Start() error {
	for _, task := range s.tasks {
		task := task
		spec := fmt.Sprintf("@every %s", task.Every)
		if _, err := s.cron.AddFunc(spec, func() {
			s.RunTask(context.Background(), task)
		}); err != nil {
			return fmt.Errorf("schedule task %s: %w", task.Name, err)
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.tasks)))
	return nil
}

// Stop halts ticking and waits for any running task invocation to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunTask executes one sweep invocation with panic isolation, so a broken
// work item in one tick cannot take the whole process down.
func (s *Scheduler) RunTask(ctx context.Context, task SweepTask) {
	started := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked",
				zap.String("task", task.Name),
				zap.Any("panic", r))
		}
	}()

	if err := task.Run(ctx); err != nil {
		s.logger.Error("sweep failed",
			zap.String("task", task.Name),
			zap.Error(err))
		return
	}
	s.logger.Debug("sweep completed",
		zap.String("task", task.Name),
		zap.Duration("took", s.clock.Now().Sub(started)))
}
