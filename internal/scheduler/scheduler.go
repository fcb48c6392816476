// Package scheduler runs ranking recomputes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/service"
)

// ErrRunInProgress is returned when a recompute is requested while another
// one is still running
var ErrRunInProgress = errors.New("recompute already in progress")

// Recomputer is the work the scheduler drives
type Recomputer interface {
	Recompute(ctx context.Context, asOf time.Time) (*service.RecomputeResult, error)
}

// Scheduler manages the scheduled recompute job
type Scheduler struct {
	cron            *cron.Cron
	recomputer      Recomputer
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	active          atomic.Bool
	skipped         atomic.Int64
	runTimeout      time.Duration
	gracefulTimeout time.Duration
	now             func() time.Time
}

// NewScheduler creates a new scheduler. Cron expressions are evaluated in UTC.
func NewScheduler(recomputer Recomputer, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	entry := log.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{entry})),
		),
		recomputer:      recomputer,
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      time.Hour,
		gracefulTimeout: 30 * time.Second,
		now:             time.Now,
	}
}

// ScheduleRecompute registers the recompute job on a standard cron expression
func (s *Scheduler) ScheduleRecompute(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		if err := s.RunNow(ctx); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				s.logger.Warn("Previous recompute still running, skipping tick")
				return
			}
			s.logger.WithError(err).Error("Scheduled recompute failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled ranking recompute")

	return nil
}

// RunNow runs one recompute as of the current UTC date. It returns
// ErrRunInProgress without doing anything when a run is already active.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.active.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return ErrRunInProgress
	}
	defer s.active.Store(false)

	started := s.now()
	result, err := s.recomputer.Recompute(ctx, started.UTC())
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"divisions":   len(result.Results),
		"records":     result.RecordsRead,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Scheduled recompute completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running recompute, up to the
// graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Skipped returns how many runs were skipped because one was active
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// cronLogger adapts a logrus entry to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(pairs(keysAndValues)).Error(msg)
}

func pairs(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
