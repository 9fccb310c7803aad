// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/config"
	"github.com/mrlokans/synthage/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when a schedule fires next after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Enqueuer puts tasks on the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// CleanupScheduler periodically enqueues artifact and audit cleanup tasks.
type CleanupScheduler struct {
	queue         Enqueuer
	schedule      string
	enabled       bool
	retentionDays int
	logger        *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewCleanupScheduler creates a new scheduler instance.
func NewCleanupScheduler(queue Enqueuer, cfg config.Cleanup, audit config.Audit, logger *zap.Logger) *CleanupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupScheduler{
		queue:         queue,
		schedule:      cfg.Schedule,
		enabled:       cfg.Enabled,
		retentionDays: audit.RetentionDays,
		logger:        logger.Named("scheduler"),
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if cleanup is enabled. The scheduler stops
// when ctx is cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.enabled {
		s.logger.Info("cleanup scheduler disabled")
		return nil
	}
	if s.queue == nil {
		return errors.New("cleanup scheduler: task queue not configured")
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	s.logger.Info("cleanup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", nextRun))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false

	s.logger.Info("cleanup scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will be enqueued, or nil.
func (s *CleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// RunNow enqueues one round of cleanup tasks and returns their ids.
func (s *CleanupScheduler) RunNow(ctx context.Context) []string {
	ids, err := s.queue.Enqueue(ctx,
		tasks.CleanupArtifactsTask{},
		tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays},
	)
	if err != nil {
		s.logger.Error("failed to enqueue cleanup tasks", zap.Error(err))
		return nil
	}

	s.logger.Info("cleanup tasks enqueued", zap.Strings("task_ids", ids))
	return ids
}
