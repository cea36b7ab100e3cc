package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

// AuditCleanupSchedule runs the retention cleanup daily at 04:00, after the
// default backup window.
const AuditCleanupSchedule = "0 4 * * *"

// AuditCleanupScheduler prunes old audit events once a day, through the
// queue when one is available.
type AuditCleanupScheduler struct {
	retentionDays int
	queue         Enqueuer
	cleaner       tasks.AuditEventCleaner

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(retentionDays int, queue Enqueuer, cleaner tasks.AuditEventCleaner) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		retentionDays: retentionDays,
		queue:         queue,
		cleaner:       cleaner,
		cron:          newCron(),
	}
}

func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if _, err := s.cron.AddFunc(AuditCleanupSchedule, func() {
		if err := s.RunNow(); err != nil {
			log.Printf("[AUDIT] Cleanup failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.cron.Start()
	s.isRunning = true
	log.Printf("[AUDIT] Cleanup scheduled daily, keeping %s of events", s.task().Retention())
	return nil
}

func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

// RunNow prunes immediately.
func (s *AuditCleanupScheduler) RunNow() error {
	task := s.task()
	if s.queue != nil {
		_, err := s.queue.Enqueue(task)
		return err
	}
	return tasks.CleanupAuditEventsProcessor(s.cleaner)(context.Background(), task)
}

func (s *AuditCleanupScheduler) task() tasks.CleanupAuditEventsTask {
	return tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}
}
