package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/settingsstore"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// Enqueuer hands a task to the background queue. tasks.Client implements it.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// BackupSettings is the runtime backup configuration.
// settingsstore.Backups implements it.
type BackupSettings interface {
	Config() settingsstore.BackupConfig
	SetStatus(status, message string) error
}

// BackupDeps are the collaborators of BackupScheduler. With a nil Queue the
// export runs inline on the cron goroutine.
type BackupDeps struct {
	Settings BackupSettings
	Queue    Enqueuer
	Source   exporters.SnapshotSource
	Auditor  exporters.ExportAuditor
}

// BackupScheduler triggers periodic snapshot exports.
type BackupScheduler struct {
	deps BackupDeps

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewBackupScheduler(deps BackupDeps) *BackupScheduler {
	return &BackupScheduler{
		deps: deps,
		cron: newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start schedules backups if they are enabled. It is a no-op when the
// scheduler is already running.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	cfg := s.deps.Settings.Config()
	if !cfg.Enabled {
		log.Printf("[BACKUP] Scheduler disabled")
		return nil
	}
	if cfg.Dir == "" {
		log.Printf("[BACKUP] Backup directory not configured, skipping")
		return nil
	}
	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Schedule, err)
	}

	s.cron = newCron()
	entryID, err := s.cron.AddFunc(cfg.Schedule, s.runBackup)
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.NextRunTime(cfg.Schedule, time.Now())
	log.Printf("[BACKUP] Scheduler started with schedule '%s' (%s). Next run: %v",
		cfg.Schedule, settingsstore.CronDescription(cfg.Schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("[BACKUP] Scheduler stopped")
}

// Reschedule applies changed settings.
func (s *BackupScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow triggers a backup immediately, on behalf of actor.
func (s *BackupScheduler) RunNow(actor string) (string, error) {
	return s.trigger(actor)
}

func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next backup fires, or nil when stopped.
func (s *BackupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *BackupScheduler) runBackup() {
	if _, err := s.trigger(tasks.SchedulerActor); err != nil {
		log.Printf("[BACKUP] %v", err)
	}
}

// trigger enqueues an export, or runs it inline without a queue. It returns
// the task id or the export destination.
func (s *BackupScheduler) trigger(actor string) (string, error) {
	cfg := s.deps.Settings.Config()
	if cfg.Dir == "" {
		s.setStatus("failed", "Backup directory not configured")
		return "", fmt.Errorf("backup directory not configured")
	}

	if s.deps.Queue != nil {
		id, err := s.deps.Queue.Enqueue(tasks.ExportSnapshotTask{Actor: actor, Dir: cfg.Dir})
		if err != nil {
			s.setStatus("failed", err.Error())
			return "", err
		}
		log.Printf("[BACKUP] Enqueued snapshot export %s", id)
		return id, nil
	}

	start := time.Now()
	result, err := exporters.Backup(s.deps.Source, exporters.NewFileExporter(cfg.Dir), s.deps.Auditor, actor)
	if err != nil {
		s.setStatus("failed", err.Error())
		return "", err
	}
	msg := fmt.Sprintf("Exported %d books, %d users, %d libraries in %v",
		result.Books, result.Users, result.Libraries, time.Since(start).Round(time.Millisecond))
	log.Printf("[BACKUP] %s", msg)
	s.setStatus("success", msg)
	return result.Destination, nil
}

func (s *BackupScheduler) setStatus(status, message string) {
	if err := s.deps.Settings.SetStatus(status, message); err != nil {
		log.Printf("[BACKUP] Failed to record status: %v", err)
	}
}
