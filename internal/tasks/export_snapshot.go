package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/exporters"
)

const ExportSnapshotQueue = "export_snapshot"

// SchedulerActor is recorded in the audit trail for exports nobody asked for
// directly.
const SchedulerActor = "scheduler"

// exportPolicy is read when the queue is built, so SetExportPolicy must run
// before NewExportSnapshotQueue.
var exportPolicy = struct {
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}{
	attempts: 3,
	backoff:  time.Minute,
	timeout:  5 * time.Minute,
}

// SetExportPolicy applies the retry and timeout settings from cfg to the
// export queue.
func SetExportPolicy(cfg Config) {
	if cfg.MaxRetries > 0 {
		exportPolicy.attempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		exportPolicy.backoff = cfg.RetryDelay
	}
	if cfg.TaskTimeout > 0 {
		exportPolicy.timeout = cfg.TaskTimeout
	}
}

// ExportSnapshotTask writes the current tracker state. Dir overrides the
// queue's default exporter with a file export into that directory.
type ExportSnapshotTask struct {
	Actor string `json:"actor,omitempty"`
	Dir   string `json:"dir,omitempty"`
}

// StatusRecorder keeps the outcome of the latest export.
// settingsstore.Backups implements it.
type StatusRecorder interface {
	SetStatus(status, message string) error
}

func (t ExportSnapshotTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ExportSnapshotQueue,
		MaxAttempts: exportPolicy.attempts,
		Backoff:     exportPolicy.backoff,
		Timeout:     exportPolicy.timeout,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

var errExportNotConfigured = errors.New("snapshot export not configured")

// ExportDeps are the collaborators of the export queue. Status is optional.
type ExportDeps struct {
	Source   exporters.SnapshotSource
	Exporter exporters.SnapshotExporter
	Auditor  exporters.ExportAuditor
	Status   StatusRecorder
}

// ExportSnapshotProcessor exports one snapshot per task. A failed export is
// returned to backlite so it is retried.
func ExportSnapshotProcessor(deps ExportDeps) backlite.QueueProcessor[ExportSnapshotTask] {
	return func(ctx context.Context, task ExportSnapshotTask) error {
		exporter := deps.Exporter
		if task.Dir != "" {
			exporter = exporters.NewFileExporter(task.Dir)
		}
		if deps.Source == nil || exporter == nil {
			return errExportNotConfigured
		}

		actor := task.Actor
		if actor == "" {
			actor = SchedulerActor
		}

		result, err := exporters.Backup(deps.Source, exporter, deps.Auditor, actor)
		recordStatus(deps.Status, result, err)
		if err != nil {
			return err
		}

		log.Printf("[TASK] Exported snapshot for %s: %d books, %d users, %d libraries to %s",
			actor, result.Books, result.Users, result.Libraries, result.Destination)
		return nil
	}
}

func NewExportSnapshotQueue(deps ExportDeps) backlite.Queue {
	return backlite.NewQueue(ExportSnapshotProcessor(deps))
}

func recordStatus(recorder StatusRecorder, result exporters.ExportResult, err error) {
	if recorder == nil {
		return
	}
	status, message := "success", fmt.Sprintf("Exported %d books, %d users, %d libraries to %s",
		result.Books, result.Users, result.Libraries, result.Destination)
	if err != nil {
		status, message = "failed", err.Error()
	}
	if serr := recorder.SetStatus(status, message); serr != nil {
		log.Printf("[TASK] Failed to record export status: %v", serr)
	}
}
