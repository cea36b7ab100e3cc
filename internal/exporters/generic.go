package exporters

import (
	"fmt"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

// SnapshotExporter writes a snapshot somewhere durable.
type SnapshotExporter interface {
	Export(snap tracker.Snapshot) (ExportResult, error)
}

// SnapshotSource provides the current state. services.Tracker implements it.
type SnapshotSource interface {
	Snapshot() tracker.Snapshot
}

type ExportResult struct {
	Destination     string `json:"destination"`
	Books           int    `json:"books"`
	Users           int    `json:"users"`
	Libraries       int    `json:"libraries"`
	Sessions        int    `json:"sessions"`
	Reviews         int    `json:"reviews"`
	Recommendations int    `json:"recommendations"`
}

// ResultFor counts the rows of snap written to destination.
func ResultFor(destination string, snap tracker.Snapshot) ExportResult {
	return ExportResult{
		Destination:     destination,
		Books:           len(snap.Books),
		Users:           len(snap.Users),
		Libraries:       len(snap.Libraries),
		Sessions:        len(snap.Sessions),
		Reviews:         len(snap.Reviews),
		Recommendations: len(snap.Recommendations),
	}
}

// Counts returns the per-kind row counts, keyed for audit descriptions.
func (r ExportResult) Counts() map[string]int {
	return map[string]int{
		"books":           r.Books,
		"users":           r.Users,
		"libraries":       r.Libraries,
		"sessions":        r.Sessions,
		"reviews":         r.Reviews,
		"recommendations": r.Recommendations,
	}
}

// ExportAuditor records the outcome of an export. audit.Service implements it.
type ExportAuditor interface {
	LogExport(actor, destination string, counts map[string]int, err error)
}

// Backup exports the current snapshot and records the outcome. A nil
// auditor skips the audit record.
func Backup(source SnapshotSource, exporter SnapshotExporter, auditor ExportAuditor, actor string) (ExportResult, error) {
	result, err := exporter.Export(source.Snapshot())
	if auditor != nil {
		auditor.LogExport(actor, result.Destination, result.Counts(), err)
	}
	if err != nil {
		return ExportResult{}, fmt.Errorf("snapshot export failed: %w", err)
	}
	return result, nil
}
