package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

// FileExporter writes each snapshot to its own file in Dir. File names
// carry the export time and a random UUID, so concurrent exports never
// collide.
type FileExporter struct {
	Dir string
	now func() time.Time
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{
		Dir: dir,
		now: time.Now,
	}
}

// Export writes snap to a new file. The file is written under a temporary
// name and renamed, so readers never see a partial export.
func (e *FileExporter) Export(snap tracker.Snapshot) (ExportResult, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	at := e.now().UTC()
	name := fmt.Sprintf("snapshot-%s-%s.json", at.Format("20060102T150405Z"), uuid.NewString())
	path := filepath.Join(e.Dir, name)

	tmp, err := os.CreateTemp(e.Dir, ".snapshot-*.tmp")
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteDocument(tmp, NewDocument(snap, at)); err != nil {
		tmp.Close()
		return ExportResult{}, err
	}
	if err := tmp.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ExportResult{}, fmt.Errorf("failed to finalize export file: %w", err)
	}

	log.Printf("Snapshot exported to %s", path)
	return ResultFor(path, snap), nil
}

// ExportTo writes snap to an explicit path, replacing any existing file.
func ExportTo(path string, snap tracker.Snapshot) (ExportResult, error) {
	f, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := WriteDocument(f, NewDocument(snap, time.Now())); err != nil {
		return ExportResult{}, err
	}
	return ResultFor(path, snap), f.Close()
}

// SettingsFileExporter resolves its directory on every export, so a
// directory changed at runtime applies to the next export.
type SettingsFileExporter struct {
	dir func() string
}

func NewSettingsFileExporter(dir func() string) *SettingsFileExporter {
	return &SettingsFileExporter{dir: dir}
}

func (e *SettingsFileExporter) Export(snap tracker.Snapshot) (ExportResult, error) {
	dir := e.dir()
	if dir == "" {
		return ExportResult{}, fmt.Errorf("backup directory is not configured")
	}
	return NewFileExporter(dir).Export(snap)
}
