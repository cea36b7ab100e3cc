package exporters

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

func sampleSnapshot() tracker.Snapshot {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return tracker.Snapshot{
		Books: []entities.Book{{ID: 1, Name: "Dune", Author: "Frank Herbert", TotalPages: 412}},
		Users: []entities.User{
			{Username: "alice", DisplayName: "Alice", PasswordHash: "$2a$secret", CreatedAt: created},
			{Username: "bob", DisplayName: "Bob", CreatedAt: created},
		},
		Friendships: []entities.Friendship{{User1: "alice", User2: "bob"}, {User1: "bob", User2: "alice"}},
		Libraries:   []entities.Library{{ID: 1, Name: "My Library", Owner: "alice"}},
		Reviews:     []entities.Review{{User: "bob", BookID: 1, Text: "Spice", Rating: 5, CreatedAt: created}},
	}
}

func TestWriteDocument(t *testing.T) {
	at := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, WriteDocument(&buf, NewDocument(sampleSnapshot(), at)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, DocumentVersion, decoded["version"])
	assert.Equal(t, "2024-03-02T08:30:00Z", decoded["exported_at"])
	assert.Len(t, decoded["books"], 1)
	assert.Len(t, decoded["friendships"], 2)
	assert.NotContains(t, buf.String(), "$2a$secret")
}

func TestFileExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	exporter := NewFileExporter(dir)
	exporter.now = func() time.Time { return time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC) }

	first, err := exporter.Export(sampleSnapshot())
	require.NoError(t, err)
	second, err := exporter.Export(sampleSnapshot())
	require.NoError(t, err)

	assert.NotEqual(t, first.Destination, second.Destination)
	assert.True(t, strings.HasPrefix(filepath.Base(first.Destination), "snapshot-20240302T083000Z-"))
	assert.Equal(t, 1, first.Books)
	assert.Equal(t, 2, first.Users)
	assert.Equal(t, 1, first.Reviews)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")

	data, err := os.ReadFile(first.Destination)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, sampleSnapshot().Books, doc.Books)
	assert.Equal(t, sampleSnapshot().Friendships, doc.Friendships)
}

func TestSettingsFileExporter(t *testing.T) {
	root := t.TempDir()
	dir := ""
	exporter := NewSettingsFileExporter(func() string { return dir })

	_, err := exporter.Export(sampleSnapshot())
	assert.ErrorContains(t, err, "not configured")

	dir = filepath.Join(root, "first")
	first, err := exporter.Export(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(first.Destination))

	dir = filepath.Join(root, "second")
	second, err := exporter.Export(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(second.Destination))
}

func TestExportTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	result, err := ExportTo(path, sampleSnapshot())

	require.NoError(t, err)
	assert.Equal(t, path, result.Destination)
	assert.Equal(t, map[string]int{
		"books": 1, "users": 2, "libraries": 1, "sessions": 0, "reviews": 1, "recommendations": 0,
	}, result.Counts())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Dune"`)
}

type staticSource tracker.Snapshot

func (s staticSource) Snapshot() tracker.Snapshot { return tracker.Snapshot(s) }

type failingExporter struct{}

func (failingExporter) Export(tracker.Snapshot) (ExportResult, error) {
	return ExportResult{}, errors.New("disk full")
}

type recordedExport struct {
	actor, destination string
	counts             map[string]int
	err                error
}

type exportRecorder struct{ calls []recordedExport }

func (r *exportRecorder) LogExport(actor, destination string, counts map[string]int, err error) {
	r.calls = append(r.calls, recordedExport{actor, destination, counts, err})
}

func TestBackup(t *testing.T) {
	t.Run("success is audited", func(t *testing.T) {
		recorder := &exportRecorder{}
		exporter := NewFileExporter(t.TempDir())

		result, err := Backup(staticSource(sampleSnapshot()), exporter, recorder, "scheduler")

		require.NoError(t, err)
		require.Len(t, recorder.calls, 1)
		assert.Equal(t, "scheduler", recorder.calls[0].actor)
		assert.Equal(t, result.Destination, recorder.calls[0].destination)
		assert.Equal(t, 2, recorder.calls[0].counts["users"])
		assert.NoError(t, recorder.calls[0].err)
	})

	t.Run("failure is audited and returned", func(t *testing.T) {
		recorder := &exportRecorder{}

		_, err := Backup(staticSource(sampleSnapshot()), failingExporter{}, recorder, "alice")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		require.Len(t, recorder.calls, 1)
		assert.Error(t, recorder.calls[0].err)
	})

	t.Run("nil auditor", func(t *testing.T) {
		_, err := Backup(staticSource(sampleSnapshot()), NewFileExporter(t.TempDir()), nil, "")
		assert.NoError(t, err)
	})
}
