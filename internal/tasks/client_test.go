package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(TestTask{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestDBPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./bookshelf.db", "bookshelf-tasks.db"},
		{"/data/bookshelf.db", "/data/bookshelf-tasks.db"},
		{"/data/bookshelf.db?_busy_timeout=5000", "/data/bookshelf-tasks.db"},
		{"/data/state", "/data/state-tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DBPath(tt.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.Tasks{Workers: 4, RetryDelay: 30 * time.Second})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, 3, cfg.MaxRetries, "zero values keep defaults")
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{}.Config()

	assert.Equal(t, CleanupAuditEventsQueue, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
	assert.Equal(t, 30*24*time.Hour, CleanupAuditEventsTask{}.Retention())
	assert.Equal(t, 7*24*time.Hour, CleanupAuditEventsTask{RetentionDays: 7}.Retention())
}

type cleanerFunc func(time.Duration) (int64, error)

func (f cleanerFunc) DeleteOldEvents(retention time.Duration) (int64, error) { return f(retention) }

func TestCleanupAuditEventsProcessor(t *testing.T) {
	var got time.Duration
	process := CleanupAuditEventsProcessor(cleanerFunc(func(r time.Duration) (int64, error) {
		got = r
		return 2, nil
	}))

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 10}))
	assert.Equal(t, 10*24*time.Hour, got)

	failing := CleanupAuditEventsProcessor(cleanerFunc(func(time.Duration) (int64, error) {
		return 0, errors.New("locked")
	}))
	assert.Error(t, failing(context.Background(), CleanupAuditEventsTask{}))

	assert.ErrorIs(t, CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{}), errNoCleaner)
}

type snapshotFunc func() tracker.Snapshot

func (f snapshotFunc) Snapshot() tracker.Snapshot { return f() }

type auditCall struct {
	actor string
	err   error
}

type fakeAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (a *fakeAuditor) LogExport(actor, destination string, counts map[string]int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, auditCall{actor: actor, err: err})
}

func (a *fakeAuditor) snapshot() []auditCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditCall(nil), a.calls...)
}

func sampleState() tracker.Snapshot {
	return tracker.Snapshot{
		Books: []entities.Book{{ID: 1, Name: "Dune", TotalPages: 10}},
		Users: []entities.User{{Username: "alice"}},
	}
}

func TestExportSnapshotProcessor(t *testing.T) {
	dir := t.TempDir()
	auditor := &fakeAuditor{}
	status := &fakeStatus{}
	process := ExportSnapshotProcessor(ExportDeps{
		Source:   snapshotFunc(sampleState),
		Exporter: exporters.NewFileExporter(dir),
		Auditor:  auditor,
		Status:   status,
	})

	require.NoError(t, process(context.Background(), ExportSnapshotTask{}))
	require.NoError(t, process(context.Background(), ExportSnapshotTask{Actor: "alice"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	calls := auditor.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, SchedulerActor, calls[0].actor)
	assert.Equal(t, "alice", calls[1].actor)
	assert.Equal(t, "success", status.last)

	t.Run("task directory overrides the exporter", func(t *testing.T) {
		other := t.TempDir()
		require.NoError(t, process(context.Background(), ExportSnapshotTask{Dir: other}))
		entries, err := os.ReadDir(other)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("unconfigured", func(t *testing.T) {
		unconfigured := ExportSnapshotProcessor(ExportDeps{})
		assert.ErrorIs(t, unconfigured(context.Background(), ExportSnapshotTask{}), errExportNotConfigured)
	})
}

type failingExporter struct{}

func (failingExporter) Export(tracker.Snapshot) (exporters.ExportResult, error) {
	return exporters.ExportResult{}, errors.New("read-only file system")
}

type fakeStatus struct{ last, message string }

func (s *fakeStatus) SetStatus(status, message string) error {
	s.last, s.message = status, message
	return nil
}

func TestExportSnapshotProcessor_Failure(t *testing.T) {
	auditor := &fakeAuditor{}
	status := &fakeStatus{}
	process := ExportSnapshotProcessor(ExportDeps{
		Source:   snapshotFunc(sampleState),
		Exporter: failingExporter{},
		Auditor:  auditor,
		Status:   status,
	})

	err := process(context.Background(), ExportSnapshotTask{})

	require.Error(t, err)
	assert.Equal(t, "failed", status.last)
	assert.Contains(t, status.message, "read-only file system")
	calls := auditor.snapshot()
	require.Len(t, calls, 1)
	assert.Error(t, calls[0].err)
}

func TestExportSnapshotQueue_RunsThroughClient(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), Config{Workers: 1, ReleaseAfter: time.Minute, CleanupInterval: time.Hour})
	require.NoError(t, err)
	defer client.Close()

	dir := t.TempDir()
	auditor := &fakeAuditor{}
	client.Register(NewExportSnapshotQueue(ExportDeps{
		Source:   snapshotFunc(sampleState),
		Exporter: exporters.NewFileExporter(dir),
		Auditor:  auditor,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Enqueue(ExportSnapshotTask{Actor: "alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(auditor.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSetExportPolicy(t *testing.T) {
	saved := exportPolicy
	t.Cleanup(func() { exportPolicy = saved })

	SetExportPolicy(Config{MaxRetries: 5, RetryDelay: 10 * time.Second})
	cfg := ExportSnapshotTask{}.Config()

	assert.Equal(t, ExportSnapshotQueue, cfg.Name)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Backoff)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
}
