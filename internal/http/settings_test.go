package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/settingsstore"
)

type fakeBackupStore struct {
	cfg     settingsstore.BackupConfig
	status  settingsstore.BackupStatus
	cleared bool
}

func (f *fakeBackupStore) Config() settingsstore.BackupConfig { return f.cfg }

func (f *fakeBackupStore) ConfigInfo() settingsstore.BackupConfigInfo {
	return settingsstore.BackupConfigInfo{
		Enabled:        f.cfg.Enabled,
		EnabledSource:  settingsstore.SourceDatabase,
		Schedule:       f.cfg.Schedule,
		ScheduleSource: settingsstore.SourceDatabase,
		Dir:            f.cfg.Dir,
		DirSource:      settingsstore.SourceDatabase,
	}
}

func (f *fakeBackupStore) Status() settingsstore.BackupStatus { return f.status }

func (f *fakeBackupStore) SetEnabled(enabled bool) error {
	f.cfg.Enabled = enabled
	return nil
}

func (f *fakeBackupStore) SetSchedule(schedule string) error {
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return err
	}
	f.cfg.Schedule = schedule
	return nil
}

func (f *fakeBackupStore) SetDir(dir string) error {
	f.cfg.Dir = dir
	return nil
}

func (f *fakeBackupStore) Clear() error {
	f.cleared = true
	f.cfg = settingsstore.BackupConfig{Schedule: "0 3 * * *", Dir: "./backups"}
	return nil
}

type fakeBackupRunner struct {
	rescheduled int
	ranBy       string
	runErr      error
	next        *time.Time
}

func (f *fakeBackupRunner) IsRunning() bool         { return f.next != nil }
func (f *fakeBackupRunner) NextRunTime() *time.Time { return f.next }

func (f *fakeBackupRunner) RunNow(actor string) (string, error) {
	f.ranBy = actor
	return "task-1", f.runErr
}

func (f *fakeBackupRunner) Reschedule(context.Context) error {
	f.rescheduled++
	return nil
}

type settingsLog struct {
	actions []string
}

func (l *settingsLog) LogSettings(actor, action, description string) {
	l.actions = append(l.actions, action)
}

func setupBackupRouter(store *fakeBackupStore, runner *fakeBackupRunner, log *settingsLog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewBackupSettingsController(store, runner, log)
	router := gin.New()
	router.GET("/api/settings/backup", ctrl.GetSettings)
	router.PUT("/api/settings/backup", ctrl.UpdateSettings)
	router.DELETE("/api/settings/backup", ctrl.ResetSettings)
	router.POST("/api/settings/backup/run", ctrl.RunNow)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBackupSettings_Get(t *testing.T) {
	next := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	store := &fakeBackupStore{cfg: settingsstore.BackupConfig{Enabled: true, Schedule: "0 3 * * *", Dir: "/data"}}
	router := setupBackupRouter(store, &fakeBackupRunner{next: &next}, &settingsLog{})

	w := serve(router, http.MethodGet, "/api/settings/backup", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, true, resp["enabled"])
	assert.Equal(t, "0 3 * * *", resp["schedule"])
	assert.Equal(t, settingsstore.SourceDatabase, resp["schedule_source"])
	assert.Equal(t, true, resp["is_running"])
	assert.Equal(t, "2024-01-02T03:00:00Z", resp["next_run_at"])
	assert.NotEmpty(t, resp["description"])
}

func TestBackupSettings_Update(t *testing.T) {
	t.Run("saves the sent fields and reschedules", func(t *testing.T) {
		store := &fakeBackupStore{cfg: settingsstore.BackupConfig{Schedule: "0 3 * * *", Dir: "/data"}}
		runner := &fakeBackupRunner{}
		log := &settingsLog{}
		router := setupBackupRouter(store, runner, log)

		w := serve(router, http.MethodPut, "/api/settings/backup", `{"enabled": true, "schedule": " 30 2 * * * "}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, store.cfg.Enabled)
		assert.Equal(t, "30 2 * * *", store.cfg.Schedule)
		assert.Equal(t, "/data", store.cfg.Dir)
		assert.Equal(t, 1, runner.rescheduled)
		assert.Equal(t, []string{"backup_settings_update"}, log.actions)
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		store := &fakeBackupStore{cfg: settingsstore.BackupConfig{Schedule: "0 3 * * *"}}
		runner := &fakeBackupRunner{}
		router := setupBackupRouter(store, runner, &settingsLog{})

		w := serve(router, http.MethodPut, "/api/settings/backup", `{"schedule": "every day"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "0 3 * * *", store.cfg.Schedule)
		assert.Zero(t, runner.rescheduled)
	})

	t.Run("rejects an empty dir", func(t *testing.T) {
		router := setupBackupRouter(&fakeBackupStore{}, &fakeBackupRunner{}, &settingsLog{})

		w := serve(router, http.MethodPut, "/api/settings/backup", `{"dir": "  "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBackupSettings_Reset(t *testing.T) {
	store := &fakeBackupStore{cfg: settingsstore.BackupConfig{Enabled: true, Schedule: "* * * * *"}}
	runner := &fakeBackupRunner{}
	log := &settingsLog{}
	router := setupBackupRouter(store, runner, log)

	w := serve(router, http.MethodDelete, "/api/settings/backup", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.cleared)
	assert.Equal(t, 1, runner.rescheduled)
	assert.Equal(t, []string{"backup_settings_reset"}, log.actions)
}

func TestBackupSettings_RunNow(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		runner := &fakeBackupRunner{}
		router := setupBackupRouter(&fakeBackupStore{}, runner, &settingsLog{})

		w := serve(router, http.MethodPost, "/api/settings/backup/run", "")

		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "task-1", decode[map[string]any](t, w)["ref"])
		assert.Equal(t, "api", runner.ranBy)
	})

	t.Run("failure", func(t *testing.T) {
		runner := &fakeBackupRunner{runErr: errors.New("backup dir is not configured")}
		router := setupBackupRouter(&fakeBackupStore{}, runner, &settingsLog{})

		w := serve(router, http.MethodPost, "/api/settings/backup/run", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "not configured")
	})

	t.Run("no scheduler", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		ctrl := NewBackupSettingsController(&fakeBackupStore{}, nil, nil)
		router := gin.New()
		router.POST("/run", ctrl.RunNow)

		w := serve(router, http.MethodPost, "/run", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
