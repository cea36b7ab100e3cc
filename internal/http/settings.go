package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/settingsstore"
)

// BackupSettingsController manages scheduled snapshot exports at runtime.
type BackupSettingsController struct {
	store     BackupSettingsStore
	scheduler BackupRunner
	auditor   SettingsAuditor
}

func NewBackupSettingsController(store BackupSettingsStore, scheduler BackupRunner, auditor SettingsAuditor) *BackupSettingsController {
	return &BackupSettingsController{store: store, scheduler: scheduler, auditor: auditor}
}

type backupSettingsResponse struct {
	settingsstore.BackupConfigInfo
	Description string                     `json:"description"`
	IsRunning   bool                       `json:"is_running"`
	NextRunAt   *time.Time                 `json:"next_run_at,omitempty"`
	LastRun     settingsstore.BackupStatus `json:"last_run"`
}

// updateBackupRequest fields are optional; only the ones sent change.
type updateBackupRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
	Dir      *string `json:"dir"`
}

// GetSettings handles GET /api/settings/backup.
func (bc *BackupSettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, bc.response())
}

// UpdateSettings handles PUT /api/settings/backup.
func (bc *BackupSettingsController) UpdateSettings(c *gin.Context) {
	var req updateBackupRequest
	if !bindJSON(c, &req) {
		return
	}

	var changes []string
	if req.Schedule != nil {
		schedule := strings.TrimSpace(*req.Schedule)
		if err := bc.store.SetSchedule(schedule); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		changes = append(changes, "schedule="+schedule)
	}
	if req.Dir != nil {
		dir := strings.TrimSpace(*req.Dir)
		if dir == "" {
			respondBadRequest(c, "dir must not be empty")
			return
		}
		if err := bc.store.SetDir(dir); err != nil {
			respondInternalError(c, err, "save backup dir")
			return
		}
		changes = append(changes, "dir="+dir)
	}
	if req.Enabled != nil {
		if err := bc.store.SetEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save backup enabled")
			return
		}
		changes = append(changes, fmt.Sprintf("enabled=%t", *req.Enabled))
	}

	if !bc.reschedule(c) {
		return
	}
	bc.audit(c, "backup_settings_update", strings.Join(changes, ", "))
	c.JSON(http.StatusOK, bc.response())
}

// ResetSettings handles DELETE /api/settings/backup and reverts to the
// environment configuration.
func (bc *BackupSettingsController) ResetSettings(c *gin.Context) {
	if err := bc.store.Clear(); err != nil {
		respondInternalError(c, err, "clear backup settings")
		return
	}
	if !bc.reschedule(c) {
		return
	}
	bc.audit(c, "backup_settings_reset", "reverted to environment configuration")
	c.JSON(http.StatusOK, bc.response())
}

// RunNow handles POST /api/settings/backup/run.
func (bc *BackupSettingsController) RunNow(c *gin.Context) {
	if bc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "backup scheduler not configured", "")
		return
	}
	actor := auth.GetUsername(c)
	if actor == "" {
		actor = "api"
	}
	ref, err := bc.scheduler.RunNow(actor)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status": "started",
		"ref":    ref,
	})
}

func (bc *BackupSettingsController) reschedule(c *gin.Context) bool {
	if bc.scheduler == nil {
		return true
	}
	if err := bc.scheduler.Reschedule(context.Background()); err != nil {
		respondBadRequest(c, err.Error())
		return false
	}
	return true
}

func (bc *BackupSettingsController) audit(c *gin.Context, action, description string) {
	if bc.auditor != nil {
		bc.auditor.LogSettings(auth.GetUsername(c), action, description)
	}
}

func (bc *BackupSettingsController) response() backupSettingsResponse {
	info := bc.store.ConfigInfo()
	resp := backupSettingsResponse{
		BackupConfigInfo: info,
		Description:      settingsstore.CronDescription(info.Schedule),
		LastRun:          bc.store.Status(),
	}
	if bc.scheduler != nil {
		resp.IsRunning = bc.scheduler.IsRunning()
		resp.NextRunAt = bc.scheduler.NextRunTime()
	}
	return resp
}
