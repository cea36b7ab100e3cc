package settingsstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BackupConfig is the effective configuration for scheduled snapshot exports.
type BackupConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
	Dir      string `json:"dir"`
}

// BackupConfigInfo includes where each value came from.
type BackupConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`

	Dir       string `json:"dir"`
	DirSource string `json:"dir_source"`
}

// BackupStatus describes the last scheduled or manual export.
type BackupStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed", ""
	Message   string     `json:"message,omitempty"`
}

// Backups resolves backup settings against env, the values read from the
// environment (or their defaults).
type Backups struct {
	*SettingsStore
	env config.Backup
}

func (s *SettingsStore) Backups(env config.Backup) *Backups {
	return &Backups{SettingsStore: s, env: env}
}

func (b *Backups) Enabled() bool {
	if v, ok := b.stored(entities.SettingKeyBackupEnabled); ok {
		return v == "true" || v == "1"
	}
	return b.env.Enabled
}

func (b *Backups) SetEnabled(enabled bool) error {
	return b.repo.SetSetting(entities.SettingKeyBackupEnabled, strconv.FormatBool(enabled))
}

func (b *Backups) Schedule() string {
	if v, ok := b.stored(entities.SettingKeyBackupSchedule); ok {
		return v
	}
	return b.env.Schedule
}

// SetSchedule validates and saves a five-field cron schedule.
func (b *Backups) SetSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return b.repo.SetSetting(entities.SettingKeyBackupSchedule, schedule)
}

func (b *Backups) Dir() string {
	if v, ok := b.stored(entities.SettingKeyBackupDir); ok {
		return v
	}
	return b.env.Dir
}

func (b *Backups) SetDir(dir string) error {
	return b.repo.SetSetting(entities.SettingKeyBackupDir, dir)
}

func (b *Backups) Config() BackupConfig {
	return BackupConfig{
		Enabled:  b.Enabled(),
		Schedule: b.Schedule(),
		Dir:      b.Dir(),
	}
}

func (b *Backups) ConfigInfo() BackupConfigInfo {
	return BackupConfigInfo{
		Enabled:        b.Enabled(),
		EnabledSource:  b.source(entities.SettingKeyBackupEnabled, "BACKUP_ENABLED"),
		Schedule:       b.Schedule(),
		ScheduleSource: b.source(entities.SettingKeyBackupSchedule, "BACKUP_SCHEDULE"),
		Dir:            b.Dir(),
		DirSource:      b.source(entities.SettingKeyBackupDir, "BACKUP_DIR"),
	}
}

func (b *Backups) Status() BackupStatus {
	status := BackupStatus{}
	if v, ok := b.stored(entities.SettingKeyBackupLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastRunAt = &ts
		}
	}
	status.Status, _ = b.stored(entities.SettingKeyBackupLastStatus)
	status.Message, _ = b.stored(entities.SettingKeyBackupLastMessage)
	return status
}

func (b *Backups) SetStatus(status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := b.repo.SetSetting(entities.SettingKeyBackupLastAt, now); err != nil {
		return err
	}
	if err := b.repo.SetSetting(entities.SettingKeyBackupLastStatus, status); err != nil {
		return err
	}
	return b.repo.SetSetting(entities.SettingKeyBackupLastMessage, message)
}

// Clear drops the database overrides, reverting to the environment.
func (b *Backups) Clear() error {
	keys := []string{
		entities.SettingKeyBackupEnabled,
		entities.SettingKeyBackupSchedule,
		entities.SettingKeyBackupDir,
	}
	for _, key := range keys {
		if err := b.repo.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts standard five-field cron expressions.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// CronDescription returns a readable label for common schedules.
func CronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 */12 * * *":
		return "Every 12 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 3 * * *":
		return "Daily at 03:00"
	case "0 0 * * 0":
		return "Weekly on Sunday"
	default:
		return "Custom schedule"
	}
}
