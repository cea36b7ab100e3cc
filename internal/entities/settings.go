package entities

import "time"

// Setting is a runtime override stored in the database. It takes priority
// over the environment.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	SettingKeyBackupEnabled     = "backup_enabled"
	SettingKeyBackupSchedule    = "backup_schedule"
	SettingKeyBackupDir         = "backup_dir"
	SettingKeyBackupLastAt      = "backup_last_at"
	SettingKeyBackupLastStatus  = "backup_last_status"
	SettingKeyBackupLastMessage = "backup_last_message"
)
