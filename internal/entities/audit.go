package entities

import "time"

type AuditEventType string

const (
	AuditEventAccount        AuditEventType = "account"
	AuditEventFriendship     AuditEventType = "friendship"
	AuditEventRecommendation AuditEventType = "recommendation"
	AuditEventReview         AuditEventType = "review"
	AuditEventReading        AuditEventType = "reading"
	AuditEventLibrary        AuditEventType = "library"
	AuditEventExport         AuditEventType = "export"
	AuditEventAuth           AuditEventType = "auth"
	AuditEventSettings       AuditEventType = "settings"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RequestID   string         `gorm:"size:36" json:"request_id"`
	Actor       string         `gorm:"index;size:100" json:"actor"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "account_create", "friend_add"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "user", "book", "library"
	EntityID    string         `gorm:"index;size:100" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
