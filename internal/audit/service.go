package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously. Events without a request id get
// a fresh one.
func (s *Service) Log(event *entities.AuditEvent) error {
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.Log(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogAuth records a login or logout attempt.
func (s *Service) LogAuth(actor, action string, success bool) {
	event := &entities.AuditEvent{
		Actor:      actor,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "user",
		EntityID:   actor,
		Status:     entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogExport records a snapshot export.
func (s *Service) LogExport(actor, destination string, counts map[string]int, err error) {
	event := &entities.AuditEvent{
		Actor:       actor,
		EventType:   entities.AuditEventExport,
		Action:      "snapshot_export",
		Description: "Exported snapshot to " + destination,
		Status:      entities.AuditStatusSuccess,
	}

	if mdBytes, e := json.Marshal(counts); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSettings records a change to runtime settings.
func (s *Service) LogSettings(actor, action, description string) {
	s.LogAsync(&entities.AuditEvent{
		Actor:       actor,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "settings",
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(actor string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(actor, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, actor string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, actor, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
