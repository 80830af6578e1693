package services

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/gorm"
)

// FieldChange is one field's before/after pair in an audit diff.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// AuditSink receives audit events emitted by the services. Appending is
// fire-and-forget: implementations must never fail the business operation
// that triggered the event.
type AuditSink interface {
	Append(userID *uint, action, entityType string, entityID uint, changes map[string]FieldChange)
}

// GormAuditSink persists audit entries to the audit_logs table. Write
// failures are logged and swallowed.
type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Append(userID *uint, action, entityType string, entityID uint, changes map[string]FieldChange) {
	payload, err := json.Marshal(changes)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit: failed to encode changes")
		payload = []byte("{}")
	}

	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    string(payload),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Uint("entity_id", entityID).
			Msg("audit: failed to append entry")
	}
}

// NoopAuditSink discards all events. Used in tests.
type NoopAuditSink struct{}

func (NoopAuditSink) Append(*uint, string, string, uint, map[string]FieldChange) {}

// diffFields compares before and after over the named fields and returns
// the ones that changed, or nil if nothing did.
func diffFields(before, after map[string]interface{}, fields []string) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for _, field := range fields {
		if before[field] != after[field] {
			changes[field] = FieldChange{Old: before[field], New: after[field]}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}
