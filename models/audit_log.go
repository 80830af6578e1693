package models

import "time"

// AuditLog is an append-only record of a mutation: who did what to which
// entity, with a field-level before/after diff serialized as JSON. It is
// written as a side effect and never read back by the services.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     *uint     `json:"user_id,omitempty"`
	Action     string    `gorm:"size:50;not null" json:"action"` // create, update, delete, status_change
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`
	EntityID   uint      `gorm:"not null" json:"entity_id"`
	Changes    string    `gorm:"type:text" json:"changes"`
	IPAddress  string    `gorm:"size:45" json:"ip_address"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
