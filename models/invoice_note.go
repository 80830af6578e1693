package models

import "time"

// InvoiceNote is an append-only internal comment on an invoice.
type InvoiceNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	InvoiceID uint      `gorm:"index;not null" json:"invoice_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
}

// TableName overrides the table name
func (InvoiceNote) TableName() string {
	return "invoice_notes"
}
