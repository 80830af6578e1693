package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus values are written to the wire exactly as named.
type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "DRAFT"
	StatusSent    InvoiceStatus = "SENT"
	StatusPaid    InvoiceStatus = "PAID"
	StatusOverdue InvoiceStatus = "OVERDUE"
)

// Valid reports whether s is one of the four known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice is a customer-facing invoice. The monetary trio (Subtotal,
// TaxAmount, Total) is always derived from Items and TaxRate together,
// never set independently, and only while the invoice is in DRAFT.
type Invoice struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Number     string         `gorm:"uniqueIndex;size:50;not null" json:"number"`
	CustomerID uint           `gorm:"not null" json:"customer_id"`
	Customer   *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status     InvoiceStatus  `gorm:"size:20;default:'DRAFT'" json:"status"`
	IssueDate  time.Time      `gorm:"not null" json:"issue_date"`
	DueDate    time.Time      `gorm:"not null" json:"due_date"`
	Subtotal   float64        `gorm:"not null" json:"subtotal"`
	TaxRate    float64        `gorm:"not null" json:"tax_rate"`
	TaxAmount  float64        `gorm:"not null" json:"tax_amount"`
	Total      float64        `gorm:"not null" json:"total"`
	Notes      string         `gorm:"type:text" json:"notes"`
	Items      []InvoiceItem  `gorm:"foreignKey:InvoiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	InvoiceID   uint      `gorm:"index;not null" json:"invoice_id"`
	ProductID   uint      `gorm:"not null" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Description string    `gorm:"size:500" json:"description"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
}

// TableName overrides the table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
