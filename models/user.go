package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff and portal roles. CUSTOMER accounts are bound to a Customer record
// and only get read access to their own invoices.
const (
	RoleAdmin      = "ADMIN"
	RoleAccounting = "ACCOUNTING"
	RoleManagement = "MANAGEMENT"
	RoleCustomer   = "CUSTOMER"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;default:'ACCOUNTING'" json:"role"`
	CustomerID   *uint          `json:"customer_id,omitempty"`
	Customer     *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
