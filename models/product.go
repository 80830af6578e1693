package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	SKU         string         `gorm:"uniqueIndex;size:50;not null" json:"sku"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	NameEs      string         `gorm:"size:255" json:"name_es"`
	Description string         `gorm:"type:text" json:"description"`
	Unit        string         `gorm:"size:20" json:"unit"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}
