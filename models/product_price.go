package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductPrice is one supplier's quote for one product. At most one row per
// (ProductID, SupplierID) pair may have IsCurrent=true; older rows are kept
// as price history.
type ProductPrice struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ProductID     uint           `gorm:"index:idx_product_supplier;not null" json:"product_id"`
	Product       *Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupplierID    uint           `gorm:"index:idx_product_supplier;not null" json:"supplier_id"`
	Supplier      *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	CostPrice     float64        `gorm:"not null" json:"cost_price"`
	SellPrice     *float64       `json:"sell_price,omitempty"`
	Currency      string         `gorm:"size:10;default:'USD'" json:"currency"`
	EffectiveDate time.Time      `gorm:"not null" json:"effective_date"`
	IsCurrent     bool           `gorm:"default:false" json:"is_current"`
	Source        string         `gorm:"size:100" json:"source"`
}

// TableName overrides the table name
func (ProductPrice) TableName() string {
	return "product_prices"
}
