package services

import (
	"errors"
	"math"
	"time"

	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/gorm"
)

// PriceService maintains per-supplier product prices and the invariant
// that at most one price row per (product, supplier) pair is current.
type PriceService struct {
	db              *gorm.DB
	defaultCurrency string
}

func NewPriceService(db *gorm.DB, defaultCurrency string) *PriceService {
	return &PriceService{db: db, defaultCurrency: defaultCurrency}
}

type PriceInput struct {
	ProductID     uint
	SupplierID    uint
	CostPrice     float64
	SellPrice     *float64
	Currency      string
	EffectiveDate time.Time
	IsCurrent     bool
	Source        string
}

// SetCurrentPrice inserts a price row. When the new row is current, every
// previously current row for the same (product, supplier) pair is demoted
// in the same transaction — a crash can never leave zero or two current
// rows. Demoted rows are kept as price history.
func (s *PriceService) SetCurrentPrice(in PriceInput) (*models.ProductPrice, error) {
	if in.CostPrice < 0 {
		return nil, &ValidationError{Field: "cost_price", Err: ErrNegativePrice}
	}
	if in.Currency == "" {
		in.Currency = s.defaultCurrency
	}
	if in.EffectiveDate.IsZero() {
		in.EffectiveDate = time.Now()
	}

	price := models.ProductPrice{
		ProductID:     in.ProductID,
		SupplierID:    in.SupplierID,
		CostPrice:     in.CostPrice,
		SellPrice:     in.SellPrice,
		Currency:      in.Currency,
		EffectiveDate: in.EffectiveDate,
		IsCurrent:     in.IsCurrent,
		Source:        in.Source,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", in.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		if err := tx.Model(&models.Supplier{}).Where("id = ?", in.SupplierID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrSupplierNotFound
		}

		if in.IsCurrent {
			if err := demoteCurrentPrices(tx, in.ProductID, in.SupplierID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&price).Error
	})
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// UpdatePrice edits an existing price row in place. Promoting a row to
// current demotes its siblings, excluding the row itself.
func (s *PriceService) UpdatePrice(id uint, in PriceInput) (*models.ProductPrice, error) {
	if in.CostPrice < 0 {
		return nil, &ValidationError{Field: "cost_price", Err: ErrNegativePrice}
	}

	var price models.ProductPrice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&price, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPriceNotFound
			}
			return err
		}

		if in.IsCurrent {
			if err := demoteCurrentPrices(tx, price.ProductID, price.SupplierID, price.ID); err != nil {
				return err
			}
		}

		price.CostPrice = in.CostPrice
		price.SellPrice = in.SellPrice
		if in.Currency != "" {
			price.Currency = in.Currency
		}
		if !in.EffectiveDate.IsZero() {
			price.EffectiveDate = in.EffectiveDate
		}
		price.IsCurrent = in.IsCurrent
		if in.Source != "" {
			price.Source = in.Source
		}
		return tx.Save(&price).Error
	})
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// demoteCurrentPrices flips is_current off for every current row of the
// pair, excluding excludeID when updating a row in place.
func demoteCurrentPrices(tx *gorm.DB, productID, supplierID, excludeID uint) error {
	q := tx.Model(&models.ProductPrice{}).
		Where("product_id = ? AND supplier_id = ? AND is_current = ?", productID, supplierID, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.Update("is_current", false).Error
}

// PriceFilters narrows and paginates the price listing.
type PriceFilters struct {
	Page       int
	Limit      int
	ProductID  uint
	SupplierID uint
	IsCurrent  *bool
}

type PriceList struct {
	Data []models.ProductPrice `json:"data"`
	Meta ListMeta              `json:"meta"`
}

func (s *PriceService) FindAll(f PriceFilters) (*PriceList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}

	query := s.db.Model(&models.ProductPrice{})
	if f.ProductID != 0 {
		query = query.Where("product_id = ?", f.ProductID)
	}
	if f.SupplierID != 0 {
		query = query.Where("supplier_id = ?", f.SupplierID)
	}
	if f.IsCurrent != nil {
		query = query.Where("is_current = ?", *f.IsCurrent)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var prices []models.ProductPrice
	err := query.
		Preload("Product").
		Preload("Supplier").
		Order("effective_date DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	if prices == nil {
		prices = []models.ProductPrice{}
	}

	return &PriceList{
		Data: prices,
		Meta: ListMeta{
			Total:      total,
			Page:       f.Page,
			Limit:      f.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
		},
	}, nil
}

func (s *PriceService) FindOne(id uint) (*models.ProductPrice, error) {
	var price models.ProductPrice
	err := s.db.Preload("Product").Preload("Supplier").First(&price, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceNotFound
		}
		return nil, err
	}
	return &price, nil
}

// BulkRecord is one row of a bulk price feed. Products are matched by name
// (case-insensitive, including the localized name) or SKU; suppliers by
// exact name, falling back to email.
type BulkRecord struct {
	ProductName   string     `json:"product_name"`
	ProductSKU    string     `json:"product_sku"`
	SupplierName  string     `json:"supplier_name"`
	SupplierEmail string     `json:"supplier_email"`
	CostPrice     float64    `json:"cost_price"`
	Currency      string     `json:"currency"`
	EffectiveDate *time.Time `json:"effective_date"`
}

type BulkDetail struct {
	Product  string `json:"product"`
	Supplier string `json:"supplier"`
	Status   string `json:"status"` // created | error
	Message  string `json:"message,omitempty"`
}

type BulkResult struct {
	Processed int          `json:"processed"`
	Created   int          `json:"created"`
	Updated   int          `json:"updated"`
	Errors    int          `json:"errors"`
	Details   []BulkDetail `json:"details"`
}

// BulkImport applies a price feed record by record. Each record resolves
// its product and supplier, then runs the single-price-set algorithm with
// is_current=true and the batch's source tag. A failing record is recorded
// and skipped; it never aborts the rest of the batch.
//
// Suppliers are created on the fly when no match exists; products are
// never auto-created — they are curated master data, and an unknown
// product is a per-record error.
func (s *PriceService) BulkImport(sourceTag string, records []BulkRecord) *BulkResult {
	result := &BulkResult{Details: []BulkDetail{}}

	for _, record := range records {
		result.Processed++

		product, err := s.resolveProduct(record)
		if err != nil {
			result.Errors++
			result.Details = append(result.Details, BulkDetail{
				Product:  record.ProductName,
				Supplier: record.SupplierName,
				Status:   "error",
				Message:  err.Error(),
			})
			continue
		}

		supplier, err := s.resolveOrCreateSupplier(record)
		if err != nil {
			result.Errors++
			result.Details = append(result.Details, BulkDetail{
				Product:  record.ProductName,
				Supplier: record.SupplierName,
				Status:   "error",
				Message:  err.Error(),
			})
			continue
		}

		effectiveDate := time.Now()
		if record.EffectiveDate != nil {
			effectiveDate = *record.EffectiveDate
		}

		_, err = s.SetCurrentPrice(PriceInput{
			ProductID:     product.ID,
			SupplierID:    supplier.ID,
			CostPrice:     record.CostPrice,
			Currency:      record.Currency,
			EffectiveDate: effectiveDate,
			IsCurrent:     true,
			Source:        sourceTag,
		})
		if err != nil {
			result.Errors++
			result.Details = append(result.Details, BulkDetail{
				Product:  record.ProductName,
				Supplier: record.SupplierName,
				Status:   "error",
				Message:  err.Error(),
			})
			continue
		}

		result.Created++
		result.Details = append(result.Details, BulkDetail{
			Product:  record.ProductName,
			Supplier: record.SupplierName,
			Status:   "created",
		})
	}

	return result
}

func (s *PriceService) resolveProduct(record BulkRecord) (*models.Product, error) {
	var product models.Product
	query := s.db
	switch {
	case record.ProductName != "":
		query = query.Where("LOWER(name) = LOWER(?) OR LOWER(name_es) = LOWER(?)",
			record.ProductName, record.ProductName)
	case record.ProductSKU != "":
		query = query.Where("sku = ?", record.ProductSKU)
	default:
		return nil, &ValidationError{Field: "product_name", Err: ErrProductNotFound}
	}

	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *PriceService) resolveOrCreateSupplier(record BulkRecord) (*models.Supplier, error) {
	var supplier models.Supplier
	query := s.db
	switch {
	case record.SupplierName != "":
		query = query.Where("name = ?", record.SupplierName)
	case record.SupplierEmail != "":
		query = query.Where("email = ?", record.SupplierEmail)
	default:
		return nil, ErrSupplierNotFound
	}

	err := query.First(&supplier).Error
	if err == nil {
		return &supplier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if record.SupplierName == "" {
		// an email-only record with no match has nothing to create from
		return nil, ErrSupplierNotFound
	}

	supplier = models.Supplier{
		Name:     record.SupplierName,
		Email:    record.SupplierEmail,
		IsActive: true,
	}
	if err := s.db.Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}
