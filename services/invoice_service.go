package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/gorm"
)

// InvoiceService owns the invoice lifecycle: creation with sequential
// numbering, draft-only updates, guarded status changes and the read paths.
// It is the sole writer of invoice status and the derived monetary fields.
type InvoiceService struct {
	db             *gorm.DB
	audit          AuditSink
	defaultTaxRate float64
}

func NewInvoiceService(db *gorm.DB, audit AuditSink, defaultTaxRate float64) *InvoiceService {
	return &InvoiceService{
		db:             db,
		audit:          audit,
		defaultTaxRate: defaultTaxRate,
	}
}

type CreateInvoiceInput struct {
	CustomerID uint
	IssueDate  time.Time
	DueDate    time.Time
	Status     models.InvoiceStatus // DRAFT when empty; SENT allowed at creation
	TaxRate    *float64             // nil means the configured default
	Notes      string
	Items      []LineInput
}

type UpdateInvoiceInput struct {
	IssueDate *time.Time
	DueDate   *time.Time
	TaxRate   *float64
	Notes     *string
	Items     []LineInput // nil keeps the existing items; non-nil replaces them all
}

// InvoiceFilters narrows and paginates FindAll.
type InvoiceFilters struct {
	Page       int
	Limit      int
	Search     string // matches invoice number or customer name
	Status     models.InvoiceStatus
	CustomerID uint
	StartDate  *time.Time
	EndDate    *time.Time
}

type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type InvoiceList struct {
	Data []models.Invoice `json:"data"`
	Meta ListMeta         `json:"meta"`
}

// fields included in invoice audit diffs.
var auditedInvoiceFields = []string{"status", "subtotal", "tax_rate", "tax_amount", "total"}

func invoiceSnapshot(inv *models.Invoice) map[string]interface{} {
	return map[string]interface{}{
		"status":     inv.Status,
		"subtotal":   inv.Subtotal,
		"tax_rate":   inv.TaxRate,
		"tax_amount": inv.TaxAmount,
		"total":      inv.Total,
	}
}

// Create validates the input, allocates the next invoice number and
// persists the invoice with its items in one transaction. Numbering is
// retried once if a concurrent creation grabbed the same number first.
func (s *InvoiceService) Create(actorID *uint, in CreateInvoiceInput) (*models.Invoice, error) {
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	// Creation bypasses the transition table (there is no prior state), but
	// only DRAFT and pre-sent invoices may be born.
	if status != models.StatusDraft && status != models.StatusSent {
		return nil, &ValidationError{Field: "status", Err: ErrInvalidStatus}
	}

	taxRate := s.defaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}

	totals, err := CalculateTotals(in.Items, taxRate)
	if err != nil {
		return nil, err
	}

	var invoice models.Invoice
	for attempt := 0; ; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Customer{}).Where("id = ?", in.CustomerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrCustomerNotFound
			}

			number, err := allocateInvoiceNumber(tx, time.Now().Year())
			if err != nil {
				return err
			}

			items := make([]models.InvoiceItem, 0, len(totals.Lines))
			for _, line := range totals.Lines {
				items = append(items, models.InvoiceItem{
					ProductID:   line.ProductID,
					Description: line.Description,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
					TotalPrice:  line.TotalPrice,
				})
			}

			invoice = models.Invoice{
				Number:     number,
				CustomerID: in.CustomerID,
				Status:     status,
				IssueDate:  in.IssueDate,
				DueDate:    in.DueDate,
				Subtotal:   totals.Subtotal,
				TaxRate:    taxRate,
				TaxAmount:  totals.TaxAmount,
				Total:      totals.Total,
				Notes:      in.Notes,
				Items:      items,
			}
			return tx.Create(&invoice).Error
		})
		if err == nil || attempt > 0 || !IsDuplicateEntry(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.audit.Append(actorID, "create", "invoice", invoice.ID, map[string]FieldChange{
		"status":     {New: invoice.Status},
		"subtotal":   {New: invoice.Subtotal},
		"tax_rate":   {New: invoice.TaxRate},
		"tax_amount": {New: invoice.TaxAmount},
		"total":      {New: invoice.Total},
	})

	return s.FindOne(invoice.ID)
}

// Update mutates a DRAFT invoice. A non-nil Items replaces the whole item
// collection (delete-all, insert-new) and re-derives the monetary trio;
// otherwise the stored subtotal is kept and tax/total are recomputed only
// when the tax rate changes. The invoice is re-read inside the transaction
// so the subtotal it trusts is consistent with the item set it sees.
func (s *InvoiceService) Update(actorID *uint, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	var before, after map[string]interface{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if invoice.Status != models.StatusDraft {
			return ErrOnlyDraftUpdatable
		}
		before = invoiceSnapshot(&invoice)

		taxRate := invoice.TaxRate
		if in.TaxRate != nil {
			taxRate = *in.TaxRate
			if taxRate < 0 {
				return &ValidationError{Field: "tax_rate", Err: ErrNegativeTaxRate}
			}
		}

		subtotal := invoice.Subtotal
		if in.Items != nil {
			totals, err := CalculateTotals(in.Items, taxRate)
			if err != nil {
				return err
			}
			subtotal = totals.Subtotal

			if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			items := make([]models.InvoiceItem, 0, len(totals.Lines))
			for _, line := range totals.Lines {
				items = append(items, models.InvoiceItem{
					InvoiceID:   id,
					ProductID:   line.ProductID,
					Description: line.Description,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
					TotalPrice:  line.TotalPrice,
				})
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		if in.IssueDate != nil {
			invoice.IssueDate = *in.IssueDate
		}
		if in.DueDate != nil {
			invoice.DueDate = *in.DueDate
		}
		if in.Notes != nil {
			invoice.Notes = *in.Notes
		}
		invoice.Subtotal = subtotal
		invoice.TaxRate = taxRate
		invoice.TaxAmount = subtotal * taxRate
		invoice.Total = invoice.Subtotal + invoice.TaxAmount
		after = invoiceSnapshot(&invoice)

		return tx.Save(&invoice).Error
	})
	if err != nil {
		return nil, err
	}

	if changes := diffFields(before, after, auditedInvoiceFields); changes != nil {
		s.audit.Append(actorID, "update", "invoice", id, changes)
	}

	return s.FindOne(id)
}

// ChangeStatus moves an invoice along the legal state graph. Requests the
// transition table rejects, including same-state ones, fail with
// ErrInvalidTransition and leave the invoice untouched.
func (s *InvoiceService) ChangeStatus(actorID *uint, id uint, next models.InvoiceStatus) (*models.Invoice, error) {
	if !next.Valid() {
		return nil, &ValidationError{Field: "status", Err: ErrInvalidStatus}
	}

	var previous models.InvoiceStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if !CanTransition(invoice.Status, next) {
			return ErrInvalidTransition
		}
		previous = invoice.Status
		return tx.Model(&invoice).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Append(actorID, "status_change", "invoice", id, map[string]FieldChange{
		"status": {Old: previous, New: next},
	})

	return s.FindOne(id)
}

// FindOne returns an invoice expanded with its customer, items and each
// item's product.
func (s *InvoiceService) FindOne(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll lists invoices matching the filters, newest first, with the
// count query applying the same conditions as the list query.
func (s *InvoiceService) FindAll(f InvoiceFilters) (*InvoiceList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	query := s.db.Model(&models.Invoice{}).
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id")

	if f.Status != "" {
		query = query.Where("invoices.status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		query = query.Where("invoices.customer_id = ?", f.CustomerID)
	}
	if f.StartDate != nil && f.EndDate != nil {
		query = query.Where("invoices.issue_date BETWEEN ? AND ?", f.StartDate, f.EndDate)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(invoices.number) LIKE ? OR LOWER(customers.name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []models.Invoice
	err := query.
		Preload("Customer").
		Order("invoices.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}

	return &InvoiceList{
		Data: invoices,
		Meta: ListMeta{
			Total:      total,
			Page:       f.Page,
			Limit:      f.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
		},
	}, nil
}

// FindAllForCustomer is the customer-portal read path: it forces the
// customer filter so a portal user can only ever see their own invoices.
func (s *InvoiceService) FindAllForCustomer(customerID uint, f InvoiceFilters) (*InvoiceList, error) {
	f.CustomerID = customerID
	return s.FindAll(f)
}
