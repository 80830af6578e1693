package services

import (
	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/gorm"
)

// NoteService manages the append-only internal comment thread on invoices.
type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db}
}

// ListByInvoice returns an invoice's notes oldest-first with their authors.
func (s *NoteService) ListByInvoice(invoiceID uint) ([]models.InvoiceNote, error) {
	var count int64
	if err := s.db.Model(&models.Invoice{}).Where("id = ?", invoiceID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrInvoiceNotFound
	}

	var notes []models.InvoiceNote
	err := s.db.
		Preload("User").
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.InvoiceNote{}
	}
	return notes, nil
}

// Create appends a note to an invoice.
func (s *NoteService) Create(invoiceID, userID uint, content string) (*models.InvoiceNote, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Err: ErrEmptyNoteContent}
	}

	var count int64
	if err := s.db.Model(&models.Invoice{}).Where("id = ?", invoiceID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrInvoiceNotFound
	}

	note := models.InvoiceNote{
		InvoiceID: invoiceID,
		UserID:    userID,
		Content:   content,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, err
	}

	err := s.db.Preload("User").First(&note, note.ID).Error
	return &note, err
}
