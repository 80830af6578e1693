package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/billing-backoffice/models"
	"gorm.io/gorm"
)

// allocateInvoiceNumber produces the next sequential invoice number for the
// given calendar year, formatted INV-<year>-<seq> with the sequence
// zero-padded to 4 digits (it keeps growing past 9999). The lookup is
// scoped to the year prefix, so numbering restarts at 1 each January.
//
// It must run inside the same transaction as the invoice insert. The store
// runs at read-committed, so two concurrent creations can still read the
// same last number; the unique index on number catches that and the caller
// retries the allocation (see InvoiceService.Create).
func allocateInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", year)

	var last models.Invoice
	err := tx.Where("number LIKE ?", prefix+"%").
		Order("created_at DESC").
		First(&last).Error

	sequence := 1
	switch {
	case err == nil:
		parsed := false
		if parts := strings.Split(last.Number, "-"); len(parts) == 3 {
			if lastSeq, perr := strconv.Atoi(parts[2]); perr == nil {
				sequence = lastSeq + 1
				parsed = true
			}
		}
		if !parsed {
			log.Warn().Str("number", last.Number).Msg("malformed latest invoice number, restarting sequence")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first invoice of the year
	default:
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, sequence), nil
}
