package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel domain errors. Handlers branch on these with errors.Is to pick
// the client-visible error code; anything else is an internal failure.
var (
	// ErrInvoiceNotFound is returned when an invoice id does not resolve.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrCustomerNotFound is returned when a referenced customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrSupplierNotFound is returned when a referenced supplier does not exist.
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrProductNotFound is returned when a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrPriceNotFound is returned when a product price id does not resolve.
	ErrPriceNotFound = errors.New("product price not found")

	// ErrOnlyDraftUpdatable is returned when update is attempted on an
	// invoice that has left DRAFT.
	ErrOnlyDraftUpdatable = errors.New("only draft invoices can be updated")

	// ErrInvalidTransition is returned for a status change the transition
	// table does not allow, including same-state requests.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateEntry is returned when a unique constraint is violated on
	// user-supplied data (tax id, supplier name, ...).
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Validation sentinels wrapped by ValidationError.
var (
	ErrNoItems          = errors.New("at least one item is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrNegativePrice    = errors.New("unit price must be non-negative")
	ErrNegativeTaxRate  = errors.New("tax rate must be non-negative")
	ErrInvalidStatus    = errors.New("invalid invoice status")
	ErrEmptyNoteContent = errors.New("note content is required")
)

// ValidationError wraps a validation sentinel with the offending field so
// the caller can report a structured error.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicateEntry reports whether err is a unique-constraint violation,
// either the portable sentinel or a raw postgres 23505.
func IsDuplicateEntry(err error) bool {
	if errors.Is(err, ErrDuplicateEntry) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
