package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/billing-backoffice/services"
)

// Error codes are the machine-readable contract; clients branch on the
// code, never on message text.
const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeBadRequest = "BAD_REQUEST"
	codeForbidden  = "FORBIDDEN"
	codeDuplicate  = "DUPLICATE_ENTRY"
	codeInternal   = "INTERNAL_ERROR"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// respondServiceError translates a service-layer error into the response
// contract. Unknown errors are logged and surfaced as an opaque internal
// error.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrSupplierNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrPriceNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, services.ErrOnlyDraftUpdatable),
		errors.Is(err, services.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, codeBadRequest, err.Error())
	case services.IsDuplicateEntry(err):
		respondError(c, http.StatusConflict, codeDuplicate, "already exists")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// currentUserID reads the authenticated user's id from the gin context.
func currentUserID(c *gin.Context) *uint {
	raw, exists := c.Get("userID")
	if !exists {
		return nil
	}
	id, ok := raw.(uint)
	if !ok {
		return nil
	}
	return &id
}
