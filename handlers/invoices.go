package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing-backoffice/config"
	"github.com/yourusername/billing-backoffice/models"
	"github.com/yourusername/billing-backoffice/services"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	notes    *services.NoteService
}

func NewInvoiceHandler(db *gorm.DB, cfg *config.Config) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: services.NewInvoiceService(db, services.NewGormAuditSink(db), cfg.DefaultTaxRate),
		notes:    services.NewNoteService(db),
	}
}

type CreateInvoiceRequest struct {
	CustomerID uint                 `json:"customer_id" binding:"required"`
	IssueDate  time.Time            `json:"issue_date" binding:"required"`
	DueDate    time.Time            `json:"due_date" binding:"required"`
	Status     models.InvoiceStatus `json:"status"`
	TaxRate    *float64             `json:"tax_rate"`
	Notes      string               `json:"notes"`
	Items      []services.LineInput `json:"items" binding:"required,min=1,dive"`
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	invoice, err := h.invoices.Create(currentUserID(c), services.CreateInvoiceInput{
		CustomerID: req.CustomerID,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Status:     req.Status,
		TaxRate:    req.TaxRate,
		Notes:      req.Notes,
		Items:      req.Items,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, invoice)
}

type UpdateInvoiceRequest struct {
	IssueDate *time.Time           `json:"issue_date"`
	DueDate   *time.Time           `json:"due_date"`
	TaxRate   *float64             `json:"tax_rate"`
	Notes     *string              `json:"notes"`
	Items     []services.LineInput `json:"items"`
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid invoice id")
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	invoice, err := h.invoices.Update(currentUserID(c), uint(id), services.UpdateInvoiceInput{
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		TaxRate:   req.TaxRate,
		Notes:     req.Notes,
		Items:     req.Items,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

type ChangeStatusRequest struct {
	Status models.InvoiceStatus `json:"status" binding:"required"`
	Reason string               `json:"reason"`
}

func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid invoice id")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	invoice, err := h.invoices.ChangeStatus(currentUserID(c), uint(id), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid invoice id")
		return
	}

	invoice, err := h.invoices.FindOne(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	list, err := h.invoices.FindAll(parseInvoiceFilters(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Data, "meta": list.Meta})
}

// ListMine serves the customer portal: invoices scoped to the customer
// bound to the authenticated portal account.
func (h *InvoiceHandler) ListMine(c *gin.Context) {
	raw, exists := c.Get("customerID")
	if !exists {
		respondError(c, http.StatusForbidden, codeForbidden, "account is not linked to a customer")
		return
	}
	customerID, ok := raw.(uint)
	if !ok {
		respondError(c, http.StatusForbidden, codeForbidden, "account is not linked to a customer")
		return
	}

	list, err := h.invoices.FindAllForCustomer(customerID, parseInvoiceFilters(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Data, "meta": list.Meta})
}

func parseInvoiceFilters(c *gin.Context) services.InvoiceFilters {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 64)

	f := services.InvoiceFilters{
		Page:       page,
		Limit:      limit,
		Search:     c.Query("search"),
		Status:     models.InvoiceStatus(c.Query("status")),
		CustomerID: uint(customerID),
	}
	if from, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		f.StartDate = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		f.EndDate = &to
	}
	return f
}

type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *InvoiceHandler) ListNotes(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid invoice id")
		return
	}

	notes, err := h.notes.ListByInvoice(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, notes)
}

func (h *InvoiceHandler) CreateNote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid invoice id")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	actor := currentUserID(c)
	if actor == nil {
		respondError(c, http.StatusUnauthorized, codeBadRequest, "missing user identity")
		return
	}

	note, err := h.notes.Create(uint(id), *actor, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, note)
}
