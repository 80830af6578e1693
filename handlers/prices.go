package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing-backoffice/config"
	"github.com/yourusername/billing-backoffice/services"
	"gorm.io/gorm"
)

type PriceHandler struct {
	prices *services.PriceService
}

func NewPriceHandler(db *gorm.DB, cfg *config.Config) *PriceHandler {
	return &PriceHandler{
		prices: services.NewPriceService(db, cfg.DefaultCurrency),
	}
}

type PriceRequest struct {
	ProductID     uint       `json:"product_id" binding:"required"`
	SupplierID    uint       `json:"supplier_id" binding:"required"`
	CostPrice     float64    `json:"cost_price" binding:"gte=0"`
	SellPrice     *float64   `json:"sell_price"`
	Currency      string     `json:"currency"`
	EffectiveDate *time.Time `json:"effective_date"`
	IsCurrent     bool       `json:"is_current"`
	Source        string     `json:"source"`
}

func (r *PriceRequest) toInput() services.PriceInput {
	in := services.PriceInput{
		ProductID:  r.ProductID,
		SupplierID: r.SupplierID,
		CostPrice:  r.CostPrice,
		SellPrice:  r.SellPrice,
		Currency:   r.Currency,
		IsCurrent:  r.IsCurrent,
		Source:     r.Source,
	}
	if r.EffectiveDate != nil {
		in.EffectiveDate = *r.EffectiveDate
	}
	return in
}

func (h *PriceHandler) Create(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	price, err := h.prices.SetCurrentPrice(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, price)
}

// PriceUpdateRequest edits a price row in place. The (product, supplier)
// pair is immutable, so it is not part of the payload.
type PriceUpdateRequest struct {
	CostPrice     float64    `json:"cost_price" binding:"gte=0"`
	SellPrice     *float64   `json:"sell_price"`
	Currency      string     `json:"currency"`
	EffectiveDate *time.Time `json:"effective_date"`
	IsCurrent     bool       `json:"is_current"`
	Source        string     `json:"source"`
}

func (r *PriceUpdateRequest) toInput() services.PriceInput {
	in := services.PriceInput{
		CostPrice: r.CostPrice,
		SellPrice: r.SellPrice,
		Currency:  r.Currency,
		IsCurrent: r.IsCurrent,
		Source:    r.Source,
	}
	if r.EffectiveDate != nil {
		in.EffectiveDate = *r.EffectiveDate
	}
	return in
}

func (h *PriceHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid price id")
		return
	}

	var req PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	price, err := h.prices.UpdatePrice(uint(id), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, price)
}

func (h *PriceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid price id")
		return
	}

	price, err := h.prices.FindOne(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, price)
}

func (h *PriceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 64)
	supplierID, _ := strconv.ParseUint(c.Query("supplier_id"), 10, 64)

	f := services.PriceFilters{
		Page:       page,
		Limit:      limit,
		ProductID:  uint(productID),
		SupplierID: uint(supplierID),
	}
	if raw := c.Query("is_current"); raw != "" {
		isCurrent := raw == "true"
		f.IsCurrent = &isCurrent
	}

	list, err := h.prices.FindAll(f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Data, "meta": list.Meta})
}

type BulkImportRequest struct {
	Source string                `json:"source" binding:"required"`
	Prices []services.BulkRecord `json:"prices" binding:"required,min=1"`
}

// BulkImport ingests an external price feed. Records fail individually;
// the endpoint always answers 200 with per-record outcomes.
func (h *PriceHandler) BulkImport(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	result := h.prices.BulkImport(req.Source, req.Prices)
	respondData(c, http.StatusOK, result)
}
