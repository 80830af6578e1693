package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing-backoffice/models"
	"github.com/yourusername/billing-backoffice/services"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type ProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	NameEs      string `json:"name_es"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	IsActive    *bool  `json:"is_active"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	product := models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		NameEs:      req.NameEs,
		Description: req.Description,
		Unit:        req.Unit,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.db.Create(&product).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "product with this sku already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "product not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := h.db.Model(&models.Product{})
	if raw := c.Query("is_active"); raw != "" {
		query = query.Where("is_active = ?", raw == "true")
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(name_es) LIKE ? OR LOWER(sku) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var products []models.Product
	if err := query.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products, "meta": listMeta(total, page, limit)})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "product not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.NameEs = req.NameEs
	product.Description = req.Description
	product.Unit = req.Unit
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.db.Save(&product).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "product with this sku already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	res := h.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, codeNotFound, "product not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
