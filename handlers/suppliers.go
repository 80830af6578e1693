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

type SupplierHandler struct {
	db *gorm.DB
}

func NewSupplierHandler(db *gorm.DB) *SupplierHandler {
	return &SupplierHandler{db: db}
}

type SupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	IsActive    *bool  `json:"is_active"`
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	supplier := models.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		IsActive:    true,
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := h.db.Create(&supplier).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "supplier with this name already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, supplier)
}

func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid supplier id")
		return
	}

	var supplier models.Supplier
	if err := h.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "supplier not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, supplier)
}

func (h *SupplierHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := h.db.Model(&models.Supplier{})
	if raw := c.Query("is_active"); raw != "" {
		query = query.Where("is_active = ?", raw == "true")
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var suppliers []models.Supplier
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&suppliers).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if suppliers == nil {
		suppliers = []models.Supplier{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": suppliers, "meta": listMeta(total, page, limit)})
}

func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid supplier id")
		return
	}

	var supplier models.Supplier
	if err := h.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "supplier not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	supplier.Name = req.Name
	supplier.ContactName = req.ContactName
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := h.db.Save(&supplier).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "supplier with this name already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, supplier)
}

func (h *SupplierHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid supplier id")
		return
	}

	res := h.db.Delete(&models.Supplier{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, codeNotFound, "supplier not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
