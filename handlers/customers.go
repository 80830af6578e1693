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

type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type CustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	TaxID    string `json:"tax_id" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	customer := models.Customer{
		Name:     req.Name,
		TaxID:    req.TaxID,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := h.db.Create(&customer).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "customer with this tax id already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid customer id")
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "customer not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer)
}

func (h *CustomerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := h.db.Model(&models.Customer{})
	if raw := c.Query("is_active"); raw != "" {
		query = query.Where("is_active = ?", raw == "true")
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(tax_id) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var customers []models.Customer
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&customers).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customers, "meta": listMeta(total, page, limit)})
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid customer id")
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "customer not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	customer.Name = req.Name
	customer.TaxID = req.TaxID
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := h.db.Save(&customer).Error; err != nil {
		if services.IsDuplicateEntry(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "customer with this tax id already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "invalid customer id")
		return
	}

	res := h.db.Delete(&models.Customer{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, codeNotFound, "customer not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func listMeta(total int64, page, limit int) services.ListMeta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return services.ListMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
