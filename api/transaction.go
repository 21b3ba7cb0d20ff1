package api

import (
	"errors"
	"strings"
	"time"

	"economic/database"
	"economic/middleware"
	"economic/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionHandler serves /income or /expense. Both resources share the
// transactions table and differ only by kind.
type TransactionHandler struct {
	kind string
}

// NewTransactionHandler creates a handler for kind (income or expense).
func NewTransactionHandler(kind string) *TransactionHandler {
	return &TransactionHandler{kind: kind}
}

// CreateTransactionRequest creates an income or expense record.
type CreateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"100.00"`
	CategoryID  string  `json:"categoryId" binding:"required" example:"6f1c..."`
	Description string  `json:"description" binding:"max=255" example:"January salary"`
	Date        string  `json:"date" binding:"required" example:"2024-01-15"`
}

// UpdateTransactionRequest is a partial update; nil fields are left alone.
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	CategoryID  *string  `json:"categoryId"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
	Date        *string  `json:"date"`
}

// withCategory preloads the category, including soft-deleted ones so records
// keep their label after the category is removed.
func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

// ListMine returns the caller's records
// @Summary List my records
// @Description Every income (or expense) record of the current user, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Failure 401 {object} ErrorResponse
// @Router /income/me [get]
// @Router /expense/me [get]
func (h *TransactionHandler) ListMine(c *gin.Context) {
	list := []models.Transaction{}
	err := withCategory(database.DB).
		Where("user_id = ? AND kind = ?", middleware.GetCurrentUserID(c), h.kind).
		Order("date DESC").
		Find(&list).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "listing records failed"))
		return
	}
	OK(c, list)
}

// List returns the records of every user (admin only)
// @Summary List all records
// @Tags records
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Failure 403 {object} ErrorResponse
// @Router /income [get]
// @Router /expense [get]
func (h *TransactionHandler) List(c *gin.Context) {
	list := []models.Transaction{}
	if err := withCategory(database.DB).Where("kind = ?", h.kind).Order("date DESC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "listing records failed"))
		return
	}
	OK(c, list)
}

// Get returns one of the caller's records
// @Summary Get record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "record id"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} ErrorResponse
// @Router /income/{id} [get]
// @Router /expense/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	tr, ok := h.load(c, withCategory(database.DB))
	if !ok {
		return
	}
	OK(c, tr)
}

// Create stores a new record
// @Summary Create record
// @Description Amount must be positive, the category must be the caller's and of the same kind
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "record"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Router /income [post]
// @Router /expense [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	userID := middleware.GetCurrentUserID(c)
	cat, ok := h.categoryFor(c, userID, req.CategoryID)
	if !ok {
		return
	}

	tr := models.Transaction{
		UserID:      userID,
		Kind:        h.kind,
		Amount:      req.Amount,
		CategoryID:  cat.ID,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}
	if err := database.DB.Omit(clause.Associations).Create(&tr).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "creating record failed"))
		return
	}
	tr.Category = *cat
	Created(c, tr)
}

// Update applies a partial update
// @Summary Update record
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "record id"
// @Param request body UpdateTransactionRequest true "changed fields"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /income/{id} [patch]
// @Router /expense/{id} [patch]
func (h *TransactionHandler) Update(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tr, ok := h.load(c, database.DB)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		date, err := time.Parse(models.DateLayout, strings.TrimSpace(*req.Date))
		if err != nil {
			BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		updates["date"] = date
	}
	if req.CategoryID != nil && *req.CategoryID != tr.CategoryID {
		cat, ok := h.categoryFor(c, tr.UserID, *req.CategoryID)
		if !ok {
			return
		}
		updates["category_id"] = cat.ID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(tr).Omit(clause.Associations).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "updating record failed"))
			return
		}
	}
	fresh, ok := h.load(c, withCategory(database.DB))
	if !ok {
		return
	}
	OK(c, fresh)
}

// Delete removes one of the caller's records
// @Summary Delete record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "record id"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} ErrorResponse
// @Router /income/{id} [delete]
// @Router /expense/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	res := database.DB.Where("id = ? AND user_id = ? AND kind = ?", id, middleware.GetCurrentUserID(c), h.kind).
		Delete(&models.Transaction{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "deleting record failed"))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, h.kind+" record not found")
		return
	}
	OK(c, DeleteResponse{ID: id, Deleted: true})
}

func (h *TransactionHandler) load(c *gin.Context, db *gorm.DB) (*models.Transaction, bool) {
	var tr models.Transaction
	err := db.Where("id = ? AND user_id = ? AND kind = ?", c.Param("id"), middleware.GetCurrentUserID(c), h.kind).
		First(&tr).Error
	if err == nil {
		return &tr, true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, h.kind+" record not found")
	} else {
		InternalError(c, SafeErrorMessage(err, "loading record failed"))
	}
	return nil, false
}

// categoryFor checks that the category belongs to the user and matches the
// handler's kind.
func (h *TransactionHandler) categoryFor(c *gin.Context, userID, categoryID string) (*models.Category, bool) {
	var cat models.Category
	err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "category not found")
		} else {
			InternalError(c, SafeErrorMessage(err, "loading category failed"))
		}
		return nil, false
	}
	if cat.Type != h.kind {
		BadRequest(c, "category "+cat.Name+" is not an "+h.kind+" category")
		return nil, false
	}
	return &cat, true
}
