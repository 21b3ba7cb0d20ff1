package api

import (
	"errors"
	"strings"

	"economic/database"
	"economic/middleware"
	"economic/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler manages the caller's income and expense categories.
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50" example:"Groceries"`
	Type string `json:"type" binding:"required,oneof=income expense" example:"expense"`
}

type CategoryUpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=50"`
	Type *string `json:"type" binding:"omitempty,oneof=income expense"`
}

// List returns the caller's categories, optionally filtered by type
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param type query string false "income or expense"
// @Success 200 {array} models.Category
// @Failure 400 {object} ErrorResponse
// @Router /category [get]
func (h *CategoryHandler) List(c *gin.Context) {
	query := database.DB.Where("user_id = ?", middleware.GetCurrentUserID(c))
	if t := c.Query("type"); t != "" {
		if !models.IsValidType(t) {
			BadRequest(c, "type must be income or expense")
			return
		}
		query = query.Where("type = ?", t)
	}

	list := []models.Category{}
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "listing categories failed"))
		return
	}
	OK(c, list)
}

// Get returns one category
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Success 200 {object} models.Category
// @Failure 404 {object} ErrorResponse
// @Router /category/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	cat, ok := h.load(c)
	if !ok {
		return
	}
	OK(c, cat)
}

// Create adds a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "category"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /category [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := middleware.GetCurrentUserID(c)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "name is required")
		return
	}
	if taken, err := nameTaken(userID, name, req.Type, ""); err != nil {
		InternalError(c, SafeErrorMessage(err, "creating category failed"))
		return
	} else if taken {
		Conflict(c, "a "+req.Type+" category named "+name+" already exists")
		return
	}

	cat := models.Category{UserID: userID, Name: name, Type: req.Type}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "creating category failed"))
		return
	}
	Created(c, cat)
}

// Update renames a category or changes its type
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Param request body CategoryUpdateRequest true "changed fields"
// @Success 200 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /category/{id} [patch]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat, ok := h.load(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			BadRequest(c, "name is required")
			return
		}
		updates["name"] = name
		cat.Name = name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
		cat.Type = *req.Type
	}
	if len(updates) == 0 {
		OK(c, cat)
		return
	}
	if taken, err := nameTaken(cat.UserID, cat.Name, cat.Type, cat.ID); err != nil {
		InternalError(c, SafeErrorMessage(err, "updating category failed"))
		return
	} else if taken {
		Conflict(c, "a "+cat.Type+" category named "+cat.Name+" already exists")
		return
	}
	if err := database.DB.Model(cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "updating category failed"))
		return
	}
	OK(c, cat)
}

// Delete removes a category. Records that reference it keep their category
// label; the delete is not blocked.
// @Summary Delete category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} ErrorResponse
// @Router /category/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	res := database.DB.Where("id = ? AND user_id = ?", id, middleware.GetCurrentUserID(c)).Delete(&models.Category{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "deleting category failed"))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, "category not found")
		return
	}
	OK(c, DeleteResponse{ID: id, Deleted: true})
}

func (h *CategoryHandler) load(c *gin.Context) (*models.Category, bool) {
	var cat models.Category
	err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), middleware.GetCurrentUserID(c)).First(&cat).Error
	if err == nil {
		return &cat, true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "category not found")
	} else {
		InternalError(c, SafeErrorMessage(err, "loading category failed"))
	}
	return nil, false
}

func nameTaken(userID, name, typ, exceptID string) (bool, error) {
	q := database.DB.Model(&models.Category{}).Where("user_id = ? AND name = ? AND type = ?", userID, name, typ)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}
