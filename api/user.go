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
)

// UserHandler serves the profile and the admin user list.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// UpdateProfileRequest is a partial profile update; nil fields are left alone.
type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName" binding:"omitempty,max=100"`
	LastName   *string `json:"lastName" binding:"omitempty,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=30"`
	Address    *string `json:"address" binding:"omitempty,max=255"`
	BirthDate  *string `json:"birthDate" binding:"omitempty"`
	PictureURL *string `json:"pictureUrl" binding:"omitempty,max=255"`
}

// Profile returns the current user
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	OK(c, user)
}

// UpdateProfile applies a partial profile update
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "changed fields"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/update-profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = optional(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = optional(*req.Address)
	}
	if req.BirthDate != nil {
		if v := strings.TrimSpace(*req.BirthDate); v != "" {
			if _, err := time.Parse(models.DateLayout, v); err != nil {
				BadRequest(c, "birthDate must be YYYY-MM-DD")
				return
			}
		}
		updates["birth_date"] = optional(*req.BirthDate)
	}
	if req.PictureURL != nil {
		updates["picture_url"] = optional(*req.PictureURL)
	}
	if len(updates) == 0 {
		OK(c, user)
		return
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "profile update failed"))
		return
	}
	if err := database.DB.Where("id = ?", user.ID).First(user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "profile update failed"))
		return
	}
	OK(c, user)
}

// List returns every user (admin only)
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users := []models.User{}
	if err := database.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "listing users failed"))
		return
	}
	OK(c, users)
}

func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	var user models.User
	err := database.DB.Where("id = ?", middleware.GetCurrentUserID(c)).First(&user).Error
	if err == nil {
		return &user, true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "user not found")
	} else {
		InternalError(c, SafeErrorMessage(err, "loading user failed"))
	}
	return nil, false
}

// optional maps an empty string to NULL.
func optional(s string) interface{} {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}
