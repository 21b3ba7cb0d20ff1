package api

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"economic/config"
	"economic/database"
	"economic/logging"
	"economic/middleware"
	"economic/models"
	"economic/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles login, registration and role administration.
type AuthHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// LoginRequest login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RegisterRequest registration body. Name is split into first and last name.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"password123"`
	Name     string `json:"name" binding:"max=200" example:"Jane Doe"`
}

// UpdateRolesRequest replaces a user's roles.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1" example:"admin"`
}

// Login authenticates with email and password
// @Summary Log in
// @Description Exchanges email and password for a signed JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			InternalError(c, SafeErrorMessage(err, "login failed"))
			return
		}
		Unauthorized(c, "401 Unauthorized: invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "401 Unauthorized: invalid email or password")
		return
	}

	h.issueToken(c, http.StatusOK, &user)
}

// Register creates an account with the default categories
// @Summary Register
// @Description Creates a user with role "user", seeds default categories and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "account"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "registration failed"))
		return
	}
	if count > 0 {
		Conflict(c, "email is already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	first, last := splitName(req.Name)
	user := models.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: first,
		LastName:  last,
		Roles:     []string{models.RoleUser},
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return database.SeedUserCategories(tx, user.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "registration failed"))
		return
	}

	if h.emailService.Enabled() {
		go func(to, name string) {
			link := strings.TrimRight(h.cfg.Dashboard.PublicURL, "/") + "/dashboard"
			if err := h.emailService.SendWelcomeEmail(to, name, link); err != nil {
				logging.Component("auth").WithError(err).WithField("email", to).Warn("welcome email not sent")
			}
		}(user.Email, user.FirstName)
	}

	h.issueToken(c, http.StatusCreated, &user)
}

// UpdateUserRoles replaces the roles of a user (admin only)
// @Summary Update user roles
// @Description Replaces the role array of the given user wholesale
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param request body UpdateRolesRequest true "roles"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/admin/update-user-roles/{id} [patch]
func (h *AuthHandler) UpdateUserRoles(c *gin.Context) {
	var req UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	roles := make([]string, 0, len(req.Roles))
	for _, r := range req.Roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if !models.IsValidRole(r) {
			BadRequest(c, "unknown role: "+r)
			return
		}
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}

	var user models.User
	if err := database.DB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, SafeErrorMessage(err, "update roles failed"))
		return
	}

	if err := database.DB.Model(&user).Select("Roles").Updates(models.User{Roles: roles}).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "update roles failed"))
		return
	}
	user.Roles = roles

	logging.Component("auth").WithFields(map[string]interface{}{
		"admin_id": middleware.GetCurrentUserID(c),
		"user_id":  user.ID,
		"roles":    roles,
	}).Info("user roles updated")
	OK(c, user)
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Roles, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "token generation failed")
		return
	}
	c.JSON(status, TokenResponse{AccessToken: token})
}

func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
